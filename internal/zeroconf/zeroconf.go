// Package zeroconf advertises the control API over mDNS/DNS-SD so clients on
// the LAN can find the daemon without configuration.
package zeroconf

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grandcat/zeroconf"
)

const serviceType = "_http._tcp"

// Service manages mDNS service registration.
type Service struct {
	name    string // instance name, e.g. "ambiance"
	port    int
	version string
	logger  *slog.Logger
}

// New creates a Service that will advertise name on port.
func New(name string, port int, version string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{name: name, port: port, version: version, logger: logger}
}

// Records returns the TXT records that are advertised.
func (s *Service) Records() []string {
	return []string{"version=" + s.version, "model=ambiance", "path=/api"}
}

// Start registers the service and blocks until ctx is cancelled, then
// unregisters it.
func (s *Service) Start(ctx context.Context) error {
	if s.port <= 0 {
		return fmt.Errorf("zeroconf: invalid port %d", s.port)
	}
	txt := s.Records()

	server, err := zeroconf.Register(s.name, serviceType, "local.", s.port, txt, nil)
	if err != nil {
		return fmt.Errorf("zeroconf register: %w", err)
	}
	s.logger.Info("zeroconf: registered mDNS service", "name", s.name, "port", s.port, "txt", txt)

	<-ctx.Done()

	server.Shutdown()
	s.logger.Info("zeroconf: mDNS service unregistered")
	return nil
}
