// Package maintenance runs background housekeeping: daily snapshots of the
// durable state store with pruning of old snapshots.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/micro-nova/ambiance-go/internal/kv"
)

const (
	backupPrefix = "ambiance-state-"
	backupSuffix = ".db"

	// DefaultMaxAge is how long snapshots are kept.
	DefaultMaxAge = 90 * 24 * time.Hour
)

// Service snapshots a store once a day at 02:00.
type Service struct {
	store     kv.Backuper
	backupDir string
	maxAge    time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Service writing snapshots of store into backupDir.
func New(store kv.Backuper, backupDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		backupDir: backupDir,
		maxAge:    DefaultMaxAge,
		logger:    logger,
		now:       time.Now,
	}
}

// Dir returns the snapshot directory.
func (s *Service) Dir() string { return s.backupDir }

// Start runs the daily snapshot loop and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(untilNext(s.now(), 2)):
			path, err := s.RunBackupNow()
			if err != nil {
				s.logger.Error("maintenance: backup failed", "err", err)
			} else {
				s.logger.Info("maintenance: backup created", "file", path)
			}
		}
	}
}

// RunBackupNow writes today's snapshot, replacing an earlier one from the
// same day, prunes expired snapshots and returns the snapshot path.
func (s *Service) RunBackupNow() (string, error) {
	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	date := s.now().Format("2006-01-02")
	dest := filepath.Join(s.backupDir, backupPrefix+date+backupSuffix)
	tmp := dest + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if _, err := s.store.Backup(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", fmt.Errorf("rename backup: %w", err)
	}

	s.prune()
	return dest, nil
}

// ListBackups returns snapshot files sorted by name (newest last).
func (s *Service) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, e := range entries {
		if isBackup(e) {
			files = append(files, filepath.Join(s.backupDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// prune deletes snapshots older than maxAge.
func (s *Service) prune() {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return
	}

	cutoff := s.now().Add(-s.maxAge)
	for _, e := range entries {
		if !isBackup(e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.backupDir, e.Name())
			if err := os.Remove(path); err != nil {
				s.logger.Warn("maintenance: failed to prune old backup", "file", path, "err", err)
			} else {
				s.logger.Info("maintenance: pruned old backup", "file", path)
			}
		}
	}
}

func isBackup(e os.DirEntry) bool {
	return !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), backupSuffix)
}

// untilNext returns the delay from now to the next occurrence of hour:00.
func untilNext(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
