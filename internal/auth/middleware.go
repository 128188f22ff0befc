package auth

import (
	"encoding/json"
	"net/http"

	"github.com/micro-nova/ambiance-go/internal/models"
)

const (
	apiKeyHeader     = "X-Api-Key"
	apiKeyQueryParam = "api-key"
)

// Middleware rejects requests without a valid key unless the service is in
// open mode. The key is read from the X-Api-Key header or the api-key query
// parameter (for EventSource clients that cannot set headers).
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.IsOpenMode() {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(apiKeyHeader)
		if key == "" {
			key = r.URL.Query().Get(apiKeyQueryParam)
		}
		if _, ok := s.VerifyKey(key); ok {
			next.ServeHTTP(w, r)
			return
		}

		appErr := models.ErrUnauthorized("missing or invalid api key")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
	})
}
