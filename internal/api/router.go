package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/micro-nova/ambiance-go/internal/auth"
	"github.com/micro-nova/ambiance-go/internal/models"
)

// Options tunes the router.
type Options struct {
	Version string
	// RateLimit is the sustained number of mutating requests per second.
	// Zero or less disables limiting.
	RateLimit float64
	Burst     int
}

// NewRouter creates and returns the main HTTP router.
func NewRouter(ctrl Controller, authSvc *auth.Service, bus EventBus, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{ctrl: ctrl, events: bus, version: opts.Version}

	r.Group(func(r chi.Router) {
		if authSvc != nil {
			r.Use(authSvc.Middleware)
		}
		r.Use(rateLimit(newLimiter(opts)))

		r.Get("/api", h.getState)
		r.Get("/api/", h.getState)
		r.Get("/api/info", h.getInfo)
		r.Get("/api/subscribe", h.subscribe)

		// Bookmarks
		r.Put("/api/bookmarks", h.setInitialBookmarks)
		r.Get("/api/bookmarks/{domain}", h.getBookmarks)
		r.Post("/api/bookmarks/{domain}/toggle", h.toggleBookmark)
		r.Post("/api/bookmarks/{domain}/move", h.moveBookmark)
		r.Delete("/api/bookmarks/{domain}/{title}", h.removeBookmark)

		// Playback
		r.Post("/api/playback/{domain}/toggle", h.togglePlaying)
		r.Post("/api/playback/{domain}/stop", h.stopAll)
		r.Post("/api/playback/{domain}/played", h.markPlayed)
		r.Delete("/api/playback/{domain}/recent/{title}", h.removeRecent)
		r.Post("/api/playlists/{title}/play", h.playPlaylist)

		// Preferences
		r.Get("/api/preferences", h.getPreferences)
		r.Patch("/api/preferences", h.setPreferences)

		// Import / export
		r.Get("/api/export", h.getExport)
		r.Post("/api/import", h.postImport)

		// Library
		r.Get("/api/library", h.searchLibrary)
		r.Get("/api/library/{domain}/{title}", h.getItem)
		r.Patch("/api/library/{domain}/{title}", h.renameItem)
		r.Delete("/api/library/{domain}/{title}", h.deleteItem)
	})

	return r
}

// corsMiddleware adds permissive CORS headers for local network access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Api-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newLimiter(opts Options) *rate.Limiter {
	if opts.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
}

// rateLimit rejects mutating requests over the configured rate with 429.
// Reads and the SSE stream are never limited.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				if !limiter.Allow() {
					w.Header().Set("Retry-After", "1")
					writeError(w, models.ErrTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
