// Package api implements the local HTTP control API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/micro-nova/ambiance-go/internal/library"
	"github.com/micro-nova/ambiance-go/internal/models"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	ctrl    Controller
	events  EventBus
	version string
}

// Controller is the interface the handlers use to read and change state.
type Controller interface {
	State(ctx context.Context) (models.State, *models.AppError)

	Bookmarks(ctx context.Context, d models.Domain) ([]string, *models.AppError)
	ToggleBookmark(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError)
	RemoveBookmark(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError)
	MoveBookmark(ctx context.Context, d models.Domain, from, to int) (models.State, *models.AppError)
	MoveBookmarks(ctx context.Context, d models.Domain, offsets []int, to int) (models.State, *models.AppError)
	SetInitialBookmarks(ctx context.Context, in models.InitialBookmarks) (models.State, *models.AppError)

	TogglePlaying(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError)
	StopAll(ctx context.Context, d models.Domain) (models.State, *models.AppError)
	MarkPlayed(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError)
	RemoveRecent(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError)
	PlayPlaylist(ctx context.Context, title string) *models.AppError

	Preferences(ctx context.Context) (models.Preferences, *models.AppError)
	SetPreferences(ctx context.Context, upd models.PreferencesUpdate) (models.State, *models.AppError)

	Export(ctx context.Context) (models.Export, *models.AppError)
	Import(ctx context.Context, doc models.Export) (models.State, *models.AppError)

	LookupItem(d models.Domain, title string) (library.Item, *models.AppError)
	SearchLibrary(query string, d models.Domain) []library.Result
	LibraryTitles(d models.Domain) []string
	RenameItem(ctx context.Context, d models.Domain, oldTitle, newTitle string) (models.State, *models.AppError)
	DeleteItem(ctx context.Context, d models.Domain, title string) (models.State, *models.AppError)
}

// EventBus is the interface for subscribing to state change events.
type EventBus interface {
	Subscribe(id string) <-chan models.State
	Unsubscribe(id string)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an AppError as a JSON response. Other errors become 500.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrInternal(err.Error()))
}

// readJSON decodes the request body into v.
func readJSON(r *http.Request, v interface{}) *models.AppError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ErrBadRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

// domainParam reads the {domain} path parameter.
func domainParam(r *http.Request) (models.Domain, *models.AppError) {
	d, err := models.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		appErr := models.ErrBadRequest(err.Error())
		appErr.Field = "domain"
		return "", appErr
	}
	return d, nil
}

// titleParam reads an item title from the path. Titles may contain any
// character, so escaped segments are decoded.
func titleParam(r *http.Request, name string) (string, *models.AppError) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		if u, err := url.PathUnescape(v); err == nil {
			v = u
		}
	}
	if v == "" {
		appErr := models.ErrBadRequest("missing " + name)
		appErr.Field = name
		return "", appErr
	}
	return v, nil
}

// respondState writes the outcome of a state-changing controller call.
func respondState(w http.ResponseWriter, state models.State, appErr *models.AppError) {
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
