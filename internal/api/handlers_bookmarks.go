package api

import (
	"net/http"

	"github.com/micro-nova/ambiance-go/internal/models"
)

func (h *Handlers) getState(w http.ResponseWriter, r *http.Request) {
	state, appErr := h.ctrl.State(r.Context())
	respondState(w, state, appErr)
}

func (h *Handlers) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *Handlers) getBookmarks(w http.ResponseWriter, r *http.Request) {
	d, appErr := domainParam(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	items, appErr := h.ctrl.Bookmarks(r.Context(), d)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) toggleBookmark(w http.ResponseWriter, r *http.Request) {
	d, appErr := domainParam(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	var req models.TitleRequest
	if appErr := readJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	state, appErr := h.ctrl.ToggleBookmark(r.Context(), d, req.Title)
	respondState(w, state, appErr)
}

func (h *Handlers) removeBookmark(w http.ResponseWriter, r *http.Request) {
	d, appErr := domainParam(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	title, appErr := titleParam(r, "title")
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	state, appErr := h.ctrl.RemoveBookmark(r.Context(), d, title)
	respondState(w, state, appErr)
}

func (h *Handlers) moveBookmark(w http.ResponseWriter, r *http.Request) {
	d, appErr := domainParam(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	var req models.MoveRequest
	if appErr := readJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	var state models.State
	switch {
	case len(req.Offsets) > 0:
		state, appErr = h.ctrl.MoveBookmarks(r.Context(), d, req.Offsets, req.To)
	case req.From != nil:
		state, appErr = h.ctrl.MoveBookmark(r.Context(), d, *req.From, req.To)
	default:
		appErr = models.ErrBadRequest("either from or offsets is required")
		appErr.Field = "from"
	}
	respondState(w, state, appErr)
}

func (h *Handlers) setInitialBookmarks(w http.ResponseWriter, r *http.Request) {
	var req models.InitialBookmarks
	if appErr := readJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	state, appErr := h.ctrl.SetInitialBookmarks(r.Context(), req)
	respondState(w, state, appErr)
}
