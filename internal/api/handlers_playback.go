package api

import (
	"net/http"

	"github.com/micro-nova/ambiance-go/internal/models"
)

func (h *Handlers) togglePlaying(w http.ResponseWriter, r *http.Request) {
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
	state, appErr := h.ctrl.TogglePlaying(r.Context(), d, req.Title)
	respondState(w, state, appErr)
}

func (h *Handlers) stopAll(w http.ResponseWriter, r *http.Request) {
	d, appErr := domainParam(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	state, appErr := h.ctrl.StopAll(r.Context(), d)
	respondState(w, state, appErr)
}

func (h *Handlers) markPlayed(w http.ResponseWriter, r *http.Request) {
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
	state, appErr := h.ctrl.MarkPlayed(r.Context(), d, req.Title)
	respondState(w, state, appErr)
}

func (h *Handlers) removeRecent(w http.ResponseWriter, r *http.Request) {
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
	state, appErr := h.ctrl.RemoveRecent(r.Context(), d, title)
	respondState(w, state, appErr)
}

func (h *Handlers) playPlaylist(w http.ResponseWriter, r *http.Request) {
	title, appErr := titleParam(r, "title")
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	if appErr := h.ctrl.PlayPlaylist(r.Context(), title); appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "starting", "title": title})
}

func (h *Handlers) getPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, appErr := h.ctrl.Preferences(r.Context())
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handlers) setPreferences(w http.ResponseWriter, r *http.Request) {
	var upd models.PreferencesUpdate
	if appErr := readJSON(r, &upd); appErr != nil {
		writeError(w, appErr)
		return
	}
	state, appErr := h.ctrl.SetPreferences(r.Context(), upd)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, state.Playback.Preferences)
}
