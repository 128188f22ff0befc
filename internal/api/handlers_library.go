package api

import (
	"net/http"

	"github.com/micro-nova/ambiance-go/internal/export"
	"github.com/micro-nova/ambiance-go/internal/models"
)

// searchLibrary ranks catalog items against ?q=. Without a query it lists
// the titles of every domain (or only ?domain=).
func (h *Handlers) searchLibrary(w http.ResponseWriter, r *http.Request) {
	var d models.Domain
	if raw := r.URL.Query().Get("domain"); raw != "" {
		parsed, err := models.ParseDomain(raw)
		if err != nil {
			appErr := models.ErrBadRequest(err.Error())
			appErr.Field = "domain"
			writeError(w, appErr)
			return
		}
		d = parsed
	}

	q := r.URL.Query().Get("q")
	if q != "" {
		writeJSON(w, http.StatusOK, h.ctrl.SearchLibrary(q, d))
		return
	}
	out := make(map[models.Domain][]string)
	for _, dom := range models.Domains {
		if d == "" || d == dom {
			out[dom] = h.ctrl.LibraryTitles(dom)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getItem(w http.ResponseWriter, r *http.Request) {
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
	item, appErr := h.ctrl.LookupItem(d, title)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handlers) renameItem(w http.ResponseWriter, r *http.Request) {
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
	var req models.RenameRequest
	if appErr := readJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	state, appErr := h.ctrl.RenameItem(r.Context(), d, title, req.Title)
	respondState(w, state, appErr)
}

func (h *Handlers) deleteItem(w http.ResponseWriter, r *http.Request) {
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
	state, appErr := h.ctrl.DeleteItem(r.Context(), d, title)
	respondState(w, state, appErr)
}

func (h *Handlers) getExport(w http.ResponseWriter, r *http.Request) {
	doc, appErr := h.ctrl.Export(r.Context())
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="ambiance-export.json"`)
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handlers) postImport(w http.ResponseWriter, r *http.Request) {
	doc, err := export.Decode(r.Body)
	if err != nil {
		writeError(w, models.ErrBadRequest(err.Error()))
		return
	}
	state, appErr := h.ctrl.Import(r.Context(), doc)
	respondState(w, state, appErr)
}
