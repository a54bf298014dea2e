package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/samaralitalim/answersheet/internal/catalog"
)

func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	filter, err := catalog.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries := h.catalog.Filter(filter)
	if entries == nil {
		entries = []catalog.Entry{}
	}
	h.writeJSON(w, entries)
}

func (h *Handler) HandleGetSelection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.prefs.SelectedCatalog()
	if !ok {
		h.writeError(w, "No catalog entry selected", http.StatusNotFound)
		return
	}
	entry, ok := h.catalog.Lookup(id)
	if !ok {
		// Stored id is no longer in the catalog; still report it
		entry = catalog.Entry{ID: id, Category: catalog.CategoryOther}
	}
	h.writeJSON(w, entry)
}

func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	entry, ok := h.catalog.Lookup(request.ID)
	if !ok {
		h.writeError(w, "Unknown catalog id", http.StatusBadRequest)
		return
	}
	if err := h.prefs.SelectCatalog(entry.ID); err != nil {
		h.writeError(w, "Failed to save selection: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, entry)
}
