package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samaralitalim/answersheet/internal/grading"
	"github.com/samaralitalim/answersheet/internal/images"
	"github.com/samaralitalim/answersheet/internal/models"
)

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			h.writeError(w, grading.ErrNoImage.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	mode, err := models.ParseMode(r.FormValue("mode"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	catalogID, ok := h.resolveCatalog(w, r.FormValue("catalog"))
	if !ok {
		return
	}

	// Read one byte past the limit so oversized files are detected
	fileData, err := io.ReadAll(io.LimitReader(file, images.MaxImageSize+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	img, err := images.FromBytes(fileData, header.Filename)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	if !h.acquire(id) {
		h.writeError(w, "Another answer sheet is still being graded", http.StatusConflict)
		return
	}

	now := time.Now()
	sub := &models.Submission{
		ID:            id,
		CatalogID:     catalogID,
		Mode:          mode,
		State:         models.StateIdle,
		ImageFilename: img.Filename,
		ImageType:     img.ContentType,
		ImageWidth:    img.Width,
		ImageHeight:   img.Height,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if entry, ok := h.catalog.Lookup(catalogID); ok {
		sub.CatalogName = entry.Name
	}

	h.store.Set(id, sub)
	h.store.SetImage(id, img.Data)
	h.start(id, grading.Request{Image: img, CatalogID: catalogID, Mode: mode})

	response := map[string]any{
		"submission_id": id,
		"message":       "Answer sheet accepted for grading",
		"catalog_id":    catalogID,
		"mode":          mode,
	}

	h.writeJSONStatus(w, http.StatusAccepted, response)
}

// resolveCatalog uses the form value when present and the stored selection otherwise
func (h *Handler) resolveCatalog(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		id, ok := h.prefs.SelectedCatalog()
		if !ok {
			h.writeError(w, grading.ErrNoCatalogSelected.Error(), http.StatusBadRequest)
			return 0, false
		}
		return id, true
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		h.writeError(w, "Invalid catalog id: "+raw, http.StatusBadRequest)
		return 0, false
	}
	if _, ok := h.catalog.Lookup(id); !ok {
		h.writeError(w, "Unknown catalog id: "+raw, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
