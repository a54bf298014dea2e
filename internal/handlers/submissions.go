package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/samaralitalim/answersheet/internal/results"
)

func (h *Handler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.store.List())
}

func (h *Handler) HandleSubmissionDetail(w http.ResponseWriter, r *http.Request) {
	submission, ok := h.getSubmissionOrError(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	h.writeJSON(w, submission)
}

func (h *Handler) HandleSubmissionImage(w http.ResponseWriter, r *http.Request) {
	submission, ok := h.getSubmissionOrError(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	data, ok := h.store.Image(submission.ID)
	if !ok {
		h.writeError(w, "Image not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", submission.ImageType)
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write image", "submission_id", submission.ID, "err", err)
	}
}

var exportContentTypes = map[results.Format]string{
	results.FormatYAML:    "application/yaml",
	results.FormatJSON:    "application/json",
	results.FormatParquet: "application/vnd.apache.parquet",
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = "yaml"
	}
	format, err := results.ParseFormat(name)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var records []results.Record
	for _, s := range h.store.List() {
		if s.State.Terminal() {
			records = append(records, results.FromSubmission(s))
		}
	}

	var buf bytes.Buffer
	if err := results.Encode(&buf, format, records); err != nil {
		h.writeError(w, "Failed to export results: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", exportContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="results.%s"`, format))
	_, _ = w.Write(buf.Bytes())
}
