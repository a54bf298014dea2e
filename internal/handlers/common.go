package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/samaralitalim/answersheet/internal/catalog"
	"github.com/samaralitalim/answersheet/internal/grading"
	"github.com/samaralitalim/answersheet/internal/models"
	"github.com/samaralitalim/answersheet/internal/storage"
)

// Submitter runs the grading workflow for one answer sheet
type Submitter interface {
	Submit(ctx context.Context, req grading.Request, observe grading.Observer) (*models.Result, error)
}

type Handler struct {
	store   *storage.SubmissionStore
	prefs   *storage.Preferences
	catalog *catalog.Catalog
	grader  Submitter

	// ctx bounds every background submission; cancelling it abandons in-flight work
	ctx context.Context
	wg  sync.WaitGroup

	mu       sync.Mutex
	inFlight string
}

func New(ctx context.Context, grader Submitter, cat *catalog.Catalog, prefs *storage.Preferences) *Handler {
	return &Handler{
		store:   storage.New(),
		prefs:   prefs,
		catalog: cat,
		grader:  grader,
		ctx:     ctx,
	}
}

// Routes registers every API endpoint on a new router
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/catalog", h.HandleCatalog).Methods("GET")
	r.HandleFunc("/api/catalog/selection", h.HandleGetSelection).Methods("GET")
	r.HandleFunc("/api/catalog/selection", h.HandleSelect).Methods("PUT")
	r.HandleFunc("/api/submissions", h.HandleListSubmissions).Methods("GET")
	r.HandleFunc("/api/submissions", h.HandleUpload).Methods("POST")
	r.HandleFunc("/api/submissions/export", h.HandleExport).Methods("GET")
	r.HandleFunc("/api/submissions/{id}", h.HandleSubmissionDetail).Methods("GET")
	r.HandleFunc("/api/submissions/{id}/image", h.HandleSubmissionImage).Methods("GET")
	r.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	}).Methods("GET")
	return r
}

// Wait blocks until background submissions have returned
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSONStatus(w, code, map[string]string{"error": message})
}

// Submission helpers
func (h *Handler) getSubmissionOrError(w http.ResponseWriter, id string) (*models.Submission, bool) {
	sub, exists := h.store.Get(id)
	if !exists {
		h.writeError(w, "Submission not found", http.StatusNotFound)
		return nil, false
	}
	return sub, true
}

// acquire claims the single in-flight slot for id
func (h *Handler) acquire(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inFlight != "" {
		return false
	}
	h.inFlight = id
	return true
}

func (h *Handler) release(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inFlight == id {
		h.inFlight = ""
	}
}
