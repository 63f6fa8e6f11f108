package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/service"
)

// JobHandler exposes job listing CRUD.
type JobHandler struct {
	svc    *service.JobService
	logger *slog.Logger
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(svc *service.JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{svc: svc, logger: logger}
}

// HandleCreate posts a new job listing.
//
// HTTP: POST /api/jobs (requires auth)
func (h *JobHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var job model.JobListing
	if err := decodeJSON(r, &job); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.svc.Create(r.Context(), &job)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleList returns listings newest first.
//
// HTTP: GET /api/jobs?limit=N&offset=M
func (h *JobHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	jobs, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// HandleListNew returns the latest-jobs feed for anonymous visitors.
//
// HTTP: GET /api/jobs/new
func (h *JobHandler) HandleListNew(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListNew(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// HandleGetByID returns a single listing.
//
// HTTP: GET /api/jobs/{id}
func (h *JobHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// HandleDelete removes a listing.
//
// HTTP: DELETE /api/jobs/{id} (requires auth)
func (h *JobHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an optional integer query parameter; absent or
// malformed values come back as 0 and the service applies defaults.
func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
