package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/auth"
	"github.com/joovlink/joovlink/internal/service"
)

// SavedJobHandler exposes the per-user saved jobs list.
type SavedJobHandler struct {
	svc    *service.SavedJobService
	logger *slog.Logger
}

// NewSavedJobHandler creates a SavedJobHandler.
func NewSavedJobHandler(svc *service.SavedJobService, logger *slog.Logger) *SavedJobHandler {
	return &SavedJobHandler{svc: svc, logger: logger}
}

type saveJobRequest struct {
	JobID string `json:"jobId"`
}

// HandleSave bookmarks a job for the authenticated user.
//
// HTTP: POST /api/saved-jobs
func (h *SavedJobHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var req saveJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.JobID == "" {
		writeError(w, apperror.ValidationFailed("jobId", "jobId is required"))
		return
	}

	saved, err := h.svc.Save(r.Context(), userID, req.JobID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// HandleList returns the authenticated user's saved jobs with the
// listing embedded in each entry.
//
// HTTP: GET /api/saved-jobs
func (h *SavedJobHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	saved, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// HandleRemove deletes a saved job owned by the authenticated user.
//
// HTTP: DELETE /api/saved-jobs/{id}
func (h *SavedJobHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	if err := h.svc.Remove(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
