package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/auth"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/service"
)

// ProfileHandler exposes candidate profiles.
type ProfileHandler struct {
	svc    *service.ProfileService
	logger *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(svc *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, logger: logger}
}

// HandleCreate creates the authenticated user's profile.
//
// HTTP: POST /api/profile
func (h *ProfileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var profile model.Profile
	if err := decodeJSON(r, &profile); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.svc.Create(r.Context(), userID, &profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleGetMine returns the authenticated user's profile.
//
// HTTP: GET /api/profile
func (h *ProfileHandler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	profile, err := h.svc.GetByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleGetByUserID returns another user's public profile.
//
// HTTP: GET /api/profile/{userID}
func (h *ProfileHandler) HandleGetByUserID(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetByUserID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdate replaces the authenticated user's profile.
//
// HTTP: PUT /api/profile
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	var profile model.Profile
	if err := decodeJSON(r, &profile); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), userID, &profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
