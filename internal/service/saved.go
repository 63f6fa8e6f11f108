package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/repository"
)

// SavedJobService handles per-user job bookmarks. Every operation is
// scoped to the acting user; there is no way to read or remove another
// user's bookmarks.
type SavedJobService struct {
	saved  repository.SavedJobRepository
	jobs   repository.JobRepository
	logger *slog.Logger
}

// NewSavedJobService creates a SavedJobService.
func NewSavedJobService(
	saved repository.SavedJobRepository,
	jobs repository.JobRepository,
	logger *slog.Logger,
) *SavedJobService {
	return &SavedJobService{saved: saved, jobs: jobs, logger: logger}
}

// Save bookmarks a job for the user. The job must exist, and the same
// job cannot be saved twice.
func (s *SavedJobService) Save(ctx context.Context, userID, jobID string) (*model.SavedJob, error) {
	if jobID == "" {
		return nil, apperror.ValidationFailed("jobId", "Job ID is required")
	}

	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "Job not found"}
		}
		return nil, fmt.Errorf("service/saved: checking job %s: %w", jobID, err)
	}

	if _, err := s.saved.GetByUserAndJob(ctx, userID, jobID); err == nil {
		return nil, apperror.ValidationFailed("jobId", "Job already saved")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/saved: checking existing bookmark: %w", err)
	}

	saved := &model.SavedJob{UserID: userID, JobID: jobID}
	if err := s.saved.Create(ctx, saved); err != nil {
		// A concurrent save slips past the check above and lands on
		// the UNIQUE constraint instead.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("jobId", "Job already saved")
		}
		return nil, fmt.Errorf("service/saved: saving job: %w", err)
	}

	s.logger.Info("job saved",
		slog.String("userID", userID),
		slog.String("jobID", jobID),
	)

	return saved, nil
}

// List returns the user's bookmarks with the job listings embedded.
func (s *SavedJobService) List(ctx context.Context, userID string) ([]model.SavedJob, error) {
	saves, err := s.saved.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/saved: listing saved jobs: %w", err)
	}
	return saves, nil
}

// Remove deletes one of the user's bookmarks by bookmark ID.
func (s *SavedJobService) Remove(ctx context.Context, userID, savedID string) error {
	if savedID == "" {
		return apperror.ValidationFailed("id", "Saved job ID is required")
	}
	if err := s.saved.DeleteOwned(ctx, savedID, userID); err != nil {
		return fmt.Errorf("service/saved: removing saved job %s: %w", savedID, err)
	}
	s.logger.Info("saved job removed",
		slog.String("userID", userID),
		slog.String("savedID", savedID),
	)
	return nil
}
