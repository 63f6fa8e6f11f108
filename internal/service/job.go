package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/repository"
)

// Listing limits.
const (
	DefaultJobListLimit = 20
	MaxJobListLimit     = 100
	// NewJobsLimit is the size of the latest-jobs feed shown to
	// visitors who are not logged in.
	NewJobsLimit = 10
)

// JobService handles business logic for job listings.
type JobService struct {
	repo   repository.JobRepository
	logger *slog.Logger
}

// NewJobService creates a JobService.
func NewJobService(repo repository.JobRepository, logger *slog.Logger) *JobService {
	return &JobService{repo: repo, logger: logger}
}

// Create validates and saves a new job listing.
func (s *JobService) Create(ctx context.Context, job *model.JobListing) (*model.JobListing, error) {
	job.CompanyName = strings.TrimSpace(job.CompanyName)
	job.Position = strings.TrimSpace(job.Position)

	if job.CompanyName == "" {
		return nil, apperror.ValidationFailed("companyName", "Company name is required")
	}
	if job.Position == "" {
		return nil, apperror.ValidationFailed("position", "Position is required")
	}
	if !model.ValidEmploymentType(job.EmploymentType) {
		return nil, apperror.ValidationFailed("employmentType",
			"Employment type must be one of Fulltime, Part-time, Freelance")
	}
	if job.SalaryRange.Min < 0 || job.SalaryRange.Max < 0 {
		return nil, apperror.ValidationFailed("salaryRange", "Salary must not be negative")
	}
	if job.SalaryRange.Max > 0 && job.SalaryRange.Min > job.SalaryRange.Max {
		return nil, apperror.ValidationFailed("salaryRange", "Salary minimum exceeds maximum")
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("service/job: creating listing: %w", err)
	}

	s.logger.Info("job listing created",
		slog.String("jobID", job.ID),
		slog.String("company", job.CompanyName),
		slog.String("position", job.Position),
	)

	return job, nil
}

// GetByID returns a single listing.
func (s *JobService) GetByID(ctx context.Context, id string) (*model.JobListing, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "Job ID is required")
	}
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/job: fetching listing %s: %w", id, err)
	}
	return job, nil
}

// List returns listings newest first, clamped to the allowed page size.
func (s *JobService) List(ctx context.Context, limit, offset int) ([]model.JobListing, error) {
	if limit <= 0 {
		limit = DefaultJobListLimit
	}
	if limit > MaxJobListLimit {
		limit = MaxJobListLimit
	}

	jobs, err := s.repo.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("service/job: listing jobs: %w", err)
	}
	return jobs, nil
}

// ListNew returns the latest-jobs feed for anonymous visitors.
func (s *JobService) ListNew(ctx context.Context) ([]model.JobListing, error) {
	jobs, err := s.repo.List(ctx, repository.ListOptions{Limit: NewJobsLimit})
	if err != nil {
		return nil, fmt.Errorf("service/job: listing new jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a listing.
func (s *JobService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "Job ID is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/job: deleting listing %s: %w", id, err)
	}
	s.logger.Info("job listing deleted", slog.String("jobID", id))
	return nil
}
