package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/repository"
)

// SavedJobDB implements repository.SavedJobRepository.
type SavedJobDB struct {
	conn *sql.DB
}

var _ repository.SavedJobRepository = (*SavedJobDB)(nil)

// Create inserts a bookmark. The UNIQUE(user_id, job_id) constraint
// turns a concurrent double-save into a conflict error rather than a
// second row.
func (s *SavedJobDB) Create(ctx context.Context, saved *model.SavedJob) error {
	if saved.ID == "" {
		saved.ID = xid.New().String()
	}
	now := time.Now().UTC()
	if saved.SavedAt.IsZero() {
		saved.SavedAt = now
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO saved_jobs (id, user_id, job_id, saved_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.UserID, saved.JobID, saved.SavedAt, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: inserting saved job: %w",
				apperror.Conflict("Job already saved"))
		}
		return fmt.Errorf("sqlite: inserting saved job: %w", err)
	}
	return nil
}

// GetByUserAndJob returns the bookmark for (userID, jobID) if any.
func (s *SavedJobDB) GetByUserAndJob(ctx context.Context, userID, jobID string) (*model.SavedJob, error) {
	var saved model.SavedJob
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, user_id, job_id, saved_at
		FROM saved_jobs WHERE user_id = ? AND job_id = ?`,
		userID, jobID,
	).Scan(&saved.ID, &saved.UserID, &saved.JobID, &saved.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: querying saved job: %w",
			&apperror.AppError{Err: apperror.ErrNotFound, Message: "Saved job not found"})
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying saved job: %w", err)
	}
	return &saved, nil
}

// ListByUser returns the user's bookmarks newest first, joining the job
// listing into each row so the saved-jobs page renders in one query.
func (s *SavedJobDB) ListByUser(ctx context.Context, userID string) ([]model.SavedJob, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.job_id, s.saved_at,
		       j.id, j.company_logo, j.company_name, j.position, j.city, j.country,
		       j.employment_type, j.min_experience, j.salary_min, j.salary_max,
		       j.salary_currency, j.posted_at, j.created_at, j.updated_at
		FROM saved_jobs s
		JOIN job_listings j ON j.id = s.job_id
		WHERE s.user_id = ?
		ORDER BY s.saved_at DESC, s.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing saved jobs: %w", err)
	}
	defer rows.Close()

	saves := []model.SavedJob{}
	for rows.Next() {
		var (
			saved model.SavedJob
			job   model.JobListing
		)
		err := rows.Scan(
			&saved.ID, &saved.UserID, &saved.JobID, &saved.SavedAt,
			&job.ID, &job.CompanyLogo, &job.CompanyName, &job.Position,
			&job.Location.City, &job.Location.Country,
			&job.EmploymentType, &job.MinExperience,
			&job.SalaryRange.Min, &job.SalaryRange.Max, &job.SalaryRange.Currency,
			&job.PostedAt, &job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning saved job: %w", err)
		}
		saved.Job = &job
		saves = append(saves, saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating saved jobs: %w", err)
	}

	return saves, nil
}

// DeleteOwned removes a bookmark only when it belongs to userID. An
// unknown ID and someone else's bookmark are indistinguishable to the
// caller: both are not-found.
func (s *SavedJobDB) DeleteOwned(ctx context.Context, id, userID string) error {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM saved_jobs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting saved job %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: deleting saved job: %w",
			&apperror.AppError{Err: apperror.ErrNotFound, Message: "Saved job not found"})
	}
	return nil
}
