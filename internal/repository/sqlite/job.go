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

// JobDB implements repository.JobRepository.
type JobDB struct {
	conn *sql.DB
}

var _ repository.JobRepository = (*JobDB)(nil)

const jobColumns = `id, company_logo, company_name, position, city, country,
	employment_type, min_experience, salary_min, salary_max, salary_currency,
	posted_at, created_at, updated_at`

// Create inserts a new job listing, assigning ID and timestamps.
// PostedAt defaults to now when the caller leaves it zero.
func (j *JobDB) Create(ctx context.Context, job *model.JobListing) error {
	if job.ID == "" {
		job.ID = xid.New().String()
	}
	now := time.Now().UTC()
	if job.PostedAt.IsZero() {
		job.PostedAt = now
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.SalaryRange.Currency == "" {
		job.SalaryRange.Currency = "IDR"
	}

	_, err := j.conn.ExecContext(ctx, `
		INSERT INTO job_listings (
			id, company_logo, company_name, position, city, country,
			employment_type, min_experience, salary_min, salary_max,
			salary_currency, posted_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.CompanyLogo, job.CompanyName, job.Position,
		job.Location.City, job.Location.Country,
		job.EmploymentType, job.MinExperience,
		job.SalaryRange.Min, job.SalaryRange.Max, job.SalaryRange.Currency,
		job.PostedAt, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting job listing: %w", err)
	}
	return nil
}

// GetByID returns a single job listing.
func (j *JobDB) GetByID(ctx context.Context, id string) (*model.JobListing, error) {
	row := j.conn.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM job_listings WHERE id = ?`, id)

	job, err := scanJob(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: querying job listing: %w",
			apperror.NotFound("job listing", id))
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying job listing %s: %w", id, err)
	}
	return job, nil
}

// List returns job listings newest first.
func (j *JobDB) List(ctx context.Context, opts repository.ListOptions) ([]model.JobListing, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := j.conn.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM job_listings
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing job listings: %w", err)
	}
	defer rows.Close()

	jobs := []model.JobListing{}
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning job listing: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating job listings: %w", err)
	}

	return jobs, nil
}

// Delete removes a job listing. Returns not-found if the ID is unknown.
func (j *JobDB) Delete(ctx context.Context, id string) error {
	res, err := j.conn.ExecContext(ctx,
		`DELETE FROM job_listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting job listing %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: deleting job listing: %w",
			apperror.NotFound("job listing", id))
	}
	return nil
}

// scanJob maps one row onto a JobListing. It takes the Scan function so
// it works for both QueryRow and Rows.
func scanJob(scan func(dest ...any) error) (*model.JobListing, error) {
	var job model.JobListing
	err := scan(
		&job.ID, &job.CompanyLogo, &job.CompanyName, &job.Position,
		&job.Location.City, &job.Location.Country,
		&job.EmploymentType, &job.MinExperience,
		&job.SalaryRange.Min, &job.SalaryRange.Max, &job.SalaryRange.Currency,
		&job.PostedAt, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
