package model

import "time"

// SavedJob links a user to a job listing they bookmarked. At most one
// row exists per (user, job) pair; saving the same job twice is a
// conflict, not a second row.
type SavedJob struct {
	ID      string    `json:"id"      db:"id"`
	UserID  string    `json:"userId"  db:"user_id"`
	JobID   string    `json:"jobId"   db:"job_id"`
	SavedAt time.Time `json:"savedAt" db:"saved_at"`

	// Job is the bookmarked listing, populated by list queries so the
	// saved-jobs page renders without a second round trip. Nil on
	// writes and single-row reads.
	Job *JobListing `json:"job,omitempty"`
}
