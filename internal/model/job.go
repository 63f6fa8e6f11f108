package model

import (
	"fmt"
	"time"
)

// Employment types accepted for a job listing. Anything else is a
// validation error at creation time.
const (
	EmploymentFulltime  = "Fulltime"
	EmploymentPartTime  = "Part-time"
	EmploymentFreelance = "Freelance"
)

// ValidEmploymentType reports whether t is one of the accepted
// employment type values.
func ValidEmploymentType(t string) bool {
	switch t {
	case EmploymentFulltime, EmploymentPartTime, EmploymentFreelance:
		return true
	}
	return false
}

// Location is where the job is based. Both fields are optional; remote
// listings leave them empty.
type Location struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// SalaryRange is the advertised compensation band. Min/Max are in the
// smallest sensible unit of the currency (no cents handling; listings
// advertise round figures).
type SalaryRange struct {
	Min      int64  `json:"min,omitempty"`
	Max      int64  `json:"max,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// JobListing is a posted job advertisement. Listings are plain CRUD
// rows: created by the posting flow, read by everyone, deleted by
// moderation. They carry no per-user state; that lives in SavedJob.
type JobListing struct {
	ID             string      `json:"id"                   db:"id"`
	CompanyLogo    string      `json:"companyLogo,omitempty" db:"company_logo"`
	CompanyName    string      `json:"companyName"          db:"company_name"`
	Position       string      `json:"position"             db:"position"`
	Location       Location    `json:"location"`
	EmploymentType string      `json:"employmentType"       db:"employment_type"`
	MinExperience  string      `json:"minExperience,omitempty" db:"min_experience"` // e.g. "2 years"
	SalaryRange    SalaryRange `json:"salaryRange"`
	PostedAt       time.Time   `json:"postedAt"  db:"posted_at"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
}

// TimeAgo renders how long ago the listing was posted, the way the
// listing cards display it: hours under a day, days after that.
func (j *JobListing) TimeAgo(now time.Time) string {
	hours := int(now.Sub(j.PostedAt).Hours())
	if hours < 0 {
		hours = 0
	}
	if hours < 24 {
		return fmt.Sprintf("%d hours ago", hours)
	}
	return fmt.Sprintf("%d days ago", hours/24)
}
