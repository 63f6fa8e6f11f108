package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/repository"
)

func createTestJob(t *testing.T, db *DB, company, position string) *model.JobListing {
	t.Helper()
	job := &model.JobListing{
		CompanyName:    company,
		Position:       position,
		EmploymentType: model.EmploymentFulltime,
		Location:       model.Location{City: "Jakarta", Country: "Indonesia"},
		SalaryRange:    model.SalaryRange{Min: 8_000_000, Max: 15_000_000},
	}
	if err := db.Jobs().Create(context.Background(), job); err != nil {
		t.Fatalf("failed to create test job: %v", err)
	}
	return job
}

func TestJobCreate_DefaultsPostedAtAndCurrency(t *testing.T) {
	db := newTestDB(t)

	job := createTestJob(t, db, "Acme", "Engineer")
	if job.ID == "" {
		t.Error("Create() should assign an ID")
	}
	if job.PostedAt.IsZero() {
		t.Error("Create() should default PostedAt")
	}
	if job.SalaryRange.Currency != "IDR" {
		t.Errorf("default currency = %q, want IDR", job.SalaryRange.Currency)
	}
}

func TestJobGetByID_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	job := createTestJob(t, db, "Acme", "Engineer")

	got, err := db.Jobs().GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.CompanyName != "Acme" || got.Position != "Engineer" {
		t.Errorf("got %+v", got)
	}
	if got.Location.City != "Jakarta" {
		t.Errorf("Location.City = %q", got.Location.City)
	}
	if got.SalaryRange.Min != 8_000_000 || got.SalaryRange.Max != 15_000_000 {
		t.Errorf("SalaryRange = %+v", got.SalaryRange)
	}
}

func TestJobGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Jobs().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestJobList_NewestFirstWithPagination(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		createTestJob(t, db, fmt.Sprintf("Company %d", i), "Engineer")
		// created_at has second resolution in SQLite comparisons; the
		// id tiebreaker keeps insertion order stable regardless.
		time.Sleep(2 * time.Millisecond)
	}

	jobs, err := db.Jobs().List(context.Background(), repository.ListOptions{Limit: 3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("len(jobs) = %d, want 3", len(jobs))
	}
	if jobs[0].CompanyName != "Company 4" {
		t.Errorf("first listing = %q, want the newest", jobs[0].CompanyName)
	}

	rest, err := db.Jobs().List(context.Background(), repository.ListOptions{Limit: 3, Offset: 3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("len(rest) = %d, want 2", len(rest))
	}
	if rest[len(rest)-1].CompanyName != "Company 0" {
		t.Errorf("last listing = %q, want the oldest", rest[len(rest)-1].CompanyName)
	}
}

func TestJobList_EmptyDatabase(t *testing.T) {
	db := newTestDB(t)

	jobs, err := db.Jobs().List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if jobs == nil {
		t.Error("List() should return an empty slice, not nil")
	}
	if len(jobs) != 0 {
		t.Errorf("len(jobs) = %d, want 0", len(jobs))
	}
}

func TestJobDelete(t *testing.T) {
	db := newTestDB(t)
	job := createTestJob(t, db, "Acme", "Engineer")

	if err := db.Jobs().Delete(context.Background(), job.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Jobs().GetByID(context.Background(), job.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("deleted job should be gone")
	}

	if err := db.Jobs().Delete(context.Background(), job.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("deleting twice should be not-found, got %v", err)
	}
}
