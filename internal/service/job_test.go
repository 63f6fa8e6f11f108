package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/repository"
)

// fakeJobRepo is an in-memory JobRepository.
type fakeJobRepo struct {
	jobs   map[string]*model.JobListing
	nextID int

	// lastListOpts records what the service asked for, so tests can
	// check clamping without inspecting results.
	lastListOpts repository.ListOptions
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*model.JobListing)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *model.JobListing) error {
	f.nextID++
	job.ID = fmt.Sprintf("job-%d", f.nextID)
	now := time.Now()
	if job.PostedAt.IsZero() {
		job.PostedAt = now
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id string) (*model.JobListing, error) {
	if j, ok := f.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, apperror.NotFound("job", id)
}

func (f *fakeJobRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.JobListing, error) {
	f.lastListOpts = opts

	all := make([]model.JobListing, 0, len(f.jobs))
	for _, j := range f.jobs {
		all = append(all, *j)
	}
	sort.Slice(all, func(i, k int) bool { return all[i].CreatedAt.After(all[k].CreatedAt) })

	if opts.Offset >= len(all) {
		return nil, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && len(all) > opts.Limit {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (f *fakeJobRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.jobs[id]; !ok {
		return apperror.NotFound("job", id)
	}
	delete(f.jobs, id)
	return nil
}

var _ repository.JobRepository = (*fakeJobRepo)(nil)

func newJobService(repo repository.JobRepository) *JobService {
	return NewJobService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validJob() *model.JobListing {
	return &model.JobListing{
		CompanyName:    "Acme Corp",
		Position:       "Backend Engineer",
		EmploymentType: model.EmploymentFulltime,
		Location:       model.Location{City: "Jakarta", Country: "Indonesia"},
		SalaryRange:    model.SalaryRange{Min: 10_000_000, Max: 20_000_000, Currency: "IDR"},
	}
}

func TestJobCreate_HappyPath(t *testing.T) {
	svc := newJobService(newFakeJobRepo())

	created, err := svc.Create(context.Background(), validJob())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("created job should have an ID")
	}
}

func TestJobCreate_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.JobListing)
	}{
		{"missing company", func(j *model.JobListing) { j.CompanyName = "  " }},
		{"missing position", func(j *model.JobListing) { j.Position = "" }},
		{"bad employment type", func(j *model.JobListing) { j.EmploymentType = "Contract" }},
		{"negative salary", func(j *model.JobListing) { j.SalaryRange.Min = -1 }},
		{"min above max", func(j *model.JobListing) { j.SalaryRange.Min = 30; j.SalaryRange.Max = 20 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newJobService(newFakeJobRepo())
			job := validJob()
			tc.mutate(job)

			_, err := svc.Create(context.Background(), job)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestJobCreate_AcceptsAllEmploymentTypes(t *testing.T) {
	svc := newJobService(newFakeJobRepo())

	for _, et := range []string{model.EmploymentFulltime, model.EmploymentPartTime, model.EmploymentFreelance} {
		job := validJob()
		job.EmploymentType = et
		if _, err := svc.Create(context.Background(), job); err != nil {
			t.Errorf("Create with employment type %q: %v", et, err)
		}
	}
}

func TestJobList_ClampsLimit(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newJobService(repo)

	if _, err := svc.List(context.Background(), 0, 0); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastListOpts.Limit != DefaultJobListLimit {
		t.Errorf("zero limit should default to %d, got %d", DefaultJobListLimit, repo.lastListOpts.Limit)
	}

	if _, err := svc.List(context.Background(), 10_000, 0); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastListOpts.Limit != MaxJobListLimit {
		t.Errorf("oversized limit should clamp to %d, got %d", MaxJobListLimit, repo.lastListOpts.Limit)
	}
}

func TestJobListNew_UsesFeedLimit(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newJobService(repo)

	if _, err := svc.ListNew(context.Background()); err != nil {
		t.Fatalf("ListNew: %v", err)
	}
	if repo.lastListOpts.Limit != NewJobsLimit {
		t.Errorf("ListNew limit = %d, want %d", repo.lastListOpts.Limit, NewJobsLimit)
	}
}

func TestJobGetByID_NotFound(t *testing.T) {
	svc := newJobService(newFakeJobRepo())

	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestJobDelete(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newJobService(repo)

	created, err := svc.Create(context.Background(), validJob())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("deleted job should be gone")
	}
}
