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

// fakeSavedJobRepo is an in-memory SavedJobRepository backed by a
// fakeJobRepo for the embedded listings.
type fakeSavedJobRepo struct {
	saves  map[string]*model.SavedJob
	jobs   *fakeJobRepo
	nextID int
}

func newFakeSavedJobRepo(jobs *fakeJobRepo) *fakeSavedJobRepo {
	return &fakeSavedJobRepo{saves: make(map[string]*model.SavedJob), jobs: jobs}
}

func (f *fakeSavedJobRepo) Create(ctx context.Context, saved *model.SavedJob) error {
	for _, s := range f.saves {
		if s.UserID == saved.UserID && s.JobID == saved.JobID {
			return apperror.Conflict("Job already saved")
		}
	}
	f.nextID++
	saved.ID = fmt.Sprintf("saved-%d", f.nextID)
	saved.SavedAt = time.Now()
	cp := *saved
	f.saves[saved.ID] = &cp
	return nil
}

func (f *fakeSavedJobRepo) GetByUserAndJob(ctx context.Context, userID, jobID string) (*model.SavedJob, error) {
	for _, s := range f.saves {
		if s.UserID == userID && s.JobID == jobID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("saved job", jobID)
}

func (f *fakeSavedJobRepo) ListByUser(ctx context.Context, userID string) ([]model.SavedJob, error) {
	var out []model.SavedJob
	for _, s := range f.saves {
		if s.UserID != userID {
			continue
		}
		cp := *s
		if job, err := f.jobs.GetByID(ctx, s.JobID); err == nil {
			cp.Job = job
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].SavedAt.After(out[k].SavedAt) })
	return out, nil
}

func (f *fakeSavedJobRepo) DeleteOwned(ctx context.Context, id, userID string) error {
	if s, ok := f.saves[id]; ok && s.UserID == userID {
		delete(f.saves, id)
		return nil
	}
	return &apperror.AppError{Err: apperror.ErrNotFound, Message: "Saved job not found"}
}

var _ repository.SavedJobRepository = (*fakeSavedJobRepo)(nil)

type savedFixture struct {
	svc  *SavedJobService
	jobs *fakeJobRepo
}

func newSavedFixture() *savedFixture {
	jobs := newFakeJobRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &savedFixture{
		svc:  NewSavedJobService(newFakeSavedJobRepo(jobs), jobs, logger),
		jobs: jobs,
	}
}

func (fx *savedFixture) addJob(t *testing.T) *model.JobListing {
	t.Helper()
	job := validJob()
	if err := fx.jobs.Create(context.Background(), job); err != nil {
		t.Fatalf("creating job fixture: %v", err)
	}
	return job
}

func TestSave_HappyPath(t *testing.T) {
	fx := newSavedFixture()
	job := fx.addJob(t)

	saved, err := fx.svc.Save(context.Background(), "user-1", job.ID)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" {
		t.Error("saved job should have an ID")
	}
	if saved.UserID != "user-1" || saved.JobID != job.ID {
		t.Errorf("saved = %+v", saved)
	}
}

func TestSave_MissingJobIs404(t *testing.T) {
	fx := newSavedFixture()

	_, err := fx.svc.Save(context.Background(), "user-1", "no-such-job")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if err.Error() != "Job not found" {
		t.Errorf("message = %q, want %q", err.Error(), "Job not found")
	}
}

func TestSave_DuplicateIsValidationError(t *testing.T) {
	fx := newSavedFixture()
	job := fx.addJob(t)

	if _, err := fx.svc.Save(context.Background(), "user-1", job.ID); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	_, err := fx.svc.Save(context.Background(), "user-1", job.ID)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("duplicate save should be a validation error, got %v", err)
	}
	if err.Error() != "Job already saved" {
		t.Errorf("message = %q, want %q", err.Error(), "Job already saved")
	}
}

func TestSave_DifferentUsersCanSaveSameJob(t *testing.T) {
	fx := newSavedFixture()
	job := fx.addJob(t)

	if _, err := fx.svc.Save(context.Background(), "user-1", job.ID); err != nil {
		t.Fatalf("Save user-1: %v", err)
	}
	if _, err := fx.svc.Save(context.Background(), "user-2", job.ID); err != nil {
		t.Fatalf("Save user-2: %v", err)
	}
}

func TestList_EmbedsJobAndScopesToUser(t *testing.T) {
	fx := newSavedFixture()
	job := fx.addJob(t)

	if _, err := fx.svc.Save(context.Background(), "user-1", job.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := fx.svc.Save(context.Background(), "user-2", job.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}

	saves, err := fx.svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(saves) != 1 {
		t.Fatalf("len(saves) = %d, want 1", len(saves))
	}
	if saves[0].Job == nil || saves[0].Job.ID != job.ID {
		t.Error("saved entry should embed the job listing")
	}
}

func TestRemove_OwnedBookmark(t *testing.T) {
	fx := newSavedFixture()
	job := fx.addJob(t)

	saved, err := fx.svc.Save(context.Background(), "user-1", job.ID)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fx.svc.Remove(context.Background(), "user-1", saved.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	saves, _ := fx.svc.List(context.Background(), "user-1")
	if len(saves) != 0 {
		t.Error("bookmark should be gone after Remove")
	}
}

func TestRemove_OtherUsersBookmarkIsNotFound(t *testing.T) {
	fx := newSavedFixture()
	job := fx.addJob(t)

	saved, err := fx.svc.Save(context.Background(), "user-1", job.ID)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	err = fx.svc.Remove(context.Background(), "user-2", saved.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("removing another user's bookmark should be not-found, got %v", err)
	}

	// user-1's bookmark survives.
	saves, _ := fx.svc.List(context.Background(), "user-1")
	if len(saves) != 1 {
		t.Error("the owner's bookmark must not be affected")
	}
}
