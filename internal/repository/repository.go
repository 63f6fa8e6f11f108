// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the production
// implementation; tests substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/joovlink/joovlink/internal/model"
)

// ListOptions controls pagination on listing reads. A zero Limit means
// "use the default"; implementations clamp to their maximum.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists credential records.
//
// The two consumption operations (SetVerified, ConsumeResetToken) are
// specified as single conditional updates: the "find matching unexpired
// token, then clear it" step must be one atomic statement so that two
// concurrent requests carrying the same token cannot both succeed.
type UserRepository interface {
	// Create inserts a new user, assigning ID and timestamps.
	Create(ctx context.Context, user *model.User) error

	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail looks up by case-normalized email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByProviderID looks up by OAuth linkage: provider is
	// auth.ProviderGoogle or auth.ProviderLinkedIn.
	GetByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	// GetByVerifyTokenHash finds the user whose stored verification
	// token hash matches, regardless of expiry; the caller decides what
	// an expired match means.
	GetByVerifyTokenHash(ctx context.Context, hash string) (*model.User, error)
	// GetByResetTokenHash is the read-side lookup for the reset flow;
	// the expiry is enforced again, atomically, by ConsumeResetToken.
	GetByResetTokenHash(ctx context.Context, hash string) (*model.User, error)

	// Update writes the mutable fields of an existing user (OAuth
	// linkage, picture, token columns, last login).
	Update(ctx context.Context, user *model.User) error
	// SetVerified marks the user verified and clears the verification
	// token and expiry in the same statement.
	SetVerified(ctx context.Context, id string) error
	// ConsumeResetToken atomically claims an unexpired reset token:
	// it sets the new password hash and clears the token columns only
	// if the stored hash still matches and has not expired. Returns
	// apperror.ErrNotFound when the token was already consumed,
	// expired, or never existed.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) error
	// StampLastLogin records a successful authentication.
	StampLastLogin(ctx context.Context, id string, at time.Time) error
}

// JobRepository persists job listings.
type JobRepository interface {
	Create(ctx context.Context, job *model.JobListing) error
	GetByID(ctx context.Context, id string) (*model.JobListing, error)
	// List returns listings newest first.
	List(ctx context.Context, opts ListOptions) ([]model.JobListing, error)
	Delete(ctx context.Context, id string) error
}

// SavedJobRepository persists per-user job bookmarks.
type SavedJobRepository interface {
	Create(ctx context.Context, saved *model.SavedJob) error
	GetByUserAndJob(ctx context.Context, userID, jobID string) (*model.SavedJob, error)
	// ListByUser returns the user's bookmarks newest first, with the
	// underlying job listing embedded in each row.
	ListByUser(ctx context.Context, userID string) ([]model.SavedJob, error)
	// DeleteOwned removes a bookmark only if it belongs to userID.
	DeleteOwned(ctx context.Context, id, userID string) error
}

// ProfileRepository persists CV-style user profiles, one per user.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
}
