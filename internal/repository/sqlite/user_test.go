package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/auth"
	"github.com/joovlink/joovlink/internal/model"
)

// newTestDB opens a throwaway in-memory database for one test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$04$fakehashforstorageonly",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserCreate_AssignsIDAndTimestamps(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "alice@example.com")
	if user.ID == "" {
		t.Error("Create() should assign an ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Create() should set timestamps")
	}
}

func TestUserCreate_LowercasesEmail(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Email: "Alice@Example.COM", PasswordHash: "h"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.Users().GetByEmail(context.Background(), "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("stored email = %q, want lowercase", got.Email)
	}
}

func TestUserCreate_DuplicateEmailIsConflict(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice@example.com")

	err := db.Users().Create(context.Background(), &model.User{Email: "alice@example.com", PasswordHash: "h"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate email should be a conflict, got %v", err)
	}
}

func TestUserCreate_MissingEmailsDoNotCollide(t *testing.T) {
	db := newTestDB(t)

	// Two provider identities whose providers withheld the email. The
	// absent addresses are stored as NULL, which never collide under
	// the UNIQUE constraint.
	first := &model.User{GoogleID: "google-1", Verified: true}
	if err := db.Users().Create(context.Background(), first); err != nil {
		t.Fatalf("Create() first error = %v", err)
	}
	second := &model.User{LinkedInID: "linkedin-1", Verified: true}
	if err := db.Users().Create(context.Background(), second); err != nil {
		t.Fatalf("Create() second error = %v", err)
	}

	got, err := db.Users().GetByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "" {
		t.Errorf("email = %q, want empty", got.Email)
	}

	// An empty email never matches a NULL column.
	if _, err := db.Users().GetByEmail(context.Background(), ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail(\"\") should be not-found, got %v", err)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestUserGetByProviderID(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Email: "alice@example.com", GoogleID: "google-123", Verified: true}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.Users().GetByProviderID(context.Background(), auth.ProviderGoogle, "google-123")
	if err != nil {
		t.Fatalf("GetByProviderID() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("got user %q, want %q", got.ID, user.ID)
	}

	if _, err := db.Users().GetByProviderID(context.Background(), auth.ProviderLinkedIn, "google-123"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("wrong provider should be not-found, got %v", err)
	}

	if _, err := db.Users().GetByProviderID(context.Background(), "github", "x"); err == nil {
		t.Error("unknown provider should error")
	}
}

func TestUserGetByProviderID_NullColumnsDoNotMatchEmptyString(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice@example.com") // no provider IDs

	_, err := db.Users().GetByProviderID(context.Background(), auth.ProviderGoogle, "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("empty provider ID must not match NULL columns, got %v", err)
	}
}

func TestUserUpdate_RoundTripsTokenColumns(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")

	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	user.VerifyTokenHash = auth.HashToken("some-token")
	user.VerifyTokenExpiry = expiry
	if err := db.Users().Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Users().GetByVerifyTokenHash(context.Background(), auth.HashToken("some-token"))
	if err != nil {
		t.Fatalf("GetByVerifyTokenHash() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("got user %q, want %q", got.ID, user.ID)
	}
	if !got.VerifyTokenExpiry.Equal(expiry) {
		t.Errorf("expiry = %v, want %v", got.VerifyTokenExpiry, expiry)
	}
}

func TestUserUpdate_UnknownUserIsNotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Users().Update(context.Background(), &model.User{ID: "missing", Email: "x@example.com"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSetVerified_KeepsToken(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")

	user.VerifyTokenHash = auth.HashToken("tok")
	user.VerifyTokenExpiry = time.Now().Add(time.Hour)
	if err := db.Users().Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if err := db.Users().SetVerified(context.Background(), user.ID); err != nil {
		t.Fatalf("SetVerified() error = %v", err)
	}

	got, err := db.Users().GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Verified {
		t.Error("user should be verified")
	}
	if got.VerifyTokenHash == "" {
		t.Error("verification token should survive SetVerified")
	}

	// A re-presented link still resolves to the (now verified) account.
	again, err := db.Users().GetByVerifyTokenHash(context.Background(), auth.HashToken("tok"))
	if err != nil {
		t.Fatalf("GetByVerifyTokenHash() after SetVerified error = %v", err)
	}
	if again.ID != user.ID || !again.Verified {
		t.Errorf("token should resolve to the verified user, got %+v", again)
	}
}

func TestConsumeResetToken_ClaimsOnce(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")

	hash := auth.HashToken("reset-tok")
	user.ResetTokenHash = hash
	user.ResetTokenExpiry = time.Now().Add(30 * time.Minute)
	if err := db.Users().Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	now := time.Now()
	if err := db.Users().ConsumeResetToken(context.Background(), hash, "new-hash", now); err != nil {
		t.Fatalf("ConsumeResetToken() error = %v", err)
	}

	got, _ := db.Users().GetByID(context.Background(), user.ID)
	if got.PasswordHash != "new-hash" {
		t.Errorf("password hash = %q, want %q", got.PasswordHash, "new-hash")
	}
	if got.ResetTokenHash != "" || !got.ResetTokenExpiry.IsZero() {
		t.Error("reset token columns should be cleared")
	}

	// A second consumption of the same token matches zero rows.
	err := db.Users().ConsumeResetToken(context.Background(), hash, "another-hash", now)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second consume should be not-found, got %v", err)
	}
}

func TestConsumeResetToken_ExpiredTokenDoesNotMatch(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")

	hash := auth.HashToken("reset-tok")
	user.ResetTokenHash = hash
	user.ResetTokenExpiry = time.Now().Add(-time.Minute)
	if err := db.Users().Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	err := db.Users().ConsumeResetToken(context.Background(), hash, "new-hash", time.Now())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expired token should not be consumable, got %v", err)
	}

	// The password is untouched.
	got, _ := db.Users().GetByID(context.Background(), user.ID)
	if got.PasswordHash == "new-hash" {
		t.Error("password must not change when the token is expired")
	}
}

func TestStampLastLogin(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")

	at := time.Now().UTC().Truncate(time.Second)
	if err := db.Users().StampLastLogin(context.Background(), user.ID, at); err != nil {
		t.Fatalf("StampLastLogin() error = %v", err)
	}

	got, _ := db.Users().GetByID(context.Background(), user.ID)
	if !got.LastLogin.Equal(at) {
		t.Errorf("last login = %v, want %v", got.LastLogin, at)
	}
}
