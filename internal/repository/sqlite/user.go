package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/auth"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/repository"
)

// UserDB implements repository.UserRepository.
type UserDB struct {
	conn *sql.DB
}

// compile-time check that *UserDB implements the interface
var _ repository.UserRepository = (*UserDB)(nil)

const userColumns = `id, email, password_hash, google_id, linkedin_id, picture,
	verified, verify_token_hash, verify_token_expires,
	reset_token_hash, reset_token_expires, last_login, created_at, updated_at`

// Create inserts a new user. The repository owns ID generation and
// timestamps; it also lowercases the email so the UNIQUE constraint is
// a real case-normalized uniqueness guarantee. An empty email is stored
// as NULL: providers that withhold the address must not collide with
// each other on a UNIQUE empty string.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = xid.New().String()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.conn.ExecContext(ctx, `
		INSERT INTO users (
			id, email, password_hash, google_id, linkedin_id, picture,
			verified, verify_token_hash, verify_token_expires,
			reset_token_hash, reset_token_expires, last_login,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, nullable(user.Email), user.PasswordHash,
		nullable(user.GoogleID), nullable(user.LinkedInID), user.Picture,
		user.Verified,
		nullable(user.VerifyTokenHash), nullableTime(user.VerifyTokenExpiry),
		nullable(user.ResetTokenHash), nullableTime(user.ResetTokenExpiry),
		nullableTime(user.LastLogin),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sqlite: inserting user: %w",
				apperror.Conflict("email already registered"))
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}
	return nil
}

// GetByID returns the user with the given internal ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail returns the user with the given email, matching after
// case normalization.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
}

// GetByProviderID returns the user linked to the given OAuth identity.
func (u *UserDB) GetByProviderID(ctx context.Context, provider, providerID string) (*model.User, error) {
	var column string
	switch provider {
	case auth.ProviderGoogle:
		column = "google_id"
	case auth.ProviderLinkedIn:
		column = "linkedin_id"
	default:
		return nil, fmt.Errorf("sqlite: unknown OAuth provider %q", provider)
	}
	return u.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, providerID)
}

// GetByVerifyTokenHash finds the user holding the given verification
// token hash. Expiry is deliberately not part of the predicate: the
// verification flow distinguishes "no such token" from "token expired",
// and the resend-by-token flow accepts expired tokens on purpose.
func (u *UserDB) GetByVerifyTokenHash(ctx context.Context, hash string) (*model.User, error) {
	return u.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE verify_token_hash = ?`, hash)
}

// GetByResetTokenHash finds the user holding the given reset token
// hash, regardless of expiry. The actual consumption goes through
// ConsumeResetToken, which re-checks expiry atomically.
func (u *UserDB) GetByResetTokenHash(ctx context.Context, hash string) (*model.User, error) {
	return u.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = ?`, hash)
}

// Update writes the mutable fields of an existing user.
func (u *UserDB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := u.conn.ExecContext(ctx, `
		UPDATE users SET
			password_hash        = ?,
			google_id            = ?,
			linkedin_id          = ?,
			picture              = ?,
			verified             = ?,
			verify_token_hash    = ?,
			verify_token_expires = ?,
			reset_token_hash     = ?,
			reset_token_expires  = ?,
			last_login           = ?,
			updated_at           = ?
		WHERE id = ?`,
		user.PasswordHash,
		nullable(user.GoogleID), nullable(user.LinkedInID), user.Picture,
		user.Verified,
		nullable(user.VerifyTokenHash), nullableTime(user.VerifyTokenExpiry),
		nullable(user.ResetTokenHash), nullableTime(user.ResetTokenExpiry),
		nullableTime(user.LastLogin),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: updating user: %w", apperror.NotFound("user", user.ID))
	}
	return nil
}

// SetVerified marks the user verified. The verification token is kept
// on the row so a re-presented link still resolves to the account and
// reports it as already verified; only a resend rotates the token.
func (u *UserDB) SetVerified(ctx context.Context, id string) error {
	res, err := u.conn.ExecContext(ctx, `
		UPDATE users SET
			verified   = 1,
			updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking user %s verified: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: marking verified: %w", apperror.NotFound("user", id))
	}
	return nil
}

// ConsumeResetToken claims an unexpired reset token and installs the
// new password hash in a single conditional UPDATE. Because the token
// hash is part of the predicate and is nulled by the update itself, two
// concurrent requests with the same token cannot both succeed: the
// second one matches zero rows and gets ErrNotFound.
func (u *UserDB) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) error {
	res, err := u.conn.ExecContext(ctx, `
		UPDATE users SET
			password_hash       = ?,
			reset_token_hash    = NULL,
			reset_token_expires = NULL,
			updated_at          = ?
		WHERE reset_token_hash = ? AND reset_token_expires > ?`,
		newPasswordHash, now.UTC(), tokenHash, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: consuming reset token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sqlite: consuming reset token: %w",
			&apperror.AppError{Err: apperror.ErrNotFound, Message: "Invalid or expired token"})
	}
	return nil
}

// StampLastLogin records a successful authentication.
func (u *UserDB) StampLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := u.conn.ExecContext(ctx,
		`UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: stamping last login for %s: %w", id, err)
	}
	return nil
}

// getOne runs a single-row user query and maps sql.ErrNoRows to the
// application's not-found error.
func (u *UserDB) getOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	var (
		user         model.User
		email        sql.NullString
		googleID     sql.NullString
		linkedinID   sql.NullString
		verifyHash   sql.NullString
		verifyExpiry sql.NullTime
		resetHash    sql.NullString
		resetExpiry  sql.NullTime
		lastLogin    sql.NullTime
	)

	err := u.conn.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &email, &user.PasswordHash,
		&googleID, &linkedinID, &user.Picture,
		&user.Verified, &verifyHash, &verifyExpiry,
		&resetHash, &resetExpiry, &lastLogin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: querying user: %w",
			&apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"})
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying user: %w", err)
	}

	user.Email = email.String
	user.GoogleID = googleID.String
	user.LinkedInID = linkedinID.String
	user.VerifyTokenHash = verifyHash.String
	if verifyExpiry.Valid {
		user.VerifyTokenExpiry = verifyExpiry.Time
	}
	user.ResetTokenHash = resetHash.String
	if resetExpiry.Valid {
		user.ResetTokenExpiry = resetExpiry.Time
	}
	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}

	return &user, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. The pure-Go driver surfaces constraint errors as strings, so
// matching the message is the practical check.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
