// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents an account on the job board.
//
// An account is created either by local registration (email + password)
// or by a first OAuth login (Google or LinkedIn). The two paths leave
// different fields populated:
//
//   - Local accounts have a bcrypt PasswordHash and start unverified.
//     They must consume an emailed verification token before logging in.
//   - OAuth accounts have GoogleID and/or LinkedInID set, no local
//     password, and are verified from the start: the provider has
//     already proven control of the email address.
//
// SECRET FIELDS:
// PasswordHash and the token columns carry `json:"-"` so they can never
// leak through an API response, no matter which handler marshals the
// struct. Handlers that need a trimmed projection (login returns only
// id + email) build one explicitly.
//
// TOKEN STORAGE:
// VerifyTokenHash and ResetTokenHash hold the SHA-256 hex of the token,
// never the raw value. The raw token exists only inside the email link;
// lookups hash the presented token and compare hashes.
type User struct {
	ID           string `json:"id"    db:"id"`
	Email        string `json:"email" db:"email"` // unique, stored lowercased
	PasswordHash string `json:"-"     db:"password_hash"` // empty for OAuth-only accounts

	// OAuth linkage. Each provider ID is unique across users when present.
	GoogleID   string `json:"googleId,omitempty"   db:"google_id"`
	LinkedInID string `json:"linkedinId,omitempty" db:"linkedin_id"`
	Picture    string `json:"picture,omitempty"    db:"picture"`

	// Email verification state. A zero expiry means "no token issued".
	Verified          bool      `json:"isVerified" db:"verified"`
	VerifyTokenHash   string    `json:"-"          db:"verify_token_hash"`
	VerifyTokenExpiry time.Time `json:"-"          db:"verify_token_expires"`

	// Password reset state.
	ResetTokenHash   string    `json:"-" db:"reset_token_hash"`
	ResetTokenExpiry time.Time `json:"-" db:"reset_token_expires"`

	LastLogin time.Time `json:"lastLogin,omitzero" db:"last_login"`
	CreatedAt time.Time `json:"createdAt"          db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt"          db:"updated_at"`
}

// HasPassword reports whether the account can authenticate locally.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// IsOAuthOnly reports whether the account was created through a provider
// and never set a local password. Such accounts must not go through the
// password reset flow; there is no password to reset.
func (u *User) IsOAuthOnly() bool {
	return !u.HasPassword() && (u.GoogleID != "" || u.LinkedInID != "")
}
