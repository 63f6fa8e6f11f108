package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Default lifetimes for the two one-time token kinds. Both are
// configurable on OneTimeTokens; these are the values used when the
// zero value would otherwise slip through.
const (
	DefaultVerifyTokenTTL = 24 * time.Hour
	DefaultResetTokenTTL  = 30 * time.Minute

	// oneTimeTokenBytes is the entropy of a one-time token. 32 random
	// bytes → 64 hex characters, far beyond guessable.
	oneTimeTokenBytes = 32
)

// IssuedToken is a freshly generated one-time token.
//
// RAW VS HASH:
// Plaintext is what goes into the email link and is never persisted.
// Hash (SHA-256 hex of Plaintext) is what the users table stores.
// When a token comes back from a link, hash it with HashToken and look
// up by hash. A database leak then exposes nothing usable: SHA-256 of a
// 256-bit random value cannot be reversed or brute-forced.
type IssuedToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// OneTimeTokens issues verification and reset tokens. The two kinds are
// identical in construction and differ only in lifetime, so one issuer
// covers both.
type OneTimeTokens struct {
	VerifyTTL time.Duration
	ResetTTL  time.Duration

	// now is swappable in tests to pin expiry timestamps.
	now func() time.Time
}

// NewOneTimeTokens creates an issuer with the default lifetimes.
func NewOneTimeTokens() *OneTimeTokens {
	return &OneTimeTokens{
		VerifyTTL: DefaultVerifyTokenTTL,
		ResetTTL:  DefaultResetTokenTTL,
		now:       time.Now,
	}
}

// IssueVerify generates a new email verification token.
func (o *OneTimeTokens) IssueVerify() (IssuedToken, error) {
	return o.issue(o.ttl(o.VerifyTTL, DefaultVerifyTokenTTL))
}

// IssueReset generates a new password reset token.
func (o *OneTimeTokens) IssueReset() (IssuedToken, error) {
	return o.issue(o.ttl(o.ResetTTL, DefaultResetTokenTTL))
}

func (o *OneTimeTokens) ttl(configured, fallback time.Duration) time.Duration {
	if configured <= 0 {
		return fallback
	}
	return configured
}

func (o *OneTimeTokens) issue(ttl time.Duration) (IssuedToken, error) {
	buf := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return IssuedToken{}, fmt.Errorf("auth: generating token: %w", err)
	}

	nowFn := o.now
	if nowFn == nil {
		nowFn = time.Now
	}

	plaintext := hex.EncodeToString(buf)
	return IssuedToken{
		Plaintext: plaintext,
		Hash:      HashToken(plaintext),
		ExpiresAt: nowFn().Add(ttl),
	}, nil
}

// HashToken computes the SHA-256 hex digest of a one-time token. Both
// the issuer (on store) and the flows (on lookup) go through this, so
// the storage policy cannot drift between the two sides.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
