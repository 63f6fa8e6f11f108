// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-layer split:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (rules)    → validates, enforces rules, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services receive repository interfaces and other collaborators via
// their constructors, so tests can swap in fakes without touching HTTP
// or a real database.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joovlink/joovlink/internal/apperror"
	"github.com/joovlink/joovlink/internal/auth"
	"github.com/joovlink/joovlink/internal/email"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/repository"
)

// AuthService implements the account lifecycle: registration, email
// verification, login, password reset, and OAuth login/linking.
//
// Error messages returned through apperror are user-facing; the wording
// matters. In particular:
//
//   - Login failures for a wrong email and a wrong password share one
//     generic message, so the endpoint cannot be used to enumerate
//     registered addresses.
//   - The "please verify your email" rejection is deliberately
//     distinct (and a 403 rather than 400): a user who just mistyped
//     their password needs different guidance than one who never
//     clicked the verification link. That asymmetry with the
//     anti-enumeration rule above is a product decision.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	onetime   *auth.OneTimeTokens
	mailer    email.Sender
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	onetime *auth.OneTimeTokens,
	mailer email.Sender,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		onetime:   onetime,
		mailer:    mailer,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued session token, so
// the handler can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new unverified account and emails the
// verification link.
//
// A failing email send is a real error, not a detail to swallow: the
// account exists but the user cannot verify it, so the caller must
// learn something went wrong. The resend-verification endpoint is the
// recovery path.
func (s *AuthService) Register(ctx context.Context, emailAddr, password string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return apperror.ValidationFailed("email", "Email is required")
	}

	// Exact, case-normalized duplicate check. The UNIQUE constraint
	// backstops the race between check and insert.
	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return apperror.ValidationFailed("email", "Email already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/auth: checking existing email: %w", err)
	}

	if result := auth.CheckPasswordPolicy(password, emailAddr); !result.OK {
		return apperror.ValidationFailed("password", result.Message)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("service/auth: hashing password: %w", err)
	}

	verify, err := s.onetime.IssueVerify()
	if err != nil {
		return fmt.Errorf("service/auth: issuing verification token: %w", err)
	}

	user := &model.User{
		Email:             emailAddr,
		PasswordHash:      hash,
		Verified:          false,
		VerifyTokenHash:   verify.Hash,
		VerifyTokenExpiry: verify.ExpiresAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return apperror.ValidationFailed("email", "Email already registered")
		}
		return fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	if err := s.mailer.SendVerification(ctx, user.Email, verify.Plaintext); err != nil {
		s.logger.Error("verification email failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/auth: sending verification email: %w", err)
	}

	return nil
}

// Verify consumes a verification token and marks the account verified.
//
// Returns alreadyVerified=true when the account behind the token is
// verified already: verifying twice is not an error, the second call
// just reports the state. A token that never matched anything is an
// error regardless.
func (s *AuthService) Verify(ctx context.Context, token string) (alreadyVerified bool, err error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, apperror.ValidationFailed("token", "Missing token")
	}

	user, err := s.users.GetByVerifyTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, apperror.ValidationFailed("token", "Invalid or expired token")
		}
		return false, fmt.Errorf("service/auth: looking up verification token: %w", err)
	}

	if user.Verified {
		return true, nil
	}

	if user.VerifyTokenExpiry.IsZero() || user.VerifyTokenExpiry.Before(time.Now()) {
		return false, apperror.ValidationFailed("token", "Token expired")
	}

	// The token stays on the row after this, so a second click on the
	// same link resolves above and takes the already-verified branch.
	if err := s.users.SetVerified(ctx, user.ID); err != nil {
		return false, fmt.Errorf("service/auth: marking user verified: %w", err)
	}

	s.logger.Info("email verified", slog.String("userID", user.ID))
	return false, nil
}

// Login validates credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string, remember bool) (*AuthResult, error) {
	// One generic message for "no such account" and "wrong password".
	invalidCredentials := apperror.ValidationFailed("", "Invalid email or password")

	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalidCredentials
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !user.HasPassword() {
		// The account only exists through a provider; there is no
		// password to check.
		return nil, apperror.ValidationFailed("", "This account was created using Google/LinkedIn login")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, invalidCredentials
	}

	if !user.Verified {
		return nil, apperror.Forbidden("Please verify your email first")
	}

	now := time.Now()
	if err := s.users.StampLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("service/auth: stamping last login: %w", err)
	}
	user.LastLogin = now

	token, err := s.tokens.Generate(user.ID, remember)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating session token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.Bool("remember", remember),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// ForgotPassword issues a reset token and emails the reset link.
//
// A nil return for an unknown email is intentional: the handler answers
// with the same generic message whether or not the account exists.
// OAuth-only accounts are the one exception and get a distinct
// rejection, matching the reset flow's own guard.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return apperror.ValidationFailed("email", "Email is required")
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if user.IsOAuthOnly() {
		return apperror.ValidationFailed("email", "Social login accounts cannot reset password this way")
	}

	reset, err := s.onetime.IssueReset()
	if err != nil {
		return fmt.Errorf("service/auth: issuing reset token: %w", err)
	}

	user.ResetTokenHash = reset.Hash
	user.ResetTokenExpiry = reset.ExpiresAt
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("service/auth: storing reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, reset.Plaintext); err != nil {
		s.logger.Error("reset email failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/auth: sending reset email: %w", err)
	}

	s.logger.Info("password reset requested", slog.String("userID", user.ID))
	return nil
}

// ResetPassword consumes a reset token and installs a new password.
//
// The final commit goes through ConsumeResetToken, a single conditional
// update keyed on the token hash and its expiry. The earlier read only
// fetches the email for the policy check and the OAuth guard; even if
// two requests race past that read, only one can win the update.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperror.ValidationFailed("token", "Missing token")
	}
	if newPassword == "" {
		return apperror.ValidationFailed("password", "Password is required")
	}

	invalidToken := apperror.ValidationFailed("token", "Invalid or expired token")

	tokenHash := auth.HashToken(token)
	user, err := s.users.GetByResetTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return invalidToken
		}
		return fmt.Errorf("service/auth: looking up reset token: %w", err)
	}

	if user.IsOAuthOnly() {
		return apperror.ValidationFailed("email", "Social login accounts cannot reset password this way")
	}

	if result := auth.CheckPasswordPolicy(newPassword, user.Email); !result.OK {
		return apperror.ValidationFailed("password", result.Message)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/auth: hashing new password: %w", err)
	}

	if err := s.users.ConsumeResetToken(ctx, tokenHash, hash, time.Now()); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Expired, or consumed by a concurrent request between our
			// read and this update.
			return invalidToken
		}
		return fmt.Errorf("service/auth: consuming reset token: %w", err)
	}

	s.logger.Info("password reset", slog.String("userID", user.ID))
	return nil
}

// ResendVerification re-issues the verification token for an email
// address. Unknown emails report generic success (alreadyVerified
// false, nil error) so the endpoint cannot confirm account existence;
// verified accounts report alreadyVerified=true without sending.
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) (alreadyVerified bool, err error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return false, apperror.ValidationFailed("email", "Email is required")
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if user.Verified {
		return true, nil
	}

	return false, s.rotateAndSendVerification(ctx, user)
}

// ResendVerificationByToken re-issues the verification token for the
// account holding the presented token. Expiry is ignored on lookup:
// the whole point is recovering from a token that sat unused too long.
// The old token is replaced, not revived.
func (s *AuthService) ResendVerificationByToken(ctx context.Context, token string) (alreadyVerified bool, err error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, apperror.ValidationFailed("token", "Missing token")
	}

	user, err := s.users.GetByVerifyTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, apperror.ValidationFailed("token", "Invalid token")
		}
		return false, fmt.Errorf("service/auth: looking up verification token: %w", err)
	}

	if user.Verified {
		return true, nil
	}

	return false, s.rotateAndSendVerification(ctx, user)
}

func (s *AuthService) rotateAndSendVerification(ctx context.Context, user *model.User) error {
	verify, err := s.onetime.IssueVerify()
	if err != nil {
		return fmt.Errorf("service/auth: issuing verification token: %w", err)
	}

	user.VerifyTokenHash = verify.Hash
	user.VerifyTokenExpiry = verify.ExpiresAt
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("service/auth: storing verification token: %w", err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, verify.Plaintext); err != nil {
		s.logger.Error("verification email failed",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/auth: sending verification email: %w", err)
	}

	s.logger.Info("verification email resent", slog.String("userID", user.ID))
	return nil
}

// OAuthLogin finds or creates the account for an external identity and
// issues a session token.
//
// Lookup order: provider ID first, then email. The email fallback is
// what links a provider identity to an account that registered locally
// with the same address, instead of creating a duplicate.
//
// Accounts created here are verified from the start and have no local
// password: the provider asserting the email is the verification. That
// bypass of the local verification flow is intentional.
func (s *AuthService) OAuthLogin(ctx context.Context, profile auth.ExternalProfile) (*AuthResult, error) {
	if profile.Provider != auth.ProviderGoogle && profile.Provider != auth.ProviderLinkedIn {
		return nil, apperror.ValidationFailed("provider", "Unsupported OAuth provider")
	}
	if profile.ID == "" {
		return nil, apperror.ValidationFailed("profile", "Invalid OAuth profile data")
	}

	now := time.Now()

	user, err := s.users.GetByProviderID(ctx, profile.Provider, profile.ID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up provider identity: %w", err)
	}

	if user == nil && profile.Email != "" {
		user, err = s.users.GetByEmail(ctx, normalizeEmail(profile.Email))
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: looking up user by email: %w", err)
		}
	}

	if user == nil {
		user = &model.User{
			Email:     normalizeEmail(profile.Email),
			Picture:   profile.Picture,
			Verified:  true,
			LastLogin: now,
		}
		setProviderID(user, profile)

		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating OAuth user: %w", err)
		}
		s.logger.Info("user created via OAuth",
			slog.String("userID", user.ID),
			slog.String("provider", profile.Provider),
		)
	} else {
		// Existing account: refresh linkage, cached picture, and the
		// login stamp.
		setProviderID(user, profile)
		if profile.Picture != "" {
			user.Picture = profile.Picture
		}
		user.LastLogin = now

		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: updating OAuth user: %w", err)
		}
		s.logger.Info("user logged in via OAuth",
			slog.String("userID", user.ID),
			slog.String("provider", profile.Provider),
		)
	}

	token, err := s.tokens.Generate(user.ID, false)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating session token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// /api/me handler after the middleware validates the session token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

func setProviderID(user *model.User, profile auth.ExternalProfile) {
	switch profile.Provider {
	case auth.ProviderGoogle:
		user.GoogleID = profile.ID
	case auth.ProviderLinkedIn:
		user.LinkedInID = profile.ID
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
