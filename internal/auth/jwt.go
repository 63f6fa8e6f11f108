package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session token lifetimes. A plain login gets a short-lived token; a
// login with "remember me" checked gets a week.
const (
	SessionTTL         = time.Hour
	SessionTTLRemember = 7 * 24 * time.Hour

	tokenIssuer = "joovlink"
)

// TokenService issues and validates the signed session tokens that
// assert a user identity on authenticated requests.
//
// Tokens are HS256 JWTs: stateless, so validation needs no database
// lookup, only the shared HMAC secret. The user ID travels in the
// standard "sub" claim.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production
// (e.g. JWT_SECRET=$(openssl rand -hex 32)).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The registered claims carry everything we
// need: Subject for the user ID, ExpiresAt for the lifetime.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given userID.
// remember selects the extended lifetime.
func (s *TokenService) Generate(userID string, remember bool) (string, error) {
	ttl := SessionTTL
	if remember {
		ttl = SessionTTLRemember
	}
	return s.GenerateWithDuration(userID, ttl)
}

// GenerateWithDuration creates a session token with a custom expiry.
// Used by tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token string and returns the
// userID it encodes.
//
// The jwt library checks the signature, the expiry, and the issuer.
// Restricting the accepted algorithms to HS256 closes the classic
// algorithm-confusion hole where an attacker submits a token signed
// with "none".
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
