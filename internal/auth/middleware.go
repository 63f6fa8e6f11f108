package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
// Only this package can create a key of this type, so no other package
// can read or shadow the userID value we store in the request context.
type contextKey string

const userIDKey contextKey = "userID"

// SessionCookieName is the HttpOnly cookie the OAuth callback sets. The
// Next.js frontend normally sends the token in the Authorization header
// instead; the middleware accepts either.
const SessionCookieName = "token"

// RequireAuth is a middleware that enforces authentication on protected
// routes. It reads the session token from the Authorization: Bearer
// header or the token cookie, validates it, and stores the userID in
// the request context. Missing or invalid tokens end the request with
// 401 Unauthorized.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the user identity if a valid token is present
// but never blocks the request. Public routes use it so handlers can
// tailor responses for logged-in users while staying anonymous-safe.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the
// request context. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID pulls and validates the session token from a request.
// Header wins over cookie when both are present.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	tokenStr := ""

	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tokenStr = strings.TrimPrefix(h, "Bearer ")
	} else if c, err := r.Cookie(SessionCookieName); err == nil {
		tokenStr = c.Value
	}

	if tokenStr == "" {
		return "", http.ErrNoCookie
	}

	return tokens.Validate(tokenStr)
}
