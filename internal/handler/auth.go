package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"github.com/joovlink/joovlink/internal/auth"
	"github.com/joovlink/joovlink/internal/model"
	"github.com/joovlink/joovlink/internal/service"
)

// AuthHandler exposes the account lifecycle over HTTP: registration,
// verification, login, password reset, resend, and the OAuth redirect
// dance for Google and LinkedIn.
type AuthHandler struct {
	svc       *service.AuthService
	providers map[string]*auth.Provider // keyed by provider name
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler. providers may be empty when no
// OAuth credentials are configured; the OAuth routes then 404.
func NewAuthHandler(svc *service.AuthService, providers []*auth.Provider, logger *slog.Logger) *AuthHandler {
	byName := make(map[string]*auth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &AuthHandler{svc: svc, providers: byName, logger: logger}
}

// sessionUser is the trimmed projection login-style responses return.
// Secret columns are already json:"-" on the model; this narrows the
// payload further to what the frontend actually uses.
type sessionUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Picture    string `json:"picture,omitempty"`
	GoogleID   string `json:"googleId,omitempty"`
	LinkedInID string `json:"linkedinId,omitempty"`
	IsVerified bool   `json:"isVerified"`
}

func toSessionUser(u *model.User) sessionUser {
	return sessionUser{
		ID:         u.ID,
		Email:      u.Email,
		Picture:    u.Picture,
		GoogleID:   u.GoogleID,
		LinkedInID: u.LinkedInID,
		IsVerified: u.Verified,
	}
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register {email, password}
// 201 on success; 400 on duplicate email or policy violation. The
// response never echoes the verification token; it travels by email
// only.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Register(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Account created. Please check your email to verify.")
}

// HandleVerify consumes an emailed verification token.
//
// HTTP: GET /api/auth/verify?token=...
// 200 on success and on an already-verified account (idempotent);
// 400 on a missing, unknown, or expired token.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	alreadyVerified, err := h.svc.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return
	}

	if alreadyVerified {
		writeMessage(w, http.StatusOK, "Account already verified.")
		return
	}
	writeMessage(w, http.StatusOK, "Email verified successfully")
}

// HandleLogin authenticates with email and password.
//
// HTTP: POST /api/auth/login {email, password, rememberMe}
// 200 {token, user} on success; 400 on bad credentials (one generic
// message for both unknown email and wrong password); 403 when the
// account exists but is unverified.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}{
		Success: true,
		Token:   result.Token,
		User: struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}{ID: result.User.ID, Email: result.User.Email},
	})
}

// HandleForgotPassword starts the password reset flow.
//
// HTTP: POST /api/auth/forgot-password {email}
// Always 200 with a generic message whether or not the account exists,
// except OAuth-only accounts which get a distinct 400.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "If that email exists, a reset link has been sent.")
}

// HandleResetPassword completes the password reset flow.
//
// HTTP: POST /api/auth/reset-password {token, newPassword}
// 200 on success; 400 on an invalid/expired token, a policy violation,
// or an OAuth-only account.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password has been reset successfully")
}

// HandleResendVerification re-sends the verification email by address.
//
// HTTP: POST /api/auth/resend-verification {email}
// Always 200: unknown addresses get the generic wording, already
// verified accounts get their own message.
func (h *AuthHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	alreadyVerified, err := h.svc.ResendVerification(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	if alreadyVerified {
		writeMessage(w, http.StatusOK, "Account is already verified.")
		return
	}
	writeMessage(w, http.StatusOK,
		"If an account exists for this email, a new verification link has been sent.")
}

// HandleResendVerificationByToken re-sends the verification email for
// the account holding a (possibly expired) token.
//
// HTTP: POST /api/auth/resend-verification-by-token {token}
func (h *AuthHandler) HandleResendVerificationByToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	alreadyVerified, err := h.svc.ResendVerificationByToken(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	if alreadyVerified {
		writeMessage(w, http.StatusOK, "Account is already verified.")
		return
	}
	writeMessage(w, http.StatusOK, "Verification email has been resent.")
}

// HandleOAuthStart redirects the browser to the provider's
// authorization page.
//
// HTTP: GET /api/auth/{provider}
//
// The random state value goes into a short-lived HttpOnly cookie; the
// callback compares it against the state the provider echoes back,
// which is the standard CSRF defence for the code flow.
func (h *AuthHandler) HandleOAuthStart(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: "not_found", Message: "Unsupported OAuth provider",
		})
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleOAuthCallback completes the OAuth login flow.
//
// HTTP: GET /api/auth/{provider}/callback?code=xxx&state=yyy
// Terminates in 200 {token, user} with the session token also set as
// an HttpOnly cookie.
func (h *AuthHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.provider(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: "not_found", Message: "Unsupported OAuth provider",
		})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch",
			slog.String("provider", provider.Name()),
		)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "Invalid OAuth state",
		})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: user denied authorization",
			slog.String("provider", provider.Name()),
			slog.String("error", errParam),
		)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "Authorization was denied",
		})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "Missing OAuth code",
		})
		return
	}

	profile, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed",
			slog.String("provider", provider.Name()),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "internal_error", Message: "Authentication failed",
		})
		return
	}

	result, err := h.svc.OAuthLogin(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, struct {
		Success bool        `json:"success"`
		Token   string      `json:"token"`
		User    sessionUser `json:"user"`
	}{Success: true, Token: result.Token, User: toSessionUser(result.User)})
}

// HandleLogout clears the session cookie. Stateless tokens stay valid
// until expiry; logout just removes the browser's copy.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusOK, "Logged out")
}

// HandleMe returns the authenticated user's profile projection.
//
// HTTP: GET /api/me (requires auth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't bet on routing.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized", Message: "Authentication required",
		})
		return
	}

	user, err := h.svc.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionUser(user))
}

// provider resolves the {provider} path parameter.
func (h *AuthHandler) provider(r *http.Request) (*auth.Provider, bool) {
	name := chi.URLParam(r, "provider")
	p, ok := h.providers[name]
	return p, ok
}
