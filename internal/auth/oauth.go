package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/linkedin"
)

// Provider names accepted by the OAuth login flow. Anything else is
// rejected before any network call happens.
const (
	ProviderGoogle   = "google"
	ProviderLinkedIn = "linkedin"
)

// ExternalProfile is the normalized identity a provider asserts after a
// successful code exchange. The linking flow only ever sees this shape;
// the per-provider quirks (Google's userinfo uses "sub", older APIs use
// "id", picture fields differ) are absorbed here so downstream code
// never branches on provider field names.
type ExternalProfile struct {
	Provider string // ProviderGoogle or ProviderLinkedIn
	ID       string // provider's stable user ID; never empty on success
	Email    string // may be empty if the provider withholds it
	Name     string
	Picture  string
}

// Provider wraps golang.org/x/oauth2 for one identity provider's
// authorization-code flow.
//
// A Provider holds only immutable configuration (client ID/secret,
// endpoints). Each Exchange builds its own HTTP client from the request
// context, so there is no shared mutable client state between requests.
type Provider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider creates the Google provider using the standard
// OpenID Connect scopes. callbackURL must exactly match the redirect
// URI registered in the Google Cloud console.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *Provider {
	return &Provider{
		name: ProviderGoogle,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
	}
}

// NewLinkedInProvider creates the LinkedIn provider using LinkedIn's
// OpenID Connect scopes.
func NewLinkedInProvider(clientID, clientSecret, callbackURL string) *Provider {
	return &Provider{
		name: ProviderLinkedIn,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     linkedin.Endpoint,
		},
		userInfoURL: "https://api.linkedin.com/v2/userinfo",
	}
}

// Name returns the provider's wire name ("google" or "linkedin").
func (p *Provider) Name() string {
	return p.name
}

// AuthURL returns the URL to redirect the user's browser to for
// authorization. state is the random CSRF value the callback verifies.
func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// userInfoPayload covers the userinfo responses of both providers.
// OpenID Connect endpoints put the stable user ID in "sub"; some older
// provider APIs use "id". Normalization below takes whichever is set.
type userInfoPayload struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Exchange completes the authorization-code flow: it trades the code
// for an access token, calls the provider's userinfo endpoint, and
// returns the normalized profile.
func (p *Provider) Exchange(ctx context.Context, code string) (ExternalProfile, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return ExternalProfile{}, fmt.Errorf("auth: exchanging OAuth code with %s: %w", p.name, err)
	}

	// config.Client returns an *http.Client that attaches the bearer
	// token to every request and is scoped to this exchange only.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return ExternalProfile{}, fmt.Errorf("auth: fetching %s userinfo: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ExternalProfile{}, fmt.Errorf("auth: %s userinfo returned status %d", p.name, resp.StatusCode)
	}

	var payload userInfoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ExternalProfile{}, fmt.Errorf("auth: decoding %s userinfo: %w", p.name, err)
	}

	profile := ExternalProfile{
		Provider: p.name,
		ID:       payload.Sub,
		Email:    payload.Email,
		Name:     payload.Name,
		Picture:  payload.Picture,
	}
	if profile.ID == "" {
		profile.ID = payload.ID
	}
	if profile.ID == "" {
		return ExternalProfile{}, fmt.Errorf("auth: %s returned a profile without a user ID", p.name)
	}

	return profile, nil
}
