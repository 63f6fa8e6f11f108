package auth

import (
	"net/url"
	"strings"
	"testing"
)

func TestAuthURL_CarriesStateAndRedirect(t *testing.T) {
	p := NewGoogleProvider("client-id", "client-secret", "http://localhost:8080/api/auth/google/callback")

	if p.Name() != ProviderGoogle {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderGoogle)
	}

	raw := p.AuthURL("state-xyz")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthURL() returned unparseable URL: %v", err)
	}

	q := u.Query()
	if q.Get("state") != "state-xyz" {
		t.Errorf("state = %q, want %q", q.Get("state"), "state-xyz")
	}
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "http://localhost:8080/api/auth/google/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if !strings.Contains(q.Get("scope"), "email") {
		t.Errorf("scope = %q, should request email", q.Get("scope"))
	}
}

func TestLinkedInProvider_Name(t *testing.T) {
	p := NewLinkedInProvider("id", "secret", "http://localhost/cb")
	if p.Name() != ProviderLinkedIn {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderLinkedIn)
	}
}
