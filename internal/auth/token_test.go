package auth

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueVerify_UsesVerifyTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := &OneTimeTokens{now: fixedClock(now)}

	tok, err := o.IssueVerify()
	if err != nil {
		t.Fatalf("IssueVerify() error = %v", err)
	}
	if want := now.Add(DefaultVerifyTokenTTL); !tok.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", tok.ExpiresAt, want)
	}
}

func TestIssueReset_UsesResetTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := &OneTimeTokens{now: fixedClock(now)}

	tok, err := o.IssueReset()
	if err != nil {
		t.Fatalf("IssueReset() error = %v", err)
	}
	if want := now.Add(DefaultResetTokenTTL); !tok.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", tok.ExpiresAt, want)
	}
}

func TestIssue_PlaintextIs64HexChars(t *testing.T) {
	o := NewOneTimeTokens()

	tok, err := o.IssueVerify()
	if err != nil {
		t.Fatalf("IssueVerify() error = %v", err)
	}
	if len(tok.Plaintext) != 64 {
		t.Errorf("Plaintext length = %d, want 64", len(tok.Plaintext))
	}
	for _, c := range tok.Plaintext {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Fatalf("Plaintext contains non-hex character %q", c)
		}
	}
}

func TestIssue_HashMatchesHashToken(t *testing.T) {
	o := NewOneTimeTokens()

	tok, err := o.IssueReset()
	if err != nil {
		t.Fatalf("IssueReset() error = %v", err)
	}
	if tok.Hash != HashToken(tok.Plaintext) {
		t.Error("IssuedToken.Hash does not match HashToken(Plaintext)")
	}
	if tok.Hash == tok.Plaintext {
		t.Error("Hash must differ from Plaintext")
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	o := NewOneTimeTokens()

	a, _ := o.IssueVerify()
	b, _ := o.IssueVerify()
	if a.Plaintext == b.Plaintext {
		t.Error("two issued tokens must not collide")
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Error("HashToken must be deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Error("different inputs must produce different hashes")
	}
	// Known vector: sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashToken("abc"); got != want {
		t.Errorf("HashToken(\"abc\") = %q, want %q", got, want)
	}
}

func TestTTL_ZeroValueFallsBackToDefaults(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := &OneTimeTokens{VerifyTTL: 0, ResetTTL: 0, now: fixedClock(now)}

	v, _ := o.IssueVerify()
	r, _ := o.IssueReset()
	if !v.ExpiresAt.Equal(now.Add(DefaultVerifyTokenTTL)) {
		t.Error("zero VerifyTTL should fall back to the default")
	}
	if !r.ExpiresAt.Equal(now.Add(DefaultResetTokenTTL)) {
		t.Error("zero ResetTTL should fall back to the default")
	}
}
