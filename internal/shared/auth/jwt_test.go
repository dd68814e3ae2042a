package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	tokens, err := NewTokens("secret", "dev", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	raw, err := tokens.Sign(Claims{Email: "a@example.com"})
	if err == nil {
		t.Fatalf("expected missing subject to fail, got token %q", raw)
	}

	var c Claims
	c.Subject = "user-1"
	c.Email = "a@example.com"
	raw, err = tokens.Sign(c)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	got, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.UserID() != "user-1" || got.Email != "a@example.com" {
		t.Fatalf("unexpected claims %#v", got)
	}
	if got.ID == "" {
		t.Fatalf("expected token id to be set")
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	tokens, err := NewTokens("secret", "dev", time.Minute)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	var c Claims
	c.Subject = "user-1"
	raw, err := tokens.Sign(c)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be invalid, got %v", err)
	}

	other, err := NewTokens("other-secret", "dev", time.Minute)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	if _, err := other.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected foreign token to be invalid, got %v", err)
	}
}

func TestNewTokensRequiresSecretInProduction(t *testing.T) {
	if _, err := NewTokens("", "production", time.Hour); err == nil {
		t.Fatalf("expected error without secret in production")
	}
	if _, err := NewTokens("", "dev", time.Hour); err != nil {
		t.Fatalf("expected dev fallback secret, got %v", err)
	}
}
