package identity

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	actor := Actor{AccountID: 42, Email: "pat@example.com", Role: RolePatient}

	token, err := tm.Issue(actor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got != actor {
		t.Fatalf("actor mismatch: got %+v, want %+v", got, actor)
	}
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue(Actor{AccountID: 1, Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := tm.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue(Actor{AccountID: 1, Role: RolePatient})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Validate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	for _, s := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tm.Validate(s); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("Validate(%q): expected ErrTokenInvalid, got %v", s, err)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "provider", "patient"} {
		if _, err := ParseRole(s); err != nil {
			t.Fatalf("ParseRole(%q): %v", s, err)
		}
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
