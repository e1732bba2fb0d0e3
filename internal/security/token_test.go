package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenCodec_IssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := NewTokenCodec("super-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	tok, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	identity, err := codec.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.Subject != "user-123" {
		t.Fatalf("subject mismatch: got %q want %q", identity.Subject, "user-123")
	}
	if identity.Expired(time.Now()) {
		t.Fatal("fresh token reported expired")
	}
	if !identity.Expired(time.Now().Add(2 * time.Hour)) {
		t.Fatal("token not expired past its ttl")
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	t.Parallel()

	codec, err := NewTokenCodec("secret", -1*time.Second)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	// ttl <= 0 falls back to the default, so build an expired token by hand.
	codec.ttl = -1 * time.Second

	tok, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = codec.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenCodec("right-secret", time.Hour)
	verifier, _ := NewTokenCodec("wrong-secret", time.Hour)

	tok, err := issuer.Issue("u2")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = verifier.Verify(tok)
	if !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec, _ := NewTokenCodec("k", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b", "x.y.z"} {
		if _, err := codec.Verify(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Verify(%q): expected ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestTokenCodec_MissingSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenCodec("", time.Hour); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}

	var zero TokenCodec
	if _, err := zero.Issue("u"); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("zero codec Issue: expected ErrSecretMissing, got %v", err)
	}
	if _, err := zero.Verify("whatever"); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("zero codec Verify: expected ErrSecretMissing, got %v", err)
	}
}
