package state

import (
	"errors"
	"testing"
	"time"
)

func TestSignParse_RoundTrip(t *testing.T) {
	s := NewSigner([]byte("secret"), time.Minute)

	token, err := s.Sign(Claims{Provider: "acme"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := s.Parse(token, "acme")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Provider != "acme" {
		t.Fatalf("provider = %q", claims.Provider)
	}
	if claims.Nonce == "" {
		t.Fatal("nonce not generated")
	}
}

func TestParse_ProviderMismatch(t *testing.T) {
	s := NewSigner([]byte("secret"), time.Minute)

	token, err := s.Sign(Claims{Provider: "acme"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Parse(token, "other"); !errors.Is(err, ErrProvider) {
		t.Fatalf("got %v, want ErrProvider", err)
	}
}

func TestParse_Expired(t *testing.T) {
	s := &Signer{key: []byte("secret"), ttl: -time.Minute}

	token, err := s.Sign(Claims{Provider: "acme"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Parse(token, "acme"); !errors.Is(err, ErrExpired) {
		t.Fatalf("got %v, want ErrExpired", err)
	}
}

func TestParse_WrongKey(t *testing.T) {
	token, err := NewSigner([]byte("secret-a"), time.Minute).Sign(Claims{Provider: "acme"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewSigner([]byte("secret-b"), time.Minute).Parse(token, "acme"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("got %v, want ErrInvalid", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	s := NewSigner([]byte("secret"), time.Minute)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := s.Parse(raw, "acme"); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%q: got %v, want ErrInvalid", raw, err)
		}
	}
}
