package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/radassist/radassist/internal/platform/apperr"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)
	id := uuid.New()

	token, err := codec.Sign(id, "docone", RoleDoctor)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	p, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.AccountID != id || p.Username != "docone" || p.Role != RoleDoctor {
		t.Errorf("principal = %+v", p)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	codec := NewTokenCodec("test-secret", -time.Minute)

	token, err := codec.Sign(uuid.New(), "u", RolePatient)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.Verify(token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("want ErrUnauthenticated, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenCodec("secret-a", time.Hour).Sign(uuid.New(), "u", RolePatient)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenCodec("secret-b", time.Hour).Verify(token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("want ErrUnauthenticated, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Verify(tok); !errors.Is(err, apperr.ErrUnauthenticated) {
			t.Errorf("token %q: want ErrUnauthenticated, got %v", tok, err)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}

	ok, err := VerifyPassword(hash, "s3cret-pass")
	if err != nil || !ok {
		t.Errorf("match = %v, err = %v", ok, err)
	}
	ok, err = VerifyPassword(hash, "wrong")
	if err != nil {
		t.Fatalf("mismatch should not be an error: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}
