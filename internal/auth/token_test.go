package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Sign("user-1")
	if err != nil {
		t.Fatal(err)
	}

	userID, err := m.Parse(token)
	if err != nil {
		t.Fatal(err)
	}
	if userID != "user-1" {
		t.Fatalf("userID=%s want=user-1", userID)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	if _, err := m.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Sign("user-1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute)

	token, err := m.Sign("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
