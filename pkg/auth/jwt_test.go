package auth_test

import (
	"testing"
	"time"

	"github.com/S-KABILAN/ECOMMERCE/pkg/auth"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := auth.GenerateToken("64f1a2b3c4d5e6f7a8b9c0d1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "64f1a2b3c4d5e6f7a8b9c0d1" {
		t.Errorf("expected user ID round-trip, got %q", claims.UserID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := auth.ValidateToken("not.a.jwt"); err == nil {
		t.Error("expected malformed token to fail")
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	token, err := auth.GenerateToken("abc")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := auth.ValidateToken(tampered); err == nil {
		t.Error("expected tampered signature to fail")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret123" {
		t.Error("hash must not equal plaintext")
	}
	if !auth.CheckPassword(hash, "secret123") {
		t.Error("expected correct password to match")
	}
	if auth.CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func TestCookies(t *testing.T) {
	c := auth.Cookie("sometoken")
	if c.Name != auth.CookieName || c.Value != "sometoken" {
		t.Errorf("unexpected cookie: %+v", c)
	}
	if !c.HttpOnly {
		t.Error("session cookie must be HTTP-only")
	}
	if !c.Expires.After(time.Now()) {
		t.Error("session cookie must expire in the future")
	}

	e := auth.ExpiredCookie()
	if e.Value != "" || e.MaxAge != -1 {
		t.Errorf("expired cookie must clear the session: %+v", e)
	}
}
