package auth

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewPasetoServiceKeyLength(t *testing.T) {
	if _, err := NewPasetoService([]byte("too short")); err == nil {
		t.Error("expected error for short key")
	}
}

func TestPasetoRoundTrip(t *testing.T) {
	svc, err := NewPasetoService(bytes.Repeat([]byte("k"), 32))
	if err != nil {
		t.Fatalf("NewPasetoService returned error: %v", err)
	}

	userID := uuid.New()
	token, err := svc.CreateToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}

	if claims.UserID != userID.String() {
		t.Errorf("got user id %q, want %q", claims.UserID, userID)
	}
}

func TestPasetoExpiredToken(t *testing.T) {
	svc, err := NewPasetoService(bytes.Repeat([]byte("k"), 32))
	if err != nil {
		t.Fatalf("NewPasetoService returned error: %v", err)
	}

	token, err := svc.CreateToken(uuid.New(), -time.Minute)
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	if _, err := svc.VerifyToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestPasetoWrongKey(t *testing.T) {
	issuer, err := NewPasetoService(bytes.Repeat([]byte("a"), 32))
	if err != nil {
		t.Fatalf("NewPasetoService returned error: %v", err)
	}
	verifier, err := NewPasetoService(bytes.Repeat([]byte("b"), 32))
	if err != nil {
		t.Fatalf("NewPasetoService returned error: %v", err)
	}

	token, err := issuer.CreateToken(uuid.New(), time.Hour)
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	if _, err := verifier.VerifyToken(token); err == nil {
		t.Error("expected error for token encrypted with another key")
	}
}
