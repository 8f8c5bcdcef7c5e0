package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJWTServiceEmptySecret(t *testing.T) {
	if _, err := NewJWTService(nil); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	svc, err := NewJWTService([]byte("test-secret"))
	if err != nil {
		t.Fatalf("NewJWTService returned error: %v", err)
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
	if !claims.ExpiresAt.After(time.Now()) {
		t.Error("expiry should be in the future")
	}
}

func TestJWTExpiredToken(t *testing.T) {
	svc, err := NewJWTService([]byte("test-secret"))
	if err != nil {
		t.Fatalf("NewJWTService returned error: %v", err)
	}

	token, err := svc.CreateToken(uuid.New(), -time.Minute)
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("got %v, want ErrExpiredToken", err)
	}
}

func TestJWTInvalidToken(t *testing.T) {
	svc, err := NewJWTService([]byte("test-secret"))
	if err != nil {
		t.Fatalf("NewJWTService returned error: %v", err)
	}

	if _, err := svc.VerifyToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	issuer, err := NewJWTService([]byte("secret-a"))
	if err != nil {
		t.Fatalf("NewJWTService returned error: %v", err)
	}
	verifier, err := NewJWTService([]byte("secret-b"))
	if err != nil {
		t.Fatalf("NewJWTService returned error: %v", err)
	}

	token, err := issuer.CreateToken(uuid.New(), time.Hour)
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	if _, err := verifier.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}
