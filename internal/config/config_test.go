package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("got port %q, want 8080", cfg.Server.Port)
	}
	if !cfg.Server.IsDevelopment() {
		t.Error("default env should be dev")
	}
	if cfg.Auth.TokenDriver != "jwt" {
		t.Errorf("got driver %q, want jwt", cfg.Auth.TokenDriver)
	}
	if cfg.Auth.SessionDuration != 60*time.Minute {
		t.Errorf("got session duration %v, want 60m", cfg.Auth.SessionDuration)
	}
	if cfg.Auth.ConfirmationTokenTTL != 10*time.Minute {
		t.Errorf("got confirmation ttl %v, want 10m", cfg.Auth.ConfirmationTokenTTL)
	}
}

func TestLoadJWTWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_TOKEN_DRIVER", "jwt")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET is unset")
	}
}

func TestLoadPasetoKeyLength(t *testing.T) {
	t.Setenv("AUTH_TOKEN_DRIVER", "paseto")
	t.Setenv("PASETO_KEY", "too short")

	if _, err := Load(); err == nil {
		t.Error("expected error for short PASETO key")
	}
}

func TestLoadUnknownDriver(t *testing.T) {
	t.Setenv("AUTH_TOKEN_DRIVER", "cookies")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown token driver")
	}
}

func TestTrustedOriginsParsing(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TRUSTED_ORIGINS", "https://app.example.com, https://staging.example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := []string{"https://app.example.com", "https://staging.example.com"}
	if len(cfg.Server.TrustedOrigins) != len(want) {
		t.Fatalf("got %v, want %v", cfg.Server.TrustedOrigins, want)
	}
	for i := range want {
		if cfg.Server.TrustedOrigins[i] != want[i] {
			t.Errorf("origin %d: got %q, want %q", i, cfg.Server.TrustedOrigins[i], want[i])
		}
	}
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", DBName: "uptask", SSLMode: "disable",
	}

	got := cfg.ConnectionString()
	want := "host=db port=5432 user=u password=p dbname=uptask sslmode=disable"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	cfg.ChannelBinding = "require"
	if got := cfg.ConnectionString(); got != want+" channel_binding=require" {
		t.Errorf("got %q", got)
	}
}
