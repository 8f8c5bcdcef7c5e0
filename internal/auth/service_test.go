package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := hashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("hash has unexpected format: %s", hash)
	}

	if !verifyPassword(hash, "correct horse battery staple") {
		t.Error("verifyPassword rejected the correct password")
	}

	if verifyPassword(hash, "wrong password") {
		t.Error("verifyPassword accepted a wrong password")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := hashPassword("same password")
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}
	h2, err := hashPassword("same password")
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password should differ by salt")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	malformed := []string{
		"",
		"not a hash",
		"$argon2id$v=19$m=65536,t=3,p=4$onlyonesegment",
		"$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
	}

	for _, h := range malformed {
		if verifyPassword(h, "anything") {
			t.Errorf("verifyPassword accepted malformed hash %q", h)
		}
	}
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 20; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generateCode returned error: %v", err)
		}

		if len(code) != 6 {
			t.Fatalf("code %q should be 6 characters", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains non-digit %q", code, c)
			}
		}

		seen[code] = true
	}

	// 20 draws from a million values colliding down to one would mean a
	// broken generator
	if len(seen) == 1 {
		t.Error("generateCode returned the same code 20 times")
	}
}
