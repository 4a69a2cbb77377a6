package security_test

import (
	"strings"
	"testing"

	"github.com/angelmondragon/craftbazaar/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("terracotta42", security.DefaultHashParams())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("terracotta42", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordClampsParams(t *testing.T) {
	hash, err := security.HashPassword("terracotta42", security.HashParams{})
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.Contains(hash, "m=8,t=1,p=1") {
		t.Fatalf("expected clamped params in %q", hash)
	}
	if ok, _ := security.VerifyPassword("terracotta42", hash); !ok {
		t.Fatal("clamped hash should still verify")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", security.DefaultHashParams()); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$abc$def", "$argon2id$v=19$m=x,t=1,p=1$abc$def"} {
		if _, err := security.VerifyPassword("pw", encoded); err != security.ErrInvalidHash {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"short1":       false,
		"onlyletters":  false,
		"1234567890":   false,
		"terracotta42": true,
	}
	for password, ok := range cases {
		err := security.CheckPasswordStrength(password)
		if ok && err != nil {
			t.Fatalf("%q should pass: %v", password, err)
		}
		if !ok && err == nil {
			t.Fatalf("%q should fail", password)
		}
	}
}
