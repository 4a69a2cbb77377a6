package auth

import (
	"strings"
	"testing"
	"time"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{Secret: "secret", Issuer: "craftbazaar", TTL: 30 * time.Minute}
}

func TestMintAndParseSessionToken(t *testing.T) {
	cfg := testTokenConfig()
	now := time.Now().UTC()

	token, err := MintSessionToken(cfg, now, SessionPayload{UserID: "u-1", Email: "asha@example.com", Name: "Asha", Admin: true})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		t.Fatalf("parse session token: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("expected subject u-1, got %s", claims.Subject)
	}
	if claims.Email != "asha@example.com" || claims.Name != "Asha" || !claims.Admin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer mismatch: %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be populated")
	}
	if got := claims.ExpiresAt.Time.Sub(now); got < 29*time.Minute || got > 31*time.Minute {
		t.Fatalf("unexpected ttl %v", got)
	}
}

func TestMintSessionTokenValidation(t *testing.T) {
	now := time.Now()
	payload := SessionPayload{UserID: "u-1"}

	cases := map[string]TokenConfig{
		"missing secret": {Issuer: "craftbazaar", TTL: time.Minute},
		"missing issuer": {Secret: "secret", TTL: time.Minute},
		"zero ttl":       {Secret: "secret", Issuer: "craftbazaar"},
	}
	for name, cfg := range cases {
		if _, err := MintSessionToken(cfg, now, payload); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := MintSessionToken(testTokenConfig(), now, SessionPayload{}); err == nil {
		t.Fatalf("expected missing user id to fail")
	}
}

func TestParseSessionTokenRejectsWrongSecretAndExpired(t *testing.T) {
	cfg := testTokenConfig()
	token, err := MintSessionToken(cfg, time.Now(), SessionPayload{UserID: "u-1"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "other"
	if _, err := ParseSessionToken(other, token); err == nil {
		t.Fatalf("expected signature mismatch")
	}

	expired, err := MintSessionToken(cfg, time.Now().Add(-time.Hour), SessionPayload{UserID: "u-1"})
	if err != nil {
		t.Fatalf("mint expired: %v", err)
	}
	if _, err := ParseSessionToken(cfg, expired); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	token, err := MintSessionToken(testTokenConfig(), now, SessionPayload{UserID: "u-1"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	exp := TokenExpiry(token)
	if exp == nil {
		t.Fatalf("expected expiry")
	}
	if !exp.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry %v", exp)
	}

	if TokenExpiry("opaque-session-id") != nil {
		t.Fatalf("opaque tokens have no expiry")
	}
	if TokenExpiry("a.b.c") != nil {
		t.Fatalf("undecodable tokens have no expiry")
	}
}
