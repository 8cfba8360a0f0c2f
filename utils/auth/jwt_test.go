package auth

import (
	"strings"
	"testing"
	"time"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "engagement-api-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()

	token, jti, err := m.GenerateAccessToken(42, "alice", 3)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if jti == "" {
		t.Error("expected a non-empty JTI")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username alice, got %q", claims.Username)
	}
	if claims.TokenType != "access" {
		t.Errorf("expected access token type, got %q", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("expected token version 3, got %d", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("expected JTI %q in claims, got %q", jti, claims.ID)
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := testManager()

	token, _, err := m.GenerateRefreshToken(42, "alice", 0)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("expected refresh token type, got %q", claims.TokenType)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	m := testManager()

	token, _, err := m.GenerateAccessToken(42, "alice", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	// Flip a character in the signature segment
	tampered := token[:len(token)-2] + "xx"
	if _, err := m.ValidateToken(tampered); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := testManager()
	other := NewJWTManager(JWTConfig{
		Secret:        "a-completely-different-secret",
		Expiry:        time.Hour,
		RefreshExpiry: time.Hour,
		Issuer:        "engagement-api-test",
	})

	token, _, err := m.GenerateAccessToken(42, "alice", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        -time.Minute,
		RefreshExpiry: -time.Minute,
		Issuer:        "engagement-api-test",
	})

	token, _, err := m.GenerateAccessToken(42, "alice", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, err = m.ValidateToken(token)
	if err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	m := testManager()

	for _, token := range []string{"", "not-a-token", "a.b.c", strings.Repeat("x", 500)} {
		if _, err := m.ValidateToken(token); err == nil {
			t.Errorf("expected garbage token %q to be rejected", token)
		}
	}
}

func TestGetTokenExpiry(t *testing.T) {
	m := testManager()

	token, _, err := m.GenerateAccessToken(42, "alice", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	expiry, err := m.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("GetTokenExpiry failed: %v", err)
	}

	until := time.Until(expiry)
	if until < 23*time.Hour || until > 25*time.Hour {
		t.Errorf("expected roughly 24h of validity, got %v", until)
	}
}
