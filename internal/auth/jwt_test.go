package auth

import (
	"testing"
	"time"
)

func TestNewManagerAndTokenLifecycle(t *testing.T) {
	mgr, err := NewManager("test-secret", "issuer", time.Minute*30)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	token, expiresAt, err := mgr.GenerateToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("expected future expiry time")
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error parsing token: %v", err)
	}
	if claims.Subject != "admin" {
		t.Fatalf("expected subject admin, got %s", claims.Subject)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("expected role %s, got %s", RoleAdmin, claims.Role)
	}
}

func TestParseTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	mgr, _ := NewManager("secret-a", "imagestudio", time.Minute)
	other, _ := NewManager("secret-b", "imagestudio", time.Minute)

	token, _, err := other.GenerateToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := mgr.ParseToken(token); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return issued }
	token, _, err = mgr.GenerateToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	mgr.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := mgr.ParseToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("   ", "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
