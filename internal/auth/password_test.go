package auth

import (
	"errors"
	"testing"
	"time"
)

func TestPasswordHashingLifecycle(t *testing.T) {
	password := "S3curePass!"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	if hash == "" {
		t.Fatal("expected hash to be populated")
	}

	if err := VerifyPassword(hash, password); err != nil {
		t.Fatalf("expected password to verify, got error: %v", err)
	}

	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected verification to fail for wrong password")
	}
}

func TestAdminAuthenticatorLogin(t *testing.T) {
	hash, err := HashPassword("letmein")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	mgr, _ := NewManager("secret", "", time.Hour)
	authn := NewAdminAuthenticator(hash, mgr)

	token, _, err := authn.Login("letmein")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := authn.Tokens().ParseToken(token)
	if err != nil || claims.Role != RoleAdmin {
		t.Fatalf("expected admin claims, got %+v %v", claims, err)
	}

	if _, _, err := authn.Login("nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if NewAdminAuthenticator("", mgr).Enabled() {
		t.Fatal("authenticator without hash should be disabled")
	}
}
