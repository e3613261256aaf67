package utils

import (
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	password := "secret"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !CheckPassword(password, hash) {
		t.Errorf("Expected password check to pass")
	}

	if CheckPassword("wrongpassword", hash) {
		t.Errorf("Expected password check to fail")
	}
}

func TestJWT(t *testing.T) {
	secret := "supersecret"
	userID := "0b7c2d4e-9a51-4f3e-8c11-2f0d6a7e5b90"
	role := "owner"

	token, err := GenerateToken(userID, role, secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("Expected UserID %s, got %s", userID, claims.UserID)
	}

	if claims.Role != role {
		t.Errorf("Expected Role %s, got %s", role, claims.Role)
	}

	_, err = ValidateToken(token, "wrongsecret")
	if err == nil {
		t.Errorf("Expected error with wrong secret")
	}
}

func TestGenerateTokenIsUniquePerCall(t *testing.T) {
	first, err := GenerateToken("u-1", "owner", "s3cret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	second, err := GenerateToken("u-1", "owner", "s3cret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens for separate logins")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := GenerateTokenWithTTL("u-1", "walker", "s3cret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateTokenWithTTL: %v", err)
	}
	if _, err := ValidateToken(token, "s3cret"); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
