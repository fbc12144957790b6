package token

import (
	"testing"
)

const testSecret = "test-secret-key"

func TestGenerateAndValidateJWT(t *testing.T) {
	tokenString, err := GenerateJWT(42, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ValidateJWT(tokenString, testSecret)
	if err != nil {
		t.Fatalf("ValidateJWT failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user ID 42, got %d", claims.UserID)
	}
}

func TestValidateJWTWrongSecret(t *testing.T) {
	tokenString, err := GenerateJWT(42, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ValidateJWT(tokenString, "another-secret"); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}

func TestValidateJWTExpired(t *testing.T) {
	tokenString, err := GenerateJWT(42, testSecret, -1)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if _, err := ValidateJWT(tokenString, testSecret); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestValidateJWTGarbage(t *testing.T) {
	if _, err := ValidateJWT("not-a-token", testSecret); err == nil {
		t.Fatal("expected validation to fail for a malformed token")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tokenString, err := GenerateRefreshToken(7, testSecret, 30)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := ValidateJWT(tokenString, testSecret)
	if err != nil {
		t.Fatalf("ValidateJWT failed: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("expected user ID 7, got %d", claims.UserID)
	}
}
