package auth

import (
	"testing"
	"time"

	"github.com/aguilarm/mobiliario/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, 1, "admin", model.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("user_id = %d, want 1", claims.UserID)
	}
	if claims.Username != "admin" {
		t.Errorf("username = %q", claims.Username)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("role = %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", 1, "admin", model.RoleAdmin)

	if _, err := ValidateToken("secret2", token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("secret", "not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _ := GenerateToken(secret, 1, "test", model.RoleUser)
	claims, _ := ValidateToken(secret, token)

	diff := time.Until(claims.ExpiresAt.Time) - TokenExpiry
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry off by %v", diff)
	}
}

func TestUniqueJTIs(t *testing.T) {
	secret := "test"
	a, _ := GenerateToken(secret, 1, "test", model.RoleUser)
	b, _ := GenerateToken(secret, 1, "test", model.RoleUser)

	ca, _ := ValidateToken(secret, a)
	cb, _ := ValidateToken(secret, b)
	if ca.ID == cb.ID {
		t.Error("two tokens share a JTI")
	}
}
