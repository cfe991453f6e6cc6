package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndParseJWT(t *testing.T) {
	raw, err := SignJWT("secret", "user-123", "client", 60)
	if err != nil {
		t.Fatalf("SignJWT() error = %v", err)
	}

	claims, err := ParseJWT("secret", raw)
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if claims.UserID() != "user-123" {
		t.Errorf("UserID() = %q, want user-123", claims.UserID())
	}
	if claims.Role != "client" {
		t.Errorf("Role = %q, want client", claims.Role)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Error("token should expire in the future")
	}
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	raw, err := SignJWT("secret", "user-123", "client", 60)
	if err != nil {
		t.Fatalf("SignJWT() error = %v", err)
	}
	if _, err := ParseJWT("other", raw); err == nil {
		t.Error("token signed with a different secret should not parse")
	}
}

func TestParseJWTRejectsForeignToken(t *testing.T) {
	// valid signature but no issuer claim
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := foreign.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	if _, err := ParseJWT("secret", raw); err == nil {
		t.Error("token without our issuer should not parse")
	}
}

func TestParseJWTRejectsOtherSigningMethods(t *testing.T) {
	other := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Role: "client",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := other.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	if _, err := ParseJWT("secret", raw); err == nil {
		t.Error("non-HS256 token should not parse")
	}
}
