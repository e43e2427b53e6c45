package utils

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func init() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("uid-1", "tokengen@test.com", 0)
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token string")
	}
	if dots := strings.Count(token, "."); dots != 2 {
		t.Errorf("expected JWT with 2 dots, got %d dots", dots)
	}
}

func TestValidateToken(t *testing.T) {
	token, err := GenerateToken("uid-2", "validate@test.com", 3)
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("expected no error validating token, got: %v", err)
	}
	if claims.UserID != "uid-2" {
		t.Errorf("expected user_id uid-2, got %s", claims.UserID)
	}
	if claims.Email != "validate@test.com" {
		t.Errorf("expected email validate@test.com, got %s", claims.Email)
	}
	if claims.Epoch != 3 {
		t.Errorf("expected epoch 3, got %d", claims.Epoch)
	}
	if claims.Issuer != TokenIssuer {
		t.Errorf("expected issuer %q, got %s", TokenIssuer, claims.Issuer)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	claims := Claims{
		UserID: "uid-3",
		Email:  "expired@test.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    TokenIssuer,
		},
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expiredToken, err := tokenObj.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken(expiredToken); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestTokenFromOtherIssuerRejected(t *testing.T) {
	claims := Claims{
		UserID: "uid-4",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
		},
	}
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, _ := tokenObj.SignedString([]byte(os.Getenv("JWT_SECRET")))

	if _, err := ValidateToken(token); err == nil {
		t.Fatal("expected error for foreign issuer")
	}
}

func TestTokenWithWrongSecretRejected(t *testing.T) {
	claims := Claims{
		UserID: "uid-5",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    TokenIssuer,
		},
	}
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, _ := tokenObj.SignedString([]byte("not-the-secret"))

	if _, err := ValidateToken(token); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	token, _ := GenerateToken("uid-6", "tamper@test.com", 0)
	tampered := token[:len(token)-2] + "xx"
	if _, err := ValidateToken(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
}
