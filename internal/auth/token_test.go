// ABOUTME: Unit tests for JWT capability token validation and issuing
// ABOUTME: Tests valid tokens, invalid tokens, expired tokens, and capability claims

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-for-jwt-signing")

func newTestJWTValidator(t *testing.T) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("NewJWTValidator() error = %v", err)
	}
	return v
}

func TestJWTValidator_ValidToken(t *testing.T) {
	validator := newTestJWTValidator(t)

	token, err := validator.Issue("agent-1", []string{"twitter.read", "facebook.post"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := validator.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if claims.PrincipalID != "agent-1" {
		t.Errorf("PrincipalID = %q, want %q", claims.PrincipalID, "agent-1")
	}
	if !claims.Has("twitter.read") || !claims.Has("facebook.post") {
		t.Errorf("Capabilities = %v, want twitter.read and facebook.post", claims.Capabilities)
	}
	if claims.Has("instagram.write") {
		t.Error("Has(instagram.write) = true, want false")
	}
}

func TestNewJWTValidator_EmptySecret(t *testing.T) {
	_, err := NewJWTValidator(nil, "")
	if !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewJWTValidator(nil) error = %v, want ErrEmptySecret", err)
	}
}

func TestJWTValidator_InvalidToken(t *testing.T) {
	validator := newTestJWTValidator(t)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "garbage token",
			token: "not-a-jwt-token",
		},
		{
			name:  "malformed JWT",
			token: "header.payload.signature",
		},
		{
			name: "wrong secret",
			token: func() string {
				other, _ := NewJWTValidator([]byte("different-secret"), "")
				token, _ := other.Issue("agent-1", []string{"twitter.read"}, time.Hour)
				return token
			}(),
		},
		{
			name: "wrong algorithm",
			token: func() string {
				token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
					"sub": "agent-1",
					"exp": time.Now().Add(time.Hour).Unix(),
				})
				s, _ := token.SignedString(testSecret)
				return s
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.Validate(tt.token)
			if err == nil {
				t.Fatal("Validate() should have returned an error")
			}
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
			if !errors.Is(err, ErrAuthentication) {
				t.Errorf("Validate() error = %v, want it to match ErrAuthentication", err)
			}
		})
	}
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	validator := newTestJWTValidator(t)

	// Issue a token that expired 1 hour ago
	token, err := validator.Issue("agent-1", []string{"twitter.read"}, -time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = validator.Validate(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Validate() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTValidator_MissingSubject(t *testing.T) {
	validator := newTestJWTValidator(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"caps": []string{"twitter.read"},
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	_, err = validator.Validate(signed)
	if !errors.Is(err, ErrMissingClaim) {
		t.Errorf("Validate() error = %v, want ErrMissingClaim", err)
	}
}

func TestJWTValidator_Issuer(t *testing.T) {
	issuing, err := NewJWTValidator(testSecret, "herald")
	if err != nil {
		t.Fatalf("NewJWTValidator() error = %v", err)
	}
	token, err := issuing.Issue("agent-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuing.Validate(token); err != nil {
		t.Errorf("Validate() with matching issuer error = %v", err)
	}

	other, _ := NewJWTValidator(testSecret, "someone-else")
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() with wrong issuer error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTValidator_IssueRequiresPrincipal(t *testing.T) {
	validator := newTestJWTValidator(t)
	if _, err := validator.Issue("", nil, time.Hour); err == nil {
		t.Error("Issue(\"\") should have returned an error")
	}
}
