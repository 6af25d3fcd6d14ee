// ABOUTME: JWT capability tokens: HS256 signed, principal in "sub", capabilities in "caps"
// ABOUTME: JWTValidator verifies tokens and issues new ones for the CLI

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when a JWT validator is built without a signing secret.
var ErrEmptySecret = errors.New("jwt secret must not be empty")

// capabilityClaims is the JWT payload.
type capabilityClaims struct {
	Caps []string `json:"caps,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator implements Validator using HS256 signed JWTs
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a new JWT validator with the given secret.
// When issuer is non-empty, issued tokens carry it and validated tokens must match it.
func NewJWTValidator(secret []byte, issuer string) (*JWTValidator, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &JWTValidator{secret: secret, issuer: issuer}, nil
}

// Validate checks the signature and expiry and extracts the principal and capabilities.
func (v *JWTValidator) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var payload capabilityClaims
	token, err := jwt.ParseWithClaims(tokenString, &payload, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if payload.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return &Claims{
		PrincipalID:  payload.Subject,
		Capabilities: payload.Caps,
	}, nil
}

// Issue creates a token for the principal carrying the given capabilities.
func (v *JWTValidator) Issue(principalID string, caps []string, expiresIn time.Duration) (string, error) {
	if principalID == "" {
		return "", fmt.Errorf("principal id is required")
	}

	now := time.Now()
	claims := capabilityClaims{
		Caps: caps,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
