// ABOUTME: Fixed-value token validation against bcrypt hashes from configuration
// ABOUTME: Lets operators hand out long-lived tokens without a signing secret

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// StaticToken is one configured fixed token.
type StaticToken struct {
	PrincipalID  string
	TokenHash    string // bcrypt hash of the token
	Capabilities []string
}

// StaticValidator accepts tokens whose bcrypt hash is configured.
type StaticValidator struct {
	tokens []StaticToken
}

// NewStaticValidator checks every entry and returns a validator over them.
func NewStaticValidator(tokens []StaticToken) (*StaticValidator, error) {
	for i, t := range tokens {
		if t.PrincipalID == "" {
			return nil, fmt.Errorf("static token %d: principal id is required", i)
		}
		if _, err := bcrypt.Cost([]byte(t.TokenHash)); err != nil {
			return nil, fmt.Errorf("static token %q: invalid bcrypt hash: %w", t.PrincipalID, err)
		}
	}
	copied := make([]StaticToken, len(tokens))
	copy(copied, tokens)
	return &StaticValidator{tokens: copied}, nil
}

// Validate compares the token against each configured hash.
func (v *StaticValidator) Validate(token string) (*Claims, error) {
	for _, t := range v.tokens {
		err := bcrypt.CompareHashAndPassword([]byte(t.TokenHash), []byte(token))
		if err == nil {
			caps := make([]string, len(t.Capabilities))
			copy(caps, t.Capabilities)
			return &Claims{PrincipalID: t.PrincipalID, Capabilities: caps}, nil
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	return nil, ErrInvalidToken
}

// HashToken returns the bcrypt hash to put in configuration for a static token.
func HashToken(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing token: %w", err)
	}
	return string(hash), nil
}

// Chain tries each validator in order and returns the first success.
// When all fail the last error is returned.
type Chain []Validator

// Validate implements Validator.
func (c Chain) Validate(token string) (*Claims, error) {
	lastErr := error(ErrInvalidToken)
	for _, v := range c {
		claims, err := v.Validate(token)
		if err == nil {
			return claims, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
