// ABOUTME: Capability claims and the pluggable token validator contract
// ABOUTME: CheckToken and Authorize run the token and capability steps for every operation

package auth

import (
	"errors"
	"fmt"
	"slices"
)

// Authentication and authorization errors
var (
	ErrAuthentication = errors.New("missing or invalid token")
	ErrAuthorization  = errors.New("insufficient capability")
)

// Token errors. Each one matches ErrAuthentication.
var (
	ErrMissingToken = fmt.Errorf("%w: token is required", ErrAuthentication)
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrAuthentication)
	ErrExpiredToken = fmt.Errorf("%w: token expired", ErrAuthentication)
	ErrMissingClaim = fmt.Errorf("%w: missing required claim", ErrAuthentication)
)

// Claims is the identity and capability set carried by a validated token.
// A Claims value is derived from the token on every call and is never cached.
type Claims struct {
	PrincipalID  string
	Capabilities []string
}

// Has reports whether the claims grant the capability.
func (c *Claims) Has(capability string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Capabilities, capability)
}

// Require returns a *CapabilityError if the capability is not granted.
func (c *Claims) Require(capability string) error {
	if !c.Has(capability) {
		return &CapabilityError{Capability: capability}
	}
	return nil
}

// CapabilityError reports the capability a caller was missing.
type CapabilityError struct {
	Capability string
}

func (e *CapabilityError) Error() string {
	return "missing capability " + e.Capability
}

// Is makes CapabilityError match ErrAuthorization.
func (e *CapabilityError) Is(target error) bool {
	return target == ErrAuthorization
}

// Validator turns a bearer token into claims.
type Validator interface {
	Validate(token string) (*Claims, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(token string) (*Claims, error)

// Validate calls f(token).
func (f ValidatorFunc) Validate(token string) (*Claims, error) {
	return f(token)
}

// CheckToken validates a token. Every failure, including an empty token or a nil
// validator, is reported as an error matching ErrAuthentication.
func CheckToken(v Validator, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if v == nil {
		return nil, fmt.Errorf("%w: no validator configured", ErrAuthentication)
	}

	claims, err := v.Validate(token)
	if err != nil {
		if errors.Is(err, ErrAuthentication) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if claims == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize validates the token and then checks the capability.
func Authorize(v Validator, token, capability string) (*Claims, error) {
	claims, err := CheckToken(v, token)
	if err != nil {
		return nil, err
	}
	if err := claims.Require(capability); err != nil {
		return nil, err
	}
	return claims, nil
}
