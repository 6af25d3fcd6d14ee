// ABOUTME: Tests for the token and capability checks shared by every operation
// ABOUTME: Covers missing tokens, validator failures, and capability errors

package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedValidator(claims *Claims, err error) Validator {
	return ValidatorFunc(func(string) (*Claims, error) {
		return claims, err
	})
}

func TestCheckToken(t *testing.T) {
	valid := &Claims{PrincipalID: "agent-1", Capabilities: []string{"twitter.read"}}

	tests := []struct {
		name      string
		validator Validator
		token     string
		wantErr   error
	}{
		{name: "empty token", validator: fixedValidator(valid, nil), token: "", wantErr: ErrMissingToken},
		{name: "nil validator", validator: nil, token: "t", wantErr: ErrAuthentication},
		{name: "validator error is wrapped", validator: fixedValidator(nil, errors.New("boom")), token: "t", wantErr: ErrAuthentication},
		{name: "validator returns nil claims", validator: fixedValidator(nil, nil), token: "t", wantErr: ErrInvalidToken},
		{name: "valid", validator: fixedValidator(valid, nil), token: "t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := CheckToken(tt.validator, tt.token)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrAuthentication)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "agent-1", claims.PrincipalID)
		})
	}
}

func TestAuthorize(t *testing.T) {
	v := fixedValidator(&Claims{PrincipalID: "agent-1", Capabilities: []string{"twitter.read"}}, nil)

	t.Run("granted", func(t *testing.T) {
		claims, err := Authorize(v, "t", "twitter.read")
		require.NoError(t, err)
		assert.Equal(t, "agent-1", claims.PrincipalID)
	})

	t.Run("missing capability", func(t *testing.T) {
		_, err := Authorize(v, "t", "facebook.post")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAuthorization)
		assert.NotErrorIs(t, err, ErrAuthentication)

		var capErr *CapabilityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, "facebook.post", capErr.Capability)
		assert.Equal(t, "missing capability facebook.post", err.Error())
	})

	t.Run("token checked before capability", func(t *testing.T) {
		_, err := Authorize(v, "", "facebook.post")
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.NotErrorIs(t, err, ErrAuthorization)
	})
}

func TestClaimsHas_Nil(t *testing.T) {
	var c *Claims
	assert.False(t, c.Has("twitter.read"))
	assert.ErrorIs(t, c.Require("twitter.read"), ErrAuthorization)
}
