// ABOUTME: Tests for bcrypt-backed static tokens and validator chaining
// ABOUTME: Uses the minimum bcrypt cost to keep hashing fast

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func mustHash(t *testing.T, token string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestStaticValidator(t *testing.T) {
	v, err := NewStaticValidator([]StaticToken{
		{PrincipalID: "ops", TokenHash: mustHash(t, "ops-token-1234"), Capabilities: []string{"facebook.read"}},
		{PrincipalID: "bot", TokenHash: mustHash(t, "bot-token-5678"), Capabilities: []string{"twitter.read", "twitter.write"}},
	})
	require.NoError(t, err)

	claims, err := v.Validate("bot-token-5678")
	require.NoError(t, err)
	assert.Equal(t, "bot", claims.PrincipalID)
	assert.Equal(t, []string{"twitter.read", "twitter.write"}, claims.Capabilities)

	_, err = v.Validate("unknown-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStaticValidator_ReturnsCopies(t *testing.T) {
	v, err := NewStaticValidator([]StaticToken{
		{PrincipalID: "ops", TokenHash: mustHash(t, "ops-token-1234"), Capabilities: []string{"facebook.read"}},
	})
	require.NoError(t, err)

	first, err := v.Validate("ops-token-1234")
	require.NoError(t, err)
	first.Capabilities[0] = "facebook.post"

	second, err := v.Validate("ops-token-1234")
	require.NoError(t, err)
	assert.Equal(t, []string{"facebook.read"}, second.Capabilities)
}

func TestNewStaticValidator_Invalid(t *testing.T) {
	_, err := NewStaticValidator([]StaticToken{{PrincipalID: "", TokenHash: mustHash(t, "x")}})
	assert.Error(t, err)

	_, err = NewStaticValidator([]StaticToken{{PrincipalID: "ops", TokenHash: "plaintext"}})
	assert.Error(t, err)
}

func TestHashToken(t *testing.T) {
	hash, err := HashToken("secret-token")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret-token")))

	_, err = HashToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestChain(t *testing.T) {
	jwtValidator, err := NewJWTValidator(testSecret, "")
	require.NoError(t, err)
	static, err := NewStaticValidator([]StaticToken{
		{PrincipalID: "ops", TokenHash: mustHash(t, "ops-token-1234"), Capabilities: []string{"facebook.read"}},
	})
	require.NoError(t, err)

	chain := Chain{jwtValidator, static}

	jwtToken, err := jwtValidator.Issue("agent-1", []string{"twitter.read"}, time.Hour)
	require.NoError(t, err)

	claims, err := chain.Validate(jwtToken)
	require.NoError(t, err)
	assert.Equal(t, "agent-1", claims.PrincipalID)

	claims, err = chain.Validate("ops-token-1234")
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.PrincipalID)

	_, err = chain.Validate("nope")
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = Chain{}.Validate("nope")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
