// ABOUTME: Tests for the Matrix tools with a fake client.
// ABOUTME: Covers room overrides, limits, env-derived tenants, and auth ordering.

package matrix

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

type fakeRoom struct {
	calls     int
	lastPost  platform.Message
	lastQuery platform.TimelineQuery
}

func (f *fakeRoom) Platform() string { return Platform }

func (f *fakeRoom) Post(_ context.Context, msg platform.Message) (*platform.PostResult, error) {
	f.calls++
	f.lastPost = msg
	return &platform.PostResult{Success: true, ID: "$evt"}, nil
}

func (f *fakeRoom) Timeline(_ context.Context, q platform.TimelineQuery) ([]platform.Post, error) {
	f.calls++
	f.lastQuery = q
	return nil, nil
}

var testValidator = auth.ValidatorFunc(func(token string) (*auth.Claims, error) {
	if token == "M" {
		return &auth.Claims{PrincipalID: "bot", Capabilities: []string{CapPost, CapRead}}, nil
	}
	return nil, auth.ErrInvalidToken
})

func setupMatrix(t *testing.T, source tenants.Source[Credentials]) (*tools.Registry, *fakeRoom, *tenants.Cache[Credentials, *Handle]) {
	t.Helper()
	fake := &fakeRoom{}
	clients, err := NewCache(func(tenantID string, creds Credentials) (*Handle, error) {
		return &Handle{Client: fake, TenantID: tenantID, UserID: creds.UserID}, nil
	}, source, slog.Default())
	require.NoError(t, err)

	registry := tools.NewRegistry(slog.Default())
	require.NoError(t, registry.RegisterPack(Pack(Deps{Validator: testValidator, Clients: clients})))
	return registry, fake, clients
}

var testCreds = Credentials{Homeserver: "https://matrix.org", UserID: "@bot:matrix.org", AccessToken: "t"}

func TestPostMessage(t *testing.T) {
	registry, fake, clients := setupMatrix(t, nil)
	require.NoError(t, clients.Register("acme", testCreds))

	result, err := registry.Call(context.Background(), "matrix.post_message", tools.Args{
		"tenant_id": "acme", "token": "M", "message": "hello", "room_id": "!ops:matrix.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "$evt", result.(*platform.PostResult).ID)
	assert.Equal(t, platform.Message{Text: "hello", Target: "!ops:matrix.org"}, fake.lastPost)
}

func TestGetMessages_Defaults(t *testing.T) {
	registry, fake, clients := setupMatrix(t, nil)
	require.NoError(t, clients.Register("acme", testCreds))

	result, err := registry.Call(context.Background(), "matrix.get_messages", tools.Args{
		"tenant_id": "acme", "token": "M",
	})
	require.NoError(t, err)
	assert.Equal(t, []platform.Post{}, result)
	assert.Equal(t, platform.TimelineQuery{Limit: 10}, fake.lastQuery)
}

func TestPostMessage_MissingToken(t *testing.T) {
	registry, fake, _ := setupMatrix(t, nil)

	// Missing token is reported before the unregistered tenant.
	_, err := registry.Call(context.Background(), "matrix.post_message", tools.Args{
		"tenant_id": "nobody", "message": "hi",
	})
	require.ErrorIs(t, err, auth.ErrAuthentication)
	assert.Zero(t, fake.calls)
}

func TestEnvSource_Implicit(t *testing.T) {
	source := EnvSource(tenants.MapLookup(map[string]string{
		"MATRIX_HOMESERVER_ACME":   "https://matrix.org",
		"MATRIX_USER_ID_ACME":      "@bot:matrix.org",
		"MATRIX_ACCESS_TOKEN_ACME": "t",
	}))
	registry, fake, clients := setupMatrix(t, source)

	_, err := registry.Call(context.Background(), "matrix.get_messages", tools.Args{
		"tenant_id": "acme", "token": "M", "room_id": "!x:matrix.org", "limit": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, []string{"acme"}, clients.Tenants())

	_, err = registry.Call(context.Background(), "matrix.get_messages", tools.Args{
		"tenant_id": "other", "token": "M",
	})
	require.ErrorIs(t, err, tenants.ErrUnregisteredTenant)
}
