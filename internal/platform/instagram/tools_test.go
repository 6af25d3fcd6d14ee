// ABOUTME: Tests for the Instagram tools with a fake Graph API client.
// ABOUTME: Covers media listing, the two-step publish, and missing container ids.

package instagram

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

type fakeInstagram struct {
	calls       []string
	media       []platform.Post
	containerID string
	lastQuery   platform.TimelineQuery
}

func (f *fakeInstagram) Platform() string { return Platform }

func (f *fakeInstagram) Post(context.Context, platform.Message) (*platform.PostResult, error) {
	return nil, platform.ErrUnsupported
}

func (f *fakeInstagram) Timeline(_ context.Context, q platform.TimelineQuery) ([]platform.Post, error) {
	f.calls = append(f.calls, "timeline:"+q.Target)
	f.lastQuery = q
	return f.media, nil
}

func (f *fakeInstagram) CreateImageContainer(_ context.Context, accountID, imageURL, caption string) (string, error) {
	f.calls = append(f.calls, "container:"+accountID)
	return f.containerID, nil
}

func (f *fakeInstagram) PublishContainer(_ context.Context, accountID, creationID string) (string, error) {
	f.calls = append(f.calls, "publish:"+creationID)
	return "media-77", nil
}

var testValidator = auth.ValidatorFunc(func(token string) (*auth.Claims, error) {
	if token == "IG" {
		return &auth.Claims{PrincipalID: "agent-1", Capabilities: []string{CapRead, CapWrite}}, nil
	}
	if token == "RO" {
		return &auth.Claims{PrincipalID: "agent-1", Capabilities: []string{CapRead}}, nil
	}
	return nil, auth.ErrInvalidToken
})

func setupInstagram(t *testing.T, fake *fakeInstagram, creds Credentials) *tools.Registry {
	t.Helper()
	clients, err := NewCache(func(tenantID string, c Credentials) (*Handle, error) {
		return &Handle{API: fake, TenantID: tenantID, AccountID: c.BusinessAccountID}, nil
	}, nil, slog.Default())
	require.NoError(t, err)
	require.NoError(t, clients.Register("acme", creds))

	registry := tools.NewRegistry(slog.Default())
	require.NoError(t, registry.RegisterPack(Pack(Deps{Validator: testValidator, Clients: clients})))
	return registry
}

func TestGetUserMedia(t *testing.T) {
	fake := &fakeInstagram{media: []platform.Post{{ID: "m1", MediaType: "IMAGE"}}}
	registry := setupInstagram(t, fake, Credentials{AccessToken: "t", BusinessAccountID: "ig-1"})

	result, err := registry.Call(context.Background(), "instagram.get_user_media", tools.Args{
		"tenant_id": "acme", "token": "RO",
	})
	require.NoError(t, err)
	assert.Equal(t, fake.media, result)
	assert.Equal(t, platform.TimelineQuery{Target: "ig-1", Limit: 5}, fake.lastQuery)

	_, err = registry.Call(context.Background(), "instagram.get_user_media", tools.Args{
		"tenant_id": "acme", "token": "RO", "instagram_business_account_id": "ig-2", "limit": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, platform.TimelineQuery{Target: "ig-2", Limit: 3}, fake.lastQuery)
}

func TestGetUserMedia_NoAccount(t *testing.T) {
	fake := &fakeInstagram{}
	registry := setupInstagram(t, fake, Credentials{AccessToken: "t"})

	_, err := registry.Call(context.Background(), "instagram.get_user_media", tools.Args{
		"tenant_id": "acme", "token": "RO",
	})
	require.ErrorIs(t, err, tools.ErrInvalidArgument)
	assert.Empty(t, fake.calls)
}

func TestPostImage(t *testing.T) {
	fake := &fakeInstagram{containerID: "c-9"}
	registry := setupInstagram(t, fake, Credentials{AccessToken: "t", BusinessAccountID: "ig-1"})

	result, err := registry.Call(context.Background(), "instagram.post_image", tools.Args{
		"tenant_id": "acme", "token": "IG", "image_url": "https://cdn.example.com/p.jpg", "caption": "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, &platform.PostResult{Success: true, ID: "media-77"}, result)
	assert.Equal(t, []string{"container:ig-1", "publish:c-9"}, fake.calls)
}

func TestPostImage_MissingContainerID(t *testing.T) {
	fake := &fakeInstagram{containerID: ""}
	registry := setupInstagram(t, fake, Credentials{AccessToken: "t", BusinessAccountID: "ig-1"})

	_, err := registry.Call(context.Background(), "instagram.post_image", tools.Args{
		"tenant_id": "acme", "token": "IG", "image_url": "https://cdn.example.com/p.jpg",
	})
	require.ErrorIs(t, err, platform.ErrNotFound)
	assert.Equal(t, []string{"container:ig-1"}, fake.calls, "publish is never attempted")
}

func TestPostImage_RequiresWrite(t *testing.T) {
	fake := &fakeInstagram{containerID: "c-9"}
	registry := setupInstagram(t, fake, Credentials{AccessToken: "t", BusinessAccountID: "ig-1"})

	_, err := registry.Call(context.Background(), "instagram.post_image", tools.Args{
		"tenant_id": "acme", "token": "RO", "image_url": "https://cdn.example.com/p.jpg",
	})
	require.ErrorIs(t, err, auth.ErrAuthorization)
	assert.Empty(t, fake.calls)
}

func TestEnvSource(t *testing.T) {
	source := EnvSource(tenants.MapLookup(map[string]string{
		"IG_ACCESS_TOKEN_ACME":        "tok",
		"IG_BUSINESS_ACCOUNT_ID_ACME": "ig-5",
	}))
	creds, ok, err := source.Lookup("acme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Credentials{AccessToken: "tok", BusinessAccountID: "ig-5"}, creds)

	_, ok, _ = source.Lookup("other")
	assert.False(t, ok)
}
