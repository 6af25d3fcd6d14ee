// ABOUTME: Tests for the Facebook tools with a fake Graph API client.
// ABOUTME: Covers unregistered tenants, posting, feed reads, media, and env-derived tenants.

package facebook

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

type fakeGraph struct {
	calls     atomic.Int64
	messages  []string
	feed      []platform.Post
	lastLimit int
	lastPage  string
	lastMedia Media
}

func (f *fakeGraph) Platform() string { return Platform }

func (f *fakeGraph) Post(_ context.Context, msg platform.Message) (*platform.PostResult, error) {
	f.calls.Add(1)
	f.messages = append(f.messages, msg.Text)
	return &platform.PostResult{Success: true, ID: "page_1"}, nil
}

func (f *fakeGraph) Timeline(_ context.Context, q platform.TimelineQuery) ([]platform.Post, error) {
	f.calls.Add(1)
	f.lastLimit = q.Limit
	return f.feed, nil
}

func (f *fakeGraph) PublishPhoto(_ context.Context, pageID string, photo Media) (*platform.PostResult, error) {
	f.calls.Add(1)
	f.lastPage = pageID
	f.lastMedia = photo
	return &platform.PostResult{Success: true, ID: "photo_1"}, nil
}

func (f *fakeGraph) PublishVideo(_ context.Context, pageID string, video Media) (*platform.PostResult, error) {
	f.calls.Add(1)
	f.lastPage = pageID
	f.lastMedia = video
	return &platform.PostResult{Success: true, ID: "video_1"}, nil
}

var testValidator = auth.ValidatorFunc(func(token string) (*auth.Claims, error) {
	switch token {
	case "P":
		return &auth.Claims{PrincipalID: "poster", Capabilities: []string{CapPost}}, nil
	case "R":
		return &auth.Claims{PrincipalID: "reader", Capabilities: []string{CapRead}}, nil
	}
	return nil, auth.ErrInvalidToken
})

func setupFacebook(t *testing.T, graph *fakeGraph, source tenants.Source[Credentials]) (*tools.Registry, *tenants.Cache[Credentials, *Handle]) {
	t.Helper()
	clients, err := NewCache(func(tenantID string, creds Credentials) (*Handle, error) {
		return &Handle{API: graph, TenantID: tenantID, PageID: creds.Page()}, nil
	}, source, slog.Default())
	require.NoError(t, err)

	registry := tools.NewRegistry(slog.Default())
	require.NoError(t, registry.RegisterPack(Pack(Deps{Validator: testValidator, Clients: clients})))
	return registry, clients
}

func TestPostMessage_UnregisteredTenant(t *testing.T) {
	graph := &fakeGraph{}
	registry, _ := setupFacebook(t, graph, nil)

	_, err := registry.Call(context.Background(), "facebook.post_message", tools.Args{
		"tenant_id": "ghost",
		"message":   "hi",
		"token":     "P",
	})
	require.ErrorIs(t, err, tenants.ErrUnregisteredTenant)
	assert.Contains(t, err.Error(), "ghost")
	assert.Equal(t, int64(0), graph.calls.Load())
}

func TestPostMessage(t *testing.T) {
	graph := &fakeGraph{}
	registry, clients := setupFacebook(t, graph, nil)
	require.NoError(t, clients.Register("acme", Credentials{AccessToken: "page-token", PageID: "123"}))

	result, err := registry.Call(context.Background(), "facebook.post_message", tools.Args{
		"tenant_id": "acme", "message": "Launch day", "token": "P",
	})
	require.NoError(t, err)
	assert.Equal(t, &platform.PostResult{Success: true, ID: "page_1"}, result)
	assert.Equal(t, []string{"Launch day"}, graph.messages)

	_, err = registry.Call(context.Background(), "facebook.post_message", tools.Args{
		"tenant_id": "acme", "message": "nope", "token": "R",
	})
	assert.ErrorIs(t, err, auth.ErrAuthorization)
	assert.Len(t, graph.messages, 1)
}

func TestGetPageFeed(t *testing.T) {
	graph := &fakeGraph{feed: []platform.Post{{ID: "1_2", Text: "first"}, {ID: "1_1", Text: "second"}}}
	registry, clients := setupFacebook(t, graph, nil)
	require.NoError(t, clients.Register("acme", Credentials{AccessToken: "page-token"}))

	result, err := registry.Call(context.Background(), "facebook.get_page_feed", tools.Args{
		"tenant_id": "acme", "token": "R",
	})
	require.NoError(t, err)
	assert.Equal(t, graph.feed, result)
	assert.Equal(t, 5, graph.lastLimit)

	_, err = registry.Call(context.Background(), "facebook.get_page_feed", tools.Args{
		"tenant_id": "acme", "token": "P",
	})
	assert.ErrorIs(t, err, auth.ErrAuthorization)
}

func TestPostImageAndVideo(t *testing.T) {
	graph := &fakeGraph{}
	registry, clients := setupFacebook(t, graph, nil)
	require.NoError(t, clients.Register("acme", Credentials{AccessToken: "page-token", PageID: "123"}))

	result, err := registry.Call(context.Background(), "facebook.post_image", tools.Args{
		"tenant_id": "acme", "image_url": "https://cdn.example.com/a.jpg", "message": "look", "token": "P",
	})
	require.NoError(t, err)
	assert.Equal(t, "photo_1", result.(*platform.PostResult).ID)
	assert.Equal(t, "123", graph.lastPage)
	assert.Equal(t, Media{URL: "https://cdn.example.com/a.jpg", Caption: "look", Published: true}, graph.lastMedia)

	result, err = registry.Call(context.Background(), "facebook.post_video", tools.Args{
		"tenant_id": "acme", "video_url": "https://cdn.example.com/a.mp4", "published": false, "token": "P",
	})
	require.NoError(t, err)
	assert.Equal(t, "video_1", result.(*platform.PostResult).ID)
	assert.False(t, graph.lastMedia.Published)

	_, err = registry.Call(context.Background(), "facebook.post_image", tools.Args{
		"tenant_id": "acme", "token": "P",
	})
	assert.ErrorIs(t, err, tools.ErrInvalidArgument)
}

func TestImplicitTenantFromEnvironment(t *testing.T) {
	graph := &fakeGraph{}
	source := EnvSource(tenants.MapLookup(map[string]string{
		"FB_ACCESS_TOKEN_ACME": "page-token",
		"FB_PAGE_ID_ACME":      "555",
		"FB_ACCESS_TOKEN_HALF": "page-token",
	}))
	registry, clients := setupFacebook(t, graph, source)

	_, err := registry.Call(context.Background(), "facebook.post_message", tools.Args{
		"tenant_id": "acme", "message": "hi", "token": "P",
	})
	require.NoError(t, err)

	handle, err := clients.Get("acme")
	require.NoError(t, err)
	assert.Equal(t, "555", handle.PageID)

	_, err = registry.Call(context.Background(), "facebook.post_message", tools.Args{
		"tenant_id": "half", "message": "hi", "token": "P",
	})
	require.ErrorIs(t, err, tenants.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "FB_PAGE_ID_HALF")

	_, err = registry.Call(context.Background(), "facebook.post_message", tools.Args{
		"tenant_id": "none", "message": "hi", "token": "P",
	})
	assert.ErrorIs(t, err, tenants.ErrUnregisteredTenant)
}

func TestCredentials(t *testing.T) {
	assert.Error(t, Credentials{}.Validate())
	assert.NoError(t, Credentials{AccessToken: "t"}.Validate())
	assert.Equal(t, "me", Credentials{AccessToken: "t"}.Page())
	assert.Equal(t, "9", Credentials{AccessToken: "t", PageID: "9"}.Page())
}
