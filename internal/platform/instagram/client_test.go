// ABOUTME: Tests for the Instagram Graph API client against an httptest server.
// ABOUTME: Verifies media normalization and the container publish requests.

package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/herald-gateway/internal/platform"
)

func TestClient_TimelineAndPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ig-token", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/ig-1/media":
			assert.Equal(t, mediaFields, r.URL.Query().Get("fields"))
			_, _ = w.Write([]byte(`{"data":[
				{"id":"m2","caption":"video","media_type":"VIDEO","thumbnail_url":"https://cdn/t.jpg","timestamp":"2026-05-01T08:00:00+0000","username":"acme"},
				{"id":"m1","caption":"pic","media_type":"IMAGE","media_url":"https://cdn/p.jpg","permalink":"https://instagram.com/p/1"}
			]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/ig-1/media":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "https://cdn/p.jpg", body["image_url"])
			assert.Equal(t, "hi", body["caption"])
			_, _ = w.Write([]byte(`{"id":"container-1"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/ig-1/media_publish":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "container-1", body["creation_id"])
			_, _ = w.Write([]byte(`{"id":"media-1"}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	handle, err := NewFactory(server.Client(), server.URL)("acme", Credentials{AccessToken: "ig-token", BusinessAccountID: "ig-1"})
	require.NoError(t, err)

	posts, err := handle.Timeline(context.Background(), platform.TimelineQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "VIDEO", posts[0].MediaType)
	assert.Equal(t, "https://cdn/t.jpg", posts[0].MediaURL)
	assert.Equal(t, "acme", posts[0].Author)
	assert.False(t, posts[0].CreatedAt.IsZero())
	assert.Equal(t, "https://instagram.com/p/1", posts[1].Permalink)

	creationID, err := handle.CreateImageContainer(context.Background(), "", "https://cdn/p.jpg", "hi")
	require.NoError(t, err)
	assert.Equal(t, "container-1", creationID)

	mediaID, err := handle.PublishContainer(context.Background(), "ig-1", creationID)
	require.NoError(t, err)
	assert.Equal(t, "media-1", mediaID)
}

func TestClient_PostUnsupported(t *testing.T) {
	client := NewClient(http.DefaultClient, DefaultBaseURL, "ig-1")
	_, err := client.Post(context.Background(), platform.Message{Text: "x"})
	assert.ErrorIs(t, err, platform.ErrUnsupported)
}

func TestClient_NoAccount(t *testing.T) {
	client := NewClient(http.DefaultClient, DefaultBaseURL, "")
	_, err := client.Timeline(context.Background(), platform.TimelineQuery{Limit: 1})
	assert.ErrorIs(t, err, platform.ErrNotFound)
}
