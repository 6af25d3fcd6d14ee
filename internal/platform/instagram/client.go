// ABOUTME: Graph API client for Instagram Business accounts and the per-tenant handle.
// ABOUTME: Reads account media and publishes images through a media container.

package instagram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
)

// DefaultBaseURL is the Graph API root.
const DefaultBaseURL = "https://graph.facebook.com/v22.0"

// Platform is the tool namespace and cache name.
const Platform = "instagram"

const mediaFields = "id,caption,media_type,media_url,permalink,thumbnail_url,timestamp,username"

const graphTimeLayout = "2006-01-02T15:04:05-0700"

// API is what the tools need from an Instagram client.
type API interface {
	platform.Client
	// CreateImageContainer stages an image and returns the container id.
	CreateImageContainer(ctx context.Context, accountID, imageURL, caption string) (string, error)
	// PublishContainer publishes a staged container and returns the media id.
	PublishContainer(ctx context.Context, accountID, creationID string) (string, error)
}

// Handle is the cached per-tenant client.
type Handle struct {
	API
	TenantID  string
	AccountID string
}

// NewFactory returns the cache factory for production clients.
func NewFactory(base *http.Client, baseURL string) tenants.Factory[Credentials, *Handle] {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return func(tenantID string, creds Credentials) (*Handle, error) {
		return &Handle{
			API:       NewClient(platform.BearerClient(base, creds.AccessToken), baseURL, creds.BusinessAccountID),
			TenantID:  tenantID,
			AccountID: creds.BusinessAccountID,
		}, nil
	}
}

// NewCache creates the Instagram tenant cache. source may be nil.
func NewCache(factory tenants.Factory[Credentials, *Handle], source tenants.Source[Credentials], logger *slog.Logger) (*tenants.Cache[Credentials, *Handle], error) {
	return tenants.NewCache(tenants.Config[Credentials, *Handle]{
		Platform: Platform,
		Factory:  factory,
		Source:   source,
		Logger:   logger,
	})
}

// Client talks to the Instagram Graph API.
type Client struct {
	api       *platform.JSONClient
	accountID string
}

// NewClient creates a client. httpClient must already authenticate requests.
func NewClient(httpClient *http.Client, baseURL, accountID string) *Client {
	return &Client{
		api:       &platform.JSONClient{Platform: Platform, BaseURL: baseURL, HTTP: httpClient},
		accountID: accountID,
	}
}

// Platform implements platform.Client.
func (c *Client) Platform() string {
	return Platform
}

func (c *Client) account(target string) (string, error) {
	if target != "" {
		return target, nil
	}
	if c.accountID == "" {
		return "", platform.NotFound("no instagram business account configured")
	}
	return c.accountID, nil
}

// Post is not available: Instagram has no text-only publications.
func (c *Client) Post(context.Context, platform.Message) (*platform.PostResult, error) {
	return nil, fmt.Errorf("%w: instagram requires media", platform.ErrUnsupported)
}

type mediaItem struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	Permalink    string `json:"permalink"`
	ThumbnailURL string `json:"thumbnail_url"`
	Timestamp    string `json:"timestamp"`
	Username     string `json:"username"`
}

// Timeline returns the account's most recent media.
func (c *Client) Timeline(ctx context.Context, q platform.TimelineQuery) ([]platform.Post, error) {
	accountID, err := c.account(q.Target)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data *[]mediaItem `json:"data"`
	}
	_, err = c.api.Do(ctx, platform.Request{
		Op:     "get_user_media",
		Method: http.MethodGet,
		Path:   url.PathEscape(accountID) + "/media",
		Query: url.Values{
			"fields": {mediaFields},
			"limit":  {strconv.Itoa(q.Limit)},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, platform.NotFound("media data missing for account %s", accountID)
	}

	posts := make([]platform.Post, 0, len(*resp.Data))
	for _, m := range *resp.Data {
		p := platform.Post{
			ID:        m.ID,
			Text:      m.Caption,
			Author:    m.Username,
			Permalink: m.Permalink,
			MediaType: m.MediaType,
			MediaURL:  m.MediaURL,
		}
		if p.MediaURL == "" {
			p.MediaURL = m.ThumbnailURL
		}
		if ts, err := time.Parse(graphTimeLayout, m.Timestamp); err == nil {
			p.CreatedAt = ts
		}
		posts = append(posts, p)
	}
	return posts, nil
}

type idResponse struct {
	ID string `json:"id"`
}

// CreateImageContainer implements API.
func (c *Client) CreateImageContainer(ctx context.Context, accountID, imageURL, caption string) (string, error) {
	accountID, err := c.account(accountID)
	if err != nil {
		return "", err
	}
	var resp idResponse
	_, err = c.api.Do(ctx, platform.Request{
		Op:     "create_media_container",
		Method: http.MethodPost,
		Path:   url.PathEscape(accountID) + "/media",
		Body:   map[string]string{"image_url": imageURL, "caption": caption},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// PublishContainer implements API.
func (c *Client) PublishContainer(ctx context.Context, accountID, creationID string) (string, error) {
	accountID, err := c.account(accountID)
	if err != nil {
		return "", err
	}
	var resp idResponse
	_, err = c.api.Do(ctx, platform.Request{
		Op:     "publish_media",
		Method: http.MethodPost,
		Path:   url.PathEscape(accountID) + "/media_publish",
		Body:   map[string]string{"creation_id": creationID},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}
