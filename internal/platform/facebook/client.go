// ABOUTME: Graph API client for Facebook Pages and the per-tenant handle.
// ABOUTME: Publishes feed posts, photos, and videos and reads the page feed.

package facebook

import (
	"context"
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
const Platform = "facebook"

const feedFields = "id,message,created_time,permalink_url,from"

// graphTimeLayout is the Graph API timestamp format.
const graphTimeLayout = "2006-01-02T15:04:05-0700"

// Media is a photo or video to publish by URL.
type Media struct {
	URL       string
	Caption   string
	Published bool
}

// API is what the tools need from a Facebook client.
type API interface {
	platform.Client
	PublishPhoto(ctx context.Context, pageID string, photo Media) (*platform.PostResult, error)
	PublishVideo(ctx context.Context, pageID string, video Media) (*platform.PostResult, error)
}

// Handle is the cached per-tenant client.
type Handle struct {
	API
	TenantID string
	PageID   string
}

// NewFactory returns the cache factory for production clients.
func NewFactory(base *http.Client, baseURL string) tenants.Factory[Credentials, *Handle] {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return func(tenantID string, creds Credentials) (*Handle, error) {
		return &Handle{
			API:      NewClient(platform.BearerClient(base, creds.AccessToken), baseURL, creds.Page()),
			TenantID: tenantID,
			PageID:   creds.Page(),
		}, nil
	}
}

// NewCache creates the Facebook tenant cache. source may be nil.
func NewCache(factory tenants.Factory[Credentials, *Handle], source tenants.Source[Credentials], logger *slog.Logger) (*tenants.Cache[Credentials, *Handle], error) {
	return tenants.NewCache(tenants.Config[Credentials, *Handle]{
		Platform: Platform,
		Factory:  factory,
		Source:   source,
		Logger:   logger,
	})
}

// Client talks to the Graph API on behalf of one page.
type Client struct {
	api    *platform.JSONClient
	pageID string
}

// NewClient creates a client. httpClient must already authenticate requests.
func NewClient(httpClient *http.Client, baseURL, pageID string) *Client {
	return &Client{
		api:    &platform.JSONClient{Platform: Platform, BaseURL: baseURL, HTTP: httpClient},
		pageID: pageID,
	}
}

// Platform implements platform.Client.
func (c *Client) Platform() string {
	return Platform
}

func (c *Client) page(target string) string {
	if target != "" {
		return target
	}
	return c.pageID
}

type publishResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

// Post publishes a message to the page feed.
func (c *Client) Post(ctx context.Context, msg platform.Message) (*platform.PostResult, error) {
	var resp publishResponse
	_, err := c.api.Do(ctx, platform.Request{
		Op:     "post_message",
		Method: http.MethodPost,
		Path:   url.PathEscape(c.page(msg.Target)) + "/feed",
		Body:   map[string]string{"message": msg.Text},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return platform.Published(resp.ID, "post")
}

type feedItem struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	CreatedTime string `json:"created_time"`
	Permalink   string `json:"permalink_url"`
	From        struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"from"`
}

// Timeline returns the most recent page feed entries.
func (c *Client) Timeline(ctx context.Context, q platform.TimelineQuery) ([]platform.Post, error) {
	var resp struct {
		Data *[]feedItem `json:"data"`
	}
	_, err := c.api.Do(ctx, platform.Request{
		Op:     "get_page_feed",
		Method: http.MethodGet,
		Path:   url.PathEscape(c.page(q.Target)) + "/feed",
		Query: url.Values{
			"limit":  {strconv.Itoa(q.Limit)},
			"fields": {feedFields},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, platform.NotFound("feed data missing for page %s", c.page(q.Target))
	}

	posts := make([]platform.Post, 0, len(*resp.Data))
	for _, item := range *resp.Data {
		p := platform.Post{
			ID:        item.ID,
			Text:      item.Message,
			AuthorID:  item.From.ID,
			Author:    item.From.Name,
			Permalink: item.Permalink,
		}
		if ts, err := time.Parse(graphTimeLayout, item.CreatedTime); err == nil {
			p.CreatedAt = ts
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// PublishPhoto posts a photo by URL.
func (c *Client) PublishPhoto(ctx context.Context, pageID string, photo Media) (*platform.PostResult, error) {
	var resp publishResponse
	_, err := c.api.Do(ctx, platform.Request{
		Op:     "post_image",
		Method: http.MethodPost,
		Path:   url.PathEscape(c.page(pageID)) + "/photos",
		Body: map[string]any{
			"url":       photo.URL,
			"message":   photo.Caption,
			"published": photo.Published,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	id := resp.PostID
	if id == "" {
		id = resp.ID
	}
	return platform.Published(id, "photo")
}

// PublishVideo posts a video by URL.
func (c *Client) PublishVideo(ctx context.Context, pageID string, video Media) (*platform.PostResult, error) {
	var resp publishResponse
	_, err := c.api.Do(ctx, platform.Request{
		Op:     "post_video",
		Method: http.MethodPost,
		Path:   url.PathEscape(c.page(pageID)) + "/videos",
		Body: map[string]any{
			"file_url":    video.URL,
			"description": video.Caption,
			"published":   video.Published,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return platform.Published(resp.ID, "video")
}
