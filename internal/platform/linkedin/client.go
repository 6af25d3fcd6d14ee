// ABOUTME: LinkedIn v2 REST client (profiles and UGC shares) and the per-tenant handle.
// ABOUTME: Requests carry the Rest.li 2.0 protocol header.

package linkedin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
)

// DefaultBaseURL is the LinkedIn v2 API root.
const DefaultBaseURL = "https://api.linkedin.com/v2"

// Platform is the tool namespace and cache name.
const Platform = "linkedin"

const personURNPrefix = "urn:li:person:"

// Profile is a normalized LinkedIn member profile.
type Profile struct {
	ID        string `json:"id"`
	URN       string `json:"urn"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Headline  string `json:"headline,omitempty"`
}

// API is what the tools need from a LinkedIn client.
type API interface {
	platform.Client
	// Profile fetches a member profile; an empty URN means the token owner.
	Profile(ctx context.Context, memberURN string) (*Profile, error)
}

// Handle is the cached per-tenant client.
type Handle struct {
	API
	TenantID string
}

// NewFactory returns the cache factory for production clients.
func NewFactory(base *http.Client, baseURL string) tenants.Factory[Credentials, *Handle] {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return func(tenantID string, creds Credentials) (*Handle, error) {
		return &Handle{
			API:      NewClient(platform.BearerClient(base, creds.AccessToken), baseURL, creds.AuthorURN),
			TenantID: tenantID,
		}, nil
	}
}

// NewCache creates the LinkedIn tenant cache. source may be nil.
func NewCache(factory tenants.Factory[Credentials, *Handle], source tenants.Source[Credentials], logger *slog.Logger) (*tenants.Cache[Credentials, *Handle], error) {
	return tenants.NewCache(tenants.Config[Credentials, *Handle]{
		Platform: Platform,
		Factory:  factory,
		Source:   source,
		Logger:   logger,
	})
}

// Client talks to the LinkedIn v2 API.
type Client struct {
	api       *platform.JSONClient
	authorURN string
}

// NewClient creates a client. httpClient must already authenticate requests.
func NewClient(httpClient *http.Client, baseURL, authorURN string) *Client {
	return &Client{
		api: &platform.JSONClient{
			Platform: Platform,
			BaseURL:  baseURL,
			HTTP:     httpClient,
			Header:   http.Header{"X-Restli-Protocol-Version": {"2.0.0"}},
		},
		authorURN: authorURN,
	}
}

// Platform implements platform.Client.
func (c *Client) Platform() string {
	return Platform
}

type profileResponse struct {
	ID                string `json:"id"`
	LocalizedFirst    string `json:"localizedFirstName"`
	LocalizedLast     string `json:"localizedLastName"`
	LocalizedHeadline string `json:"localizedHeadline"`
}

// Profile implements API.
func (c *Client) Profile(ctx context.Context, memberURN string) (*Profile, error) {
	path := "me"
	if memberURN != "" {
		id, ok := strings.CutPrefix(memberURN, personURNPrefix)
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: member URN %q is not a person URN", platform.ErrNotFound, memberURN)
		}
		path = "people/(id:" + url.PathEscape(id) + ")"
	}

	var resp profileResponse
	if _, err := c.api.Do(ctx, platform.Request{Op: "get_profile", Method: http.MethodGet, Path: path}, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, platform.NotFound("profile id missing from response")
	}
	return &Profile{
		ID:        resp.ID,
		URN:       personURNPrefix + resp.ID,
		FirstName: resp.LocalizedFirst,
		LastName:  resp.LocalizedLast,
		Headline:  resp.LocalizedHeadline,
	}, nil
}

// author picks the share author: explicit target, configured URN, then the token owner.
func (c *Client) author(ctx context.Context, target string) (string, error) {
	if target != "" {
		return target, nil
	}
	if c.authorURN != "" {
		return c.authorURN, nil
	}
	me, err := c.Profile(ctx, "")
	if err != nil {
		return "", err
	}
	return me.URN, nil
}

type shareCommentary struct {
	Text string `json:"text"`
}

type shareContent struct {
	ShareCommentary    shareCommentary `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
}

type ugcPost struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

// Post publishes a public text share.
func (c *Client) Post(ctx context.Context, msg platform.Message) (*platform.PostResult, error) {
	author, err := c.author(ctx, msg.Target)
	if err != nil {
		return nil, err
	}

	body := ugcPost{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]shareContent{
			"com.linkedin.ugc.ShareContent": {
				ShareCommentary:    shareCommentary{Text: msg.Text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}

	var resp struct {
		ID string `json:"id"`
	}
	header, err := c.api.Do(ctx, platform.Request{Op: "share_post", Method: http.MethodPost, Path: "ugcPosts", Body: body}, &resp)
	if err != nil {
		return nil, err
	}
	id := header.Get("X-RestLi-Id")
	if id == "" {
		id = resp.ID
	}
	result, err := platform.Published(id, "share")
	if err != nil {
		return nil, err
	}
	result.Permalink = "https://www.linkedin.com/feed/update/" + id
	return result, nil
}

// Timeline is not offered for LinkedIn members.
func (c *Client) Timeline(context.Context, platform.TimelineQuery) ([]platform.Post, error) {
	return nil, fmt.Errorf("%w: linkedin member feeds are not readable", platform.ErrUnsupported)
}
