// ABOUTME: Twitter API v2 client and the per-tenant handle built by the cache factory.
// ABOUTME: Normalizes tweets into platform.Post records.

package twitter

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
)

// DefaultBaseURL is the Twitter API v2 root.
const DefaultBaseURL = "https://api.twitter.com/2"

// Platform is the tool namespace and cache name.
const Platform = "twitter"

const tweetFields = "created_at,author_id"

// Upstream limits on max_results for the user tweets endpoint.
const (
	minUserTweets = 5
	maxUserTweets = 100
)

// User is a Twitter account.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// API is what the tools need from a Twitter client.
type API interface {
	platform.Client
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserTweets(ctx context.Context, userID string, maxResults int) ([]platform.Post, error)
	Tweet(ctx context.Context, id string) (*platform.Post, error)
}

// Handle is the cached per-tenant client.
type Handle struct {
	API
	TenantID string
	AuthMode AuthMode
}

// NewFactory returns the cache factory for production clients.
func NewFactory(base *http.Client, baseURL string) tenants.Factory[Credentials, *Handle] {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return func(tenantID string, creds Credentials) (*Handle, error) {
		return &Handle{
			API:      NewClient(authorizedClient(base, creds), baseURL),
			TenantID: tenantID,
			AuthMode: creds.Mode(),
		}, nil
	}
}

// NewCache creates the Twitter tenant cache. source may be nil.
func NewCache(factory tenants.Factory[Credentials, *Handle], source tenants.Source[Credentials], logger *slog.Logger) (*tenants.Cache[Credentials, *Handle], error) {
	return tenants.NewCache(tenants.Config[Credentials, *Handle]{
		Platform: Platform,
		Factory:  factory,
		Source:   source,
		Logger:   logger,
	})
}

func authorizedClient(base *http.Client, creds Credentials) *http.Client {
	if base == nil {
		base = platform.NewHTTPClient(0)
	}
	if !creds.HasOAuth1() {
		return platform.BearerClient(base, creds.BearerToken)
	}
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	client := config.Client(ctx, oauth1.NewToken(creds.AccessToken, creds.AccessSecret))
	client.Timeout = base.Timeout
	return client
}

// Client talks to the Twitter API v2.
type Client struct {
	api *platform.JSONClient
}

// NewClient creates a client. httpClient must already authenticate requests.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{api: &platform.JSONClient{Platform: Platform, BaseURL: baseURL, HTTP: httpClient}}
}

// Platform implements platform.Client.
func (c *Client) Platform() string {
	return Platform
}

type apiTweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	AuthorID  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

func (t apiTweet) post() platform.Post {
	p := platform.Post{ID: t.ID, Text: t.Text, AuthorID: t.AuthorID}
	if ts, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
		p.CreatedAt = ts
	}
	return p
}

// UserByUsername resolves a handle to a user.
func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	var resp struct {
		Data *User `json:"data"`
	}
	_, err := c.api.Do(ctx, platform.Request{
		Op:     "get_user",
		Method: http.MethodGet,
		Path:   "users/by/username/" + url.PathEscape(username),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.ID == "" {
		return nil, platform.NotFound("user @%s", username)
	}
	return resp.Data, nil
}

// Me returns the authenticated user. Requires user context.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		Data *User `json:"data"`
	}
	_, err := c.api.Do(ctx, platform.Request{Op: "get_me", Method: http.MethodGet, Path: "users/me"}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.ID == "" {
		return nil, platform.NotFound("authenticated user")
	}
	return resp.Data, nil
}

// UserTweets returns up to maxResults of the user's most recent tweets.
func (c *Client) UserTweets(ctx context.Context, userID string, maxResults int) ([]platform.Post, error) {
	requested := min(max(maxResults, minUserTweets), maxUserTweets)
	return c.tweets(ctx, "get_user_tweets", "users/"+url.PathEscape(userID)+"/tweets", requested, maxResults)
}

// HomeTimeline returns the reverse-chronological home timeline of the user.
func (c *Client) HomeTimeline(ctx context.Context, userID string, maxResults int) ([]platform.Post, error) {
	requested := min(max(maxResults, 1), maxUserTweets)
	return c.tweets(ctx, "get_home_timeline", "users/"+url.PathEscape(userID)+"/timelines/reverse_chronological", requested, maxResults)
}

func (c *Client) tweets(ctx context.Context, op, path string, requested, keep int) ([]platform.Post, error) {
	var resp struct {
		Data []apiTweet `json:"data"`
	}
	_, err := c.api.Do(ctx, platform.Request{
		Op:     op,
		Method: http.MethodGet,
		Path:   path,
		Query: url.Values{
			"max_results":  {strconv.Itoa(requested)},
			"tweet.fields": {tweetFields},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	posts := make([]platform.Post, 0, len(resp.Data))
	for _, t := range resp.Data {
		if len(posts) == keep {
			break
		}
		posts = append(posts, t.post())
	}
	return posts, nil
}

// Tweet fetches a single tweet.
func (c *Client) Tweet(ctx context.Context, id string) (*platform.Post, error) {
	var resp struct {
		Data *apiTweet `json:"data"`
	}
	_, err := c.api.Do(ctx, platform.Request{
		Op:     "get_tweet",
		Method: http.MethodGet,
		Path:   "tweets/" + url.PathEscape(id),
		Query:  url.Values{"tweet.fields": {tweetFields}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.ID == "" {
		return nil, platform.NotFound("tweet %s", id)
	}
	p := resp.Data.post()
	return &p, nil
}

// Post creates a tweet.
func (c *Client) Post(ctx context.Context, msg platform.Message) (*platform.PostResult, error) {
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	_, err := c.api.Do(ctx, platform.Request{
		Op:     "create_tweet",
		Method: http.MethodPost,
		Path:   "tweets",
		Body:   map[string]string{"text": msg.Text},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return platform.Published(resp.Data.ID, "tweet")
}

// Timeline returns the user's tweets when Target names a username, otherwise the
// authenticated user's home timeline.
func (c *Client) Timeline(ctx context.Context, q platform.TimelineQuery) ([]platform.Post, error) {
	if q.Target != "" {
		user, err := c.UserByUsername(ctx, q.Target)
		if err != nil {
			return nil, err
		}
		return c.UserTweets(ctx, user.ID, q.Limit)
	}

	me, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	return c.HomeTimeline(ctx, me.ID, q.Limit)
}
