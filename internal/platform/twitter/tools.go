// ABOUTME: Twitter tool pack: timeline, single tweet, home timeline, and posting.
// ABOUTME: Each tool runs the shared token, capability, and tenant steps before calling out.

package twitter

import (
	"context"
	"strings"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

// Capabilities
const (
	CapRead  = "twitter.read"
	CapWrite = "twitter.write"
)

// MaxTweetLength is the character limit for a tweet.
const MaxTweetLength = 280

var timelineSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1, "description": "Tenant whose credentials to use"},
		"token": {"type": ["string", "null"], "description": "Capability token"},
		"username": {"type": "string", "minLength": 1, "description": "Account handle, with or without @"},
		"max_results": {"type": "integer", "minimum": 1, "description": "Number of tweets (default 5, max 100)"}
	},
	"required": ["tenant_id", "username"]
}`)

var tweetSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"tweet_id": {"type": "string", "minLength": 1}
	},
	"required": ["tenant_id", "tweet_id"]
}`)

var homeTimelineSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"count": {"type": "integer", "minimum": 1, "description": "Number of tweets (default 20, max 100)"}
	},
	"required": ["tenant_id"]
}`)

var postSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"content": {"type": "string", "minLength": 1, "maxLength": 280}
	},
	"required": ["tenant_id", "content"]
}`)

// Deps are what the Twitter tools need.
type Deps struct {
	Validator auth.Validator
	Clients   *tenants.Cache[Credentials, *Handle]
}

// Pack returns the Twitter tools.
func Pack(deps Deps) *tools.Pack {
	h := &handlers{validator: deps.Validator, clients: deps.Clients}
	lookup := platform.LookupFrom(deps.Clients)

	return &tools.Pack{
		ID: Platform,
		Tools: []*tools.Tool{
			{
				Name:               "twitter.get_timeline",
				Description:        "Fetch a user's most recent tweets",
				RequiredCapability: CapRead,
				Input:              timelineSchema,
				Handler:            h.GetTimeline,
			},
			{
				Name:               "twitter.get_tweet",
				Description:        "Fetch a single tweet by id",
				RequiredCapability: CapRead,
				Input:              tweetSchema,
				Handler:            h.GetTweet,
			},
			platform.TimelineTool(deps.Validator, lookup, platform.TimelineSpec{
				Name:         "twitter.get_home_timeline",
				Description:  "Fetch the authenticated account's home timeline",
				Capability:   CapRead,
				LimitArg:     "count",
				DefaultLimit: 20,
				MaxLimit:     maxUserTweets,
				Schema:       homeTimelineSchema,
			}),
			platform.PostTool(deps.Validator, lookup, platform.PostSpec{
				Name:        "twitter.post_tweet",
				Description: "Publish a tweet",
				Capability:  CapWrite,
				TextArg:     "content",
				MaxLength:   MaxTweetLength,
				Schema:      postSchema,
			}),
		},
	}
}

type handlers struct {
	validator auth.Validator
	clients   *tenants.Cache[Credentials, *Handle]
}

// GetTimeline resolves the username and returns that user's recent tweets.
func (h *handlers) GetTimeline(ctx context.Context, args tools.Args) (any, error) {
	_, tenantID, err := platform.Begin(h.validator, args, CapRead, timelineSchema)
	if err != nil {
		return nil, err
	}

	username, err := args.String("username")
	if err != nil {
		return nil, err
	}
	username = strings.TrimPrefix(username, "@")

	maxResults, err := platform.Limit(args, "max_results", 5, maxUserTweets)
	if err != nil {
		return nil, err
	}

	client, err := h.clients.Get(tenantID)
	if err != nil {
		return nil, err
	}

	user, err := client.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, platform.NotFound("user @%s", username)
	}

	posts, err := client.UserTweets(ctx, user.ID, maxResults)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []platform.Post{}
	}
	return posts, nil
}

// GetTweet returns one tweet.
func (h *handlers) GetTweet(ctx context.Context, args tools.Args) (any, error) {
	_, tenantID, err := platform.Begin(h.validator, args, CapRead, tweetSchema)
	if err != nil {
		return nil, err
	}

	tweetID, err := args.String("tweet_id")
	if err != nil {
		return nil, err
	}

	client, err := h.clients.Get(tenantID)
	if err != nil {
		return nil, err
	}

	tweet, err := client.Tweet(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if tweet == nil {
		return nil, platform.NotFound("tweet %s", tweetID)
	}
	return tweet, nil
}
