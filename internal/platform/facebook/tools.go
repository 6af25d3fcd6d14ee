// ABOUTME: Facebook tool pack: page posts, feed reads, and photo and video publishing.
// ABOUTME: Capabilities facebook.post and facebook.read gate the operations.

package facebook

import (
	"context"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

// Capabilities
const (
	CapPost = "facebook.post"
	CapRead = "facebook.read"
)

// maxMessageLength is the Graph API limit for a page post.
const maxMessageLength = 63206

var postMessageSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"message": {"type": "string", "minLength": 1, "description": "Text to publish on the page"}
	},
	"required": ["tenant_id", "message"]
}`)

var feedSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"limit": {"type": "integer", "minimum": 1, "description": "Number of entries (default 5)"}
	},
	"required": ["tenant_id"]
}`)

var imageSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"image_url": {"type": "string", "format": "uri"},
		"message": {"type": "string"},
		"published": {"type": "boolean"}
	},
	"required": ["tenant_id", "image_url"]
}`)

var videoSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"video_url": {"type": "string", "format": "uri"},
		"message": {"type": "string"},
		"published": {"type": "boolean"}
	},
	"required": ["tenant_id", "video_url"]
}`)

// Deps are what the Facebook tools need.
type Deps struct {
	Validator auth.Validator
	Clients   *tenants.Cache[Credentials, *Handle]
}

// Pack returns the Facebook tools.
func Pack(deps Deps) *tools.Pack {
	lookup := platform.LookupFrom(deps.Clients)

	return &tools.Pack{
		ID: Platform,
		Tools: []*tools.Tool{
			platform.PostTool(deps.Validator, lookup, platform.PostSpec{
				Name:        "facebook.post_message",
				Description: "Publish a text post on the tenant's page",
				Capability:  CapPost,
				TextArg:     "message",
				MaxLength:   maxMessageLength,
				Schema:      postMessageSchema,
			}),
			platform.TimelineTool(deps.Validator, lookup, platform.TimelineSpec{
				Name:         "facebook.get_page_feed",
				Description:  "Read the most recent entries of the tenant's page feed",
				Capability:   CapRead,
				LimitArg:     "limit",
				DefaultLimit: 5,
				MaxLimit:     100,
				Schema:       feedSchema,
			}),
			{
				Name:               "facebook.post_image",
				Description:        "Publish a photo on the tenant's page from a public URL",
				RequiredCapability: CapPost,
				Input:              imageSchema,
				Handler:            mediaHandler(deps, imageSchema, "image_url", API.PublishPhoto),
			},
			{
				Name:               "facebook.post_video",
				Description:        "Publish a video on the tenant's page from a public URL",
				RequiredCapability: CapPost,
				Input:              videoSchema,
				Handler:            mediaHandler(deps, videoSchema, "video_url", API.PublishVideo),
			},
		},
	}
}

type publishFunc func(api API, ctx context.Context, pageID string, media Media) (*platform.PostResult, error)

func mediaHandler(deps Deps, schema *tools.Schema, urlArg string, publish publishFunc) tools.Handler {
	return func(ctx context.Context, args tools.Args) (any, error) {
		_, tenantID, err := platform.Begin(deps.Validator, args, CapPost, schema)
		if err != nil {
			return nil, err
		}

		mediaURL, err := args.String(urlArg)
		if err != nil {
			return nil, err
		}
		caption, err := args.OptionalString("message", "")
		if err != nil {
			return nil, err
		}
		published, err := args.Bool("published", true)
		if err != nil {
			return nil, err
		}

		handle, err := deps.Clients.Get(tenantID)
		if err != nil {
			return nil, err
		}

		result, err := publish(handle.API, ctx, handle.PageID, Media{URL: mediaURL, Caption: caption, Published: published})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}
