// ABOUTME: Instagram tool pack: account media listing and image publishing.
// ABOUTME: Image publishing is two remote calls: create a container, then publish it.

package instagram

import (
	"context"
	"fmt"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

// Capabilities
const (
	CapRead  = "instagram.read"
	CapWrite = "instagram.write"
)

const argAccountID = "instagram_business_account_id"

var mediaSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"instagram_business_account_id": {"type": "string", "description": "Overrides the tenant's configured account"},
		"limit": {"type": "integer", "minimum": 1, "description": "Number of media items (default 5)"}
	},
	"required": ["tenant_id"]
}`)

var postImageSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"instagram_business_account_id": {"type": "string"},
		"image_url": {"type": "string", "format": "uri", "description": "Publicly reachable JPEG URL"},
		"caption": {"type": "string", "maxLength": 2200}
	},
	"required": ["tenant_id", "image_url"]
}`)

// Deps are what the Instagram tools need.
type Deps struct {
	Validator auth.Validator
	Clients   *tenants.Cache[Credentials, *Handle]
}

// Pack returns the Instagram tools.
func Pack(deps Deps) *tools.Pack {
	h := &handlers{validator: deps.Validator, clients: deps.Clients}

	return &tools.Pack{
		ID: Platform,
		Tools: []*tools.Tool{
			{
				Name:               "instagram.get_user_media",
				Description:        "List the most recent media of an Instagram business account",
				RequiredCapability: CapRead,
				Input:              mediaSchema,
				Handler:            h.GetUserMedia,
			},
			{
				Name:               "instagram.post_image",
				Description:        "Publish an image with an optional caption",
				RequiredCapability: CapWrite,
				Input:              postImageSchema,
				Handler:            h.PostImage,
			},
		},
	}
}

type handlers struct {
	validator auth.Validator
	clients   *tenants.Cache[Credentials, *Handle]
}

func accountFor(args tools.Args, handle *Handle) (string, error) {
	accountID, err := args.OptionalString(argAccountID, handle.AccountID)
	if err != nil {
		return "", err
	}
	if accountID == "" {
		return "", fmt.Errorf("%w: %s is required when the tenant has no default account", tools.ErrInvalidArgument, argAccountID)
	}
	return accountID, nil
}

// GetUserMedia lists recent media.
func (h *handlers) GetUserMedia(ctx context.Context, args tools.Args) (any, error) {
	_, tenantID, err := platform.Begin(h.validator, args, CapRead, mediaSchema)
	if err != nil {
		return nil, err
	}
	limit, err := platform.Limit(args, "limit", 5, 100)
	if err != nil {
		return nil, err
	}

	handle, err := h.clients.Get(tenantID)
	if err != nil {
		return nil, err
	}
	accountID, err := accountFor(args, handle)
	if err != nil {
		return nil, err
	}

	posts, err := handle.Timeline(ctx, platform.TimelineQuery{Target: accountID, Limit: limit})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []platform.Post{}
	}
	return posts, nil
}

// PostImage stages and publishes an image.
func (h *handlers) PostImage(ctx context.Context, args tools.Args) (any, error) {
	_, tenantID, err := platform.Begin(h.validator, args, CapWrite, postImageSchema)
	if err != nil {
		return nil, err
	}
	imageURL, err := args.String("image_url")
	if err != nil {
		return nil, err
	}
	caption, err := args.OptionalString("caption", "")
	if err != nil {
		return nil, err
	}

	handle, err := h.clients.Get(tenantID)
	if err != nil {
		return nil, err
	}
	accountID, err := accountFor(args, handle)
	if err != nil {
		return nil, err
	}

	creationID, err := handle.CreateImageContainer(ctx, accountID, imageURL, caption)
	if err != nil {
		return nil, err
	}
	if creationID == "" {
		return nil, platform.NotFound("media container id missing from response")
	}

	mediaID, err := handle.PublishContainer(ctx, accountID, creationID)
	if err != nil {
		return nil, err
	}
	result, err := platform.Published(mediaID, "media")
	if err != nil {
		return nil, err
	}
	return result, nil
}
