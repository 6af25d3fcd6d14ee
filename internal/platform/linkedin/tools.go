// ABOUTME: LinkedIn tool pack: profile lookup and text shares.
// ABOUTME: Capabilities linkedin.read and linkedin.write gate the operations.

package linkedin

import (
	"context"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

// Capabilities
const (
	CapRead  = "linkedin.read"
	CapWrite = "linkedin.write"
)

// MaxShareLength is the commentary limit of a share.
const MaxShareLength = 3000

var profileSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"member_urn": {"type": "string", "pattern": "^urn:li:person:", "description": "Defaults to the token owner"}
	},
	"required": ["tenant_id"]
}`)

var shareSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"author_urn": {"type": "string", "pattern": "^urn:li:"},
		"text": {"type": "string", "minLength": 1}
	},
	"required": ["tenant_id", "text"]
}`)

// Deps are what the LinkedIn tools need.
type Deps struct {
	Validator auth.Validator
	Clients   *tenants.Cache[Credentials, *Handle]
}

// Pack returns the LinkedIn tools.
func Pack(deps Deps) *tools.Pack {
	return &tools.Pack{
		ID: Platform,
		Tools: []*tools.Tool{
			{
				Name:               "linkedin.get_profile",
				Description:        "Fetch a LinkedIn member profile",
				RequiredCapability: CapRead,
				Input:              profileSchema,
				Handler:            getProfile(deps),
			},
			platform.PostTool(deps.Validator, platform.LookupFrom(deps.Clients), platform.PostSpec{
				Name:        "linkedin.share_post",
				Description: "Share a public text post as the tenant's member or organization",
				Capability:  CapWrite,
				TextArg:     "text",
				TargetArg:   "author_urn",
				MaxLength:   MaxShareLength,
				Schema:      shareSchema,
			}),
		},
	}
}

func getProfile(deps Deps) tools.Handler {
	return func(ctx context.Context, args tools.Args) (any, error) {
		_, tenantID, err := platform.Begin(deps.Validator, args, CapRead, profileSchema)
		if err != nil {
			return nil, err
		}
		memberURN, err := args.OptionalString("member_urn", "")
		if err != nil {
			return nil, err
		}

		handle, err := deps.Clients.Get(tenantID)
		if err != nil {
			return nil, err
		}
		profile, err := handle.Profile(ctx, memberURN)
		if err != nil {
			return nil, err
		}
		return profile, nil
	}
}
