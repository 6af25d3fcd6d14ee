// ABOUTME: The fixed operation protocol: token, capability, arguments, tenant, remote call.
// ABOUTME: Generic post and timeline tool builders shared by the platform packs.

package platform

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

// Begin runs the steps every operation performs before touching tenant state:
// token check, capability check, then argument validation. It returns the claims
// and the tenant id.
func Begin(v auth.Validator, args tools.Args, capability string, schema *tools.Schema) (*auth.Claims, string, error) {
	claims, err := auth.Authorize(v, args.Token(), capability)
	if err != nil {
		return nil, "", err
	}
	if err := schema.Validate(args); err != nil {
		return nil, "", err
	}
	tenantID, err := args.TenantID()
	if err != nil {
		return nil, "", err
	}
	return claims, tenantID, nil
}

// Lookup resolves a tenant to its client.
type Lookup func(tenantID string) (Client, error)

// LookupFrom adapts a tenant cache whose handles implement Client.
func LookupFrom[C tenants.Credentials, H Client](cache *tenants.Cache[C, H]) Lookup {
	return func(tenantID string) (Client, error) {
		handle, err := cache.Get(tenantID)
		if err != nil {
			return nil, err
		}
		return handle, nil
	}
}

// PostSpec describes a text publishing tool.
type PostSpec struct {
	Name        string
	Description string
	Capability  string
	TextArg     string
	TargetArg   string // optional destination override argument
	MaxLength   int    // in characters; 0 means unlimited
	Schema      *tools.Schema
}

// PostTool builds a tool that publishes text through Client.Post.
func PostTool(v auth.Validator, lookup Lookup, spec PostSpec) *tools.Tool {
	return &tools.Tool{
		Name:               spec.Name,
		Description:        spec.Description,
		RequiredCapability: spec.Capability,
		Input:              spec.Schema,
		Handler: func(ctx context.Context, args tools.Args) (any, error) {
			_, tenantID, err := Begin(v, args, spec.Capability, spec.Schema)
			if err != nil {
				return nil, err
			}

			text, err := args.String(spec.TextArg)
			if err != nil {
				return nil, err
			}
			if err := CheckText(spec.TextArg, text, spec.MaxLength); err != nil {
				return nil, err
			}

			var target string
			if spec.TargetArg != "" {
				if target, err = args.OptionalString(spec.TargetArg, ""); err != nil {
					return nil, err
				}
			}

			client, err := lookup(tenantID)
			if err != nil {
				return nil, err
			}

			result, err := client.Post(ctx, Message{Text: text, Target: target})
			if err != nil {
				return nil, err
			}
			if result == nil || result.ID == "" {
				return nil, NotFound("%s: post id missing from response", spec.Name)
			}
			return result, nil
		},
	}
}

// TimelineSpec describes a read tool returning recent items.
type TimelineSpec struct {
	Name         string
	Description  string
	Capability   string
	LimitArg     string
	DefaultLimit int
	MaxLimit     int
	TargetArg    string // optional source override argument
	Schema       *tools.Schema
}

// TimelineTool builds a tool that reads recent items through Client.Timeline.
func TimelineTool(v auth.Validator, lookup Lookup, spec TimelineSpec) *tools.Tool {
	return &tools.Tool{
		Name:               spec.Name,
		Description:        spec.Description,
		RequiredCapability: spec.Capability,
		Input:              spec.Schema,
		Handler: func(ctx context.Context, args tools.Args) (any, error) {
			_, tenantID, err := Begin(v, args, spec.Capability, spec.Schema)
			if err != nil {
				return nil, err
			}

			limit, err := Limit(args, spec.LimitArg, spec.DefaultLimit, spec.MaxLimit)
			if err != nil {
				return nil, err
			}

			var target string
			if spec.TargetArg != "" {
				if target, err = args.OptionalString(spec.TargetArg, ""); err != nil {
					return nil, err
				}
			}

			client, err := lookup(tenantID)
			if err != nil {
				return nil, err
			}

			posts, err := client.Timeline(ctx, TimelineQuery{Target: target, Limit: limit})
			if err != nil {
				return nil, err
			}
			if posts == nil {
				posts = []Post{}
			}
			return posts, nil
		},
	}
}

// CheckText rejects blank text and text longer than maxLen characters.
func CheckText(arg, text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s must not be blank", tools.ErrInvalidArgument, arg)
	}
	if maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		return fmt.Errorf("%w: %s exceeds %d characters", tools.ErrInvalidArgument, arg, maxLen)
	}
	return nil
}

// Limit reads a positive count argument, applying the default and the cap.
func Limit(args tools.Args, key string, def, maxLimit int) (int, error) {
	n, err := args.Int(key, def)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %s must be at least 1", tools.ErrInvalidArgument, key)
	}
	if maxLimit > 0 && n > maxLimit {
		n = maxLimit
	}
	return n, nil
}
