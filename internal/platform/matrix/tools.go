// ABOUTME: Matrix tool pack: post a message to a room and read recent room messages.
// ABOUTME: Capabilities matrix.post and matrix.read gate the operations.

package matrix

import (
	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

// Capabilities
const (
	CapPost = "matrix.post"
	CapRead = "matrix.read"
)

var postSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"room_id": {"type": "string", "pattern": "^!", "description": "Defaults to the tenant's room"},
		"message": {"type": "string", "minLength": 1}
	},
	"required": ["tenant_id", "message"]
}`)

var messagesSchema = tools.MustCompileSchema(`{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"room_id": {"type": "string", "pattern": "^!"},
		"limit": {"type": "integer", "minimum": 1, "description": "Number of messages (default 10)"}
	},
	"required": ["tenant_id"]
}`)

// Deps are what the Matrix tools need.
type Deps struct {
	Validator auth.Validator
	Clients   *tenants.Cache[Credentials, *Handle]
}

// Pack returns the Matrix tools.
func Pack(deps Deps) *tools.Pack {
	lookup := platform.LookupFrom(deps.Clients)

	return &tools.Pack{
		ID: Platform,
		Tools: []*tools.Tool{
			platform.PostTool(deps.Validator, lookup, platform.PostSpec{
				Name:        "matrix.post_message",
				Description: "Send a text message to a Matrix room",
				Capability:  CapPost,
				TextArg:     "message",
				TargetArg:   "room_id",
				Schema:      postSchema,
			}),
			platform.TimelineTool(deps.Validator, lookup, platform.TimelineSpec{
				Name:         "matrix.get_messages",
				Description:  "Read the most recent messages of a Matrix room, newest first",
				Capability:   CapRead,
				LimitArg:     "limit",
				DefaultLimit: 10,
				MaxLimit:     100,
				TargetArg:    "room_id",
				Schema:       messagesSchema,
			}),
		},
	}
}
