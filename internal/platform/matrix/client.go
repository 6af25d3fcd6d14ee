// ABOUTME: mautrix-backed Matrix client and the per-tenant handle.
// ABOUTME: Sends text to rooms and reads recent room messages newest first.

package matrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

// Platform is the tool namespace and cache name.
const Platform = "matrix"

// Handle is the cached per-tenant client.
type Handle struct {
	platform.Client
	TenantID string
	UserID   string
}

// NewFactory returns the cache factory for production clients. base may be nil.
func NewFactory(base *http.Client) tenants.Factory[Credentials, *Handle] {
	return func(tenantID string, creds Credentials) (*Handle, error) {
		client, err := NewClient(base, creds)
		if err != nil {
			return nil, err
		}
		return &Handle{Client: client, TenantID: tenantID, UserID: creds.UserID}, nil
	}
}

// NewCache creates the Matrix tenant cache. source may be nil.
func NewCache(factory tenants.Factory[Credentials, *Handle], source tenants.Source[Credentials], logger *slog.Logger) (*tenants.Cache[Credentials, *Handle], error) {
	return tenants.NewCache(tenants.Config[Credentials, *Handle]{
		Platform: Platform,
		Factory:  factory,
		Source:   source,
		Logger:   logger,
	})
}

// Client sends and reads room messages for one account.
type Client struct {
	matrix      *mautrix.Client
	defaultRoom id.RoomID
}

// NewClient creates a client for the account in creds.
func NewClient(base *http.Client, creds Credentials) (*Client, error) {
	mc, err := mautrix.NewClient(creds.Homeserver, id.UserID(creds.UserID), creds.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}
	if base != nil {
		mc.Client = base
	}
	return &Client{matrix: mc, defaultRoom: id.RoomID(creds.DefaultRoom)}, nil
}

// Platform implements platform.Client.
func (c *Client) Platform() string {
	return Platform
}

func (c *Client) room(target string) (id.RoomID, error) {
	if target != "" {
		return id.RoomID(target), nil
	}
	if c.defaultRoom == "" {
		return "", fmt.Errorf("%w: room_id is required when the tenant has no default room", tools.ErrInvalidArgument)
	}
	return c.defaultRoom, nil
}

// Post sends a plain text message.
func (c *Client) Post(ctx context.Context, msg platform.Message) (*platform.PostResult, error) {
	roomID, err := c.room(msg.Target)
	if err != nil {
		return nil, err
	}
	resp, err := c.matrix.SendText(ctx, roomID, msg.Text)
	if err != nil {
		return nil, remoteError(ctx, "post_message", err)
	}
	result, err := platform.Published(resp.EventID.String(), "event")
	if err != nil {
		return nil, err
	}
	result.Permalink = "https://matrix.to/#/" + roomID.String() + "/" + resp.EventID.String()
	return result, nil
}

// Timeline returns the latest room messages, newest first.
func (c *Client) Timeline(ctx context.Context, q platform.TimelineQuery) ([]platform.Post, error) {
	roomID, err := c.room(q.Target)
	if err != nil {
		return nil, err
	}
	resp, err := c.matrix.Messages(ctx, roomID, "", "", mautrix.DirectionBackward, nil, q.Limit)
	if err != nil {
		return nil, remoteError(ctx, "get_messages", err)
	}
	if resp == nil {
		return nil, platform.NotFound("messages missing for room %s", roomID)
	}

	posts := make([]platform.Post, 0, len(resp.Chunk))
	for _, evt := range resp.Chunk {
		if evt == nil || evt.Type.Type != event.EventMessage.Type {
			continue
		}
		body, _ := evt.Content.Raw["body"].(string)
		msgType, _ := evt.Content.Raw["msgtype"].(string)
		posts = append(posts, platform.Post{
			ID:        evt.ID.String(),
			Text:      body,
			AuthorID:  evt.Sender.String(),
			CreatedAt: time.UnixMilli(evt.Timestamp),
			MediaType: msgType,
		})
	}
	return posts, nil
}

// remoteError converts a mautrix failure into a RemoteError carrying the
// homeserver's status and message.
func remoteError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	remote := &platform.RemoteError{Platform: Platform, Op: op, Err: err}
	var httpErr mautrix.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Response != nil {
			remote.StatusCode = httpErr.Response.StatusCode
		}
		if httpErr.RespError != nil {
			remote.Message = httpErr.RespError.Err
		}
	}
	return remote
}
