// ABOUTME: Common client abstraction implemented by every platform and by test fakes.
// ABOUTME: Normalized Post and PostResult records returned by all operations.

package platform

import (
	"context"
	"time"
)

// Client is the capability set every platform client offers.
type Client interface {
	// Platform returns the platform name, e.g. "twitter".
	Platform() string
	// Post publishes a text message and returns the created item's id.
	Post(ctx context.Context, msg Message) (*PostResult, error)
	// Timeline returns recent items in upstream order.
	Timeline(ctx context.Context, q TimelineQuery) ([]Post, error)
}

// Message is a text publication.
type Message struct {
	Text string
	// Target overrides the handle's default destination (page, room, author URN).
	Target string
}

// TimelineQuery selects recent items.
type TimelineQuery struct {
	// Target overrides the handle's default source (username, account, room).
	Target string
	Limit  int
}

// Post is a normalized content record.
type Post struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Permalink string    `json:"permalink,omitempty"`
	MediaType string    `json:"media_type,omitempty"`
	MediaURL  string    `json:"media_url,omitempty"`
}

// PostResult reports a successful publication.
type PostResult struct {
	Success   bool   `json:"success"`
	ID        string `json:"id"`
	Permalink string `json:"permalink,omitempty"`
}

// Published builds a successful PostResult, or ErrNotFound when the upstream
// response carried no id.
func Published(id, what string) (*PostResult, error) {
	if id == "" {
		return nil, NotFound("%s id missing from response", what)
	}
	return &PostResult{Success: true, ID: id}, nil
}
