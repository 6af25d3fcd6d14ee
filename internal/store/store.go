// ABOUTME: Store interface and data types for the tool-call audit trail
// ABOUTME: Defines ToolCall, ToolCallFilter and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned when the store has been closed.
var ErrClosed = errors.New("store closed")

// ToolCall is one recorded dispatch through the tool registry.
type ToolCall struct {
	ID        string        // UUID v4
	Tool      string        // dot-namespaced tool name
	Platform  string        // namespace prefix of Tool
	TenantID  string        // empty when the caller supplied none
	Outcome   string        // stable outcome label, "ok" on success
	Error     string        // error message, empty on success
	Duration  time.Duration // handler run time
	StartedAt time.Time
}

// ToolCallFilter specifies filtering options for listing tool calls.
type ToolCallFilter struct {
	Since    *time.Time // calls started at or after this time
	Tool     string     // exact tool name
	TenantID string     // exact tenant id
	Outcome  string     // exact outcome label
	Limit    int        // max results (default 100, max 1000)
}

// OutcomeCount is the number of calls with one outcome.
type OutcomeCount struct {
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}

// Store is the audit persistence used by the gateway.
type Store interface {
	AppendToolCall(ctx context.Context, c *ToolCall) error
	ListToolCalls(ctx context.Context, f ToolCallFilter) ([]ToolCall, error)
	CountToolCalls(ctx context.Context, since time.Time) ([]OutcomeCount, error)
	Ping(ctx context.Context) error
	Close() error
}
