// ABOUTME: Registry observer that writes every dispatch to the audit store
// ABOUTME: Write failures are logged and never reach the caller

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tools"
)

const recordTimeout = 5 * time.Second

// Recorder implements tools.Observer on top of a Store.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to s.
func NewRecorder(s Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: s, logger: logger.With("component", "audit")}
}

// ObserveCall implements tools.Observer.
func (r *Recorder) ObserveCall(rec tools.CallRecord) {
	call := &ToolCall{
		Tool:      rec.Tool,
		TenantID:  rec.TenantID,
		Outcome:   string(platform.Classify(rec.Err)),
		Duration:  rec.Duration,
		StartedAt: rec.Started,
	}
	if rec.Err != nil {
		call.Error = rec.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.store.AppendToolCall(ctx, call); err != nil {
		r.logger.Error("failed to record tool call", "tool", rec.Tool, "tenant", rec.TenantID, "error", err)
	}
}
