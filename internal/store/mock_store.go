// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu     sync.RWMutex
	calls  []ToolCall
	closed bool

	// AppendErr, when set, is returned by AppendToolCall.
	AppendErr error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// AppendToolCall stores a tool call.
func (m *MockStore) AppendToolCall(ctx context.Context, c *ToolCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.AppendErr != nil {
		return m.AppendErr
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.StartedAt.IsZero() {
		c.StartedAt = time.Now().UTC()
	}
	if c.Platform == "" {
		c.Platform = platformOf(c.Tool)
	}
	m.calls = append(m.calls, *c)
	return nil
}

// ListToolCalls returns matching calls, newest first.
func (m *MockStore) ListToolCalls(ctx context.Context, f ToolCallFilter) ([]ToolCall, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	result := []ToolCall{}
	for i := len(m.calls) - 1; i >= 0; i-- {
		c := m.calls[i]
		if f.Since != nil && c.StartedAt.Before(*f.Since) {
			continue
		}
		if (f.Tool != "" && c.Tool != f.Tool) ||
			(f.TenantID != "" && c.TenantID != f.TenantID) ||
			(f.Outcome != "" && c.Outcome != f.Outcome) {
			continue
		}
		result = append(result, c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if limit := normalizeLimit(f.Limit); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CountToolCalls counts calls per outcome since the given time.
func (m *MockStore) CountToolCalls(ctx context.Context, since time.Time) ([]OutcomeCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byOutcome := make(map[string]int)
	for _, c := range m.calls {
		if !c.StartedAt.Before(since) {
			byOutcome[c.Outcome]++
		}
	}
	counts := make([]OutcomeCount, 0, len(byOutcome))
	for outcome, n := range byOutcome {
		counts = append(counts, OutcomeCount{Outcome: outcome, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Outcome < counts[j].Outcome
	})
	return counts, nil
}

// Ping reports ErrClosed after Close.
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Compile-time interface checks
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MockStore)(nil)
)
