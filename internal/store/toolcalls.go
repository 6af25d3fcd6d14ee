// ABOUTME: Tool call audit entries: append and filtered listing on the tool_calls table
// ABOUTME: Timestamps are stored as fixed-width UTC strings so they sort lexically

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timestampLayout is fixed width so ORDER BY on the text column is chronological.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// AppendToolCall records a tool call.
// Generates ID and StartedAt if not set.
func (s *SQLiteStore) AppendToolCall(ctx context.Context, c *ToolCall) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.StartedAt.IsZero() {
		c.StartedAt = time.Now().UTC()
	}
	if c.Platform == "" {
		c.Platform = platformOf(c.Tool)
	}

	query := `
		INSERT INTO tool_calls (call_id, tool, platform, tenant_id, outcome, error, duration_us, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.Tool,
		c.Platform,
		c.TenantID,
		c.Outcome,
		nullString(c.Error),
		c.Duration.Microseconds(),
		c.StartedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting tool call: %w", err)
	}
	return nil
}

// normalizeLimit applies default (100) and cap (1000) to a list limit.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

const toolCallsQuery = `
	SELECT call_id, tool, platform, tenant_id, outcome, error, duration_us, started_at
	FROM tool_calls
	WHERE (? IS NULL OR started_at >= ?)
	  AND (? = '' OR tool = ?)
	  AND (? = '' OR tenant_id = ?)
	  AND (? = '' OR outcome = ?)
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?
`

// ListToolCalls returns tool calls matching the filter criteria.
// Results are returned newest first.
func (s *SQLiteStore) ListToolCalls(ctx context.Context, f ToolCallFilter) ([]ToolCall, error) {
	var since *string
	if f.Since != nil {
		str := f.Since.UTC().Format(timestampLayout)
		since = &str
	}

	rows, err := s.db.QueryContext(ctx, toolCallsQuery,
		since, since,
		f.Tool, f.Tool,
		f.TenantID, f.TenantID,
		f.Outcome, f.Outcome,
		normalizeLimit(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying tool calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	calls := []ToolCall{}
	for rows.Next() {
		c, err := scanToolCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tool calls: %w", err)
	}
	return calls, nil
}

// CountToolCalls returns per-outcome call counts since the given time, most frequent first.
func (s *SQLiteStore) CountToolCalls(ctx context.Context, since time.Time) ([]OutcomeCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*) FROM tool_calls
		WHERE started_at >= ?
		GROUP BY outcome
		ORDER BY COUNT(*) DESC, outcome
	`, since.UTC().Format(timestampLayout))
	if err != nil {
		return nil, fmt.Errorf("counting tool calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := []OutcomeCount{}
	for rows.Next() {
		var oc OutcomeCount
		if err := rows.Scan(&oc.Outcome, &oc.Count); err != nil {
			return nil, fmt.Errorf("scanning outcome count: %w", err)
		}
		counts = append(counts, oc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcome counts: %w", err)
	}
	return counts, nil
}

// scanToolCall scans a row into a ToolCall.
func scanToolCall(scanner interface{ Scan(dest ...any) error }) (ToolCall, error) {
	var c ToolCall
	var errMsg sql.NullString
	var durationUS int64
	var startedStr string

	if err := scanner.Scan(
		&c.ID,
		&c.Tool,
		&c.Platform,
		&c.TenantID,
		&c.Outcome,
		&errMsg,
		&durationUS,
		&startedStr,
	); err != nil {
		return c, fmt.Errorf("scanning tool call: %w", err)
	}

	c.Error = errMsg.String
	c.Duration = time.Duration(durationUS) * time.Microsecond
	var err error
	c.StartedAt, err = time.Parse(timestampLayout, startedStr)
	if err != nil {
		return c, fmt.Errorf("parsing timestamp: %w", err)
	}
	return c, nil
}

// nullString converts empty strings to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func platformOf(tool string) string {
	if i := strings.IndexByte(tool, '.'); i > 0 {
		return tool[:i]
	}
	return tool
}
