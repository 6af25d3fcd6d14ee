// Package store persists the tool-call audit trail in SQLite.
//
// Every dispatch through the tool registry is recorded by a Recorder
// (a tools.Observer) as a ToolCall row in the tool_calls table:
//
//	call_id, tool, platform, tenant_id, outcome, error, duration_us, started_at
//
// ListToolCalls returns rows newest first with a default limit of 100 and a cap
// of 1000. CountToolCalls groups rows by outcome label.
//
// The store uses SQLite (modernc.org/sqlite, no cgo) with WAL mode. Use
// MemoryPath for a private in-memory database, or NewMockStore in unit tests.
//
// Nothing else is persisted: registered tools and tenant credentials live only
// in process memory.
package store
