// Package tools provides the registry that maps tool names to handlers.
//
// # Overview
//
// A tool is a named remote operation such as "twitter.get_timeline". Names are
// dot-namespaced by platform. Each platform package builds a Pack of tools and the
// gateway registers it:
//
//	registry := tools.NewRegistry(logger)
//	if err := registry.RegisterPack(twitter.Pack(deps)); err != nil { ... }
//	result, err := registry.Call(ctx, "twitter.get_timeline", tools.Args{
//		"tenant_id": "agent-1",
//		"username":  "golang",
//		"token":     token,
//	})
//
// # Registration policy
//
// The registry is strict: registering a name twice returns ErrDuplicateTool and the
// first binding stays in place. WithOverwrite selects the lenient policy, where the
// newer handler replaces the older one and a warning is logged.
//
// # Dispatch
//
// Call looks the handler up under a read lock, releases it, and invokes the handler
// synchronously. The registry performs no argument validation; handlers validate
// their own arguments (see Schema) after the token and capability checks. Unknown
// names fail with ErrToolNotFound.
//
// # Observation
//
// Observers registered with WithObserver receive a CallRecord after every call and
// back the metrics and audit trail.
package tools
