// ABOUTME: Thread-safe registry mapping dot-namespaced tool names to handlers.
// ABOUTME: Strict duplicate policy by default; dispatch runs without holding the lock.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"
)

// ErrDuplicateTool indicates a tool name that is already registered.
var ErrDuplicateTool = errors.New("tool already registered")

// ErrToolNotFound indicates no tool is registered under the requested name.
var ErrToolNotFound = errors.New("tool not found")

// Option configures a Registry.
type Option func(*Registry)

// WithOverwrite selects the lenient registration policy: registering an existing
// name replaces the previous handler instead of failing.
func WithOverwrite() Option {
	return func(r *Registry) {
		r.allowOverwrite = true
	}
}

// WithObserver adds an observer notified after every call.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, o)
	}
}

// Registry maps tool names to tools. It is constructed explicitly and passed to
// every surface that dispatches calls.
type Registry struct {
	mu             sync.RWMutex
	tools          map[string]*Tool
	allowOverwrite bool
	observers      []Observer
	logger         *slog.Logger
}

// NewRegistry creates a new Registry instance.
func NewRegistry(logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		tools:  make(map[string]*Tool),
		logger: logger.With("component", "tools"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a handler to a name.
func (r *Registry) Register(name string, handler Handler) error {
	return r.RegisterTool(&Tool{Name: name, Handler: handler})
}

// RegisterTool adds a tool. Returns ErrDuplicateTool if the name is taken and the
// registry is strict; the existing binding is left untouched.
func (r *Registry) RegisterTool(tool *Tool) error {
	if err := tool.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(tool)
}

// RegisterPack registers every tool in the pack, or none of them.
func (r *Registry) RegisterPack(pack *Pack) error {
	if pack == nil {
		return ErrInvalidTool
	}
	seen := make(map[string]bool, len(pack.Tools))
	for _, tool := range pack.Tools {
		if err := tool.validate(); err != nil {
			return fmt.Errorf("pack '%s': %w", pack.ID, err)
		}
		if seen[tool.Name] {
			return fmt.Errorf("%w: tool '%s' appears twice in pack '%s'", ErrDuplicateTool, tool.Name, pack.ID)
		}
		seen[tool.Name] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for tool name collisions before registering
	if !r.allowOverwrite {
		for _, tool := range pack.Tools {
			if _, exists := r.tools[tool.Name]; exists {
				return fmt.Errorf("%w: tool '%s' (pack '%s')", ErrDuplicateTool, tool.Name, pack.ID)
			}
		}
	}

	for _, tool := range pack.Tools {
		if err := r.insertLocked(tool); err != nil {
			return err
		}
	}

	r.logger.Info("=== PACK REGISTERED ===",
		"pack_id", pack.ID,
		"tool_count", len(pack.Tools),
		"total_tools", len(r.tools),
	)

	return nil
}

func (r *Registry) insertLocked(tool *Tool) error {
	if _, exists := r.tools[tool.Name]; exists {
		if !r.allowOverwrite {
			return fmt.Errorf("%w: '%s'", ErrDuplicateTool, tool.Name)
		}
		r.logger.Warn("replacing registered tool", "tool", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// Get returns the tool registered under name, or nil.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.tools[name]
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}

// List returns all tools sorted by name.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	result := make([]*Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// ForCapabilities returns the tools whose required capability is granted.
// Tools without a required capability are always included.
func (r *Registry) ForCapabilities(caps []string) []*Tool {
	var result []*Tool
	for _, tool := range r.List() {
		if tool.RequiredCapability == "" || slices.Contains(caps, tool.RequiredCapability) {
			result = append(result, tool)
		}
	}
	return result
}

// Call looks up the tool and invokes its handler synchronously. The handler's result
// or error is returned unmodified. No lock is held while the handler runs.
func (r *Registry) Call(ctx context.Context, name string, args Args) (any, error) {
	if args == nil {
		args = Args{}
	}
	start := time.Now()

	r.mu.RLock()
	tool, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		err := fmt.Errorf("%w: '%s'", ErrToolNotFound, name)
		r.observe(name, args, start, err)
		return nil, err
	}

	r.logger.Debug("→ dispatching tool", "tool", name)

	result, err := tool.Handler(ctx, args)

	r.observe(name, args, start, err)
	if err != nil {
		r.logger.Debug("← tool failed", "tool", name, "error", err, "duration", time.Since(start))
	} else {
		r.logger.Debug("← tool responded", "tool", name, "duration", time.Since(start))
	}

	return result, err
}

// CallJSON decodes a JSON object of arguments and dispatches the call.
func (r *Registry) CallJSON(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	args, err := DecodeArgs(raw)
	if err != nil {
		return nil, err
	}
	return r.Call(ctx, name, args)
}

func (r *Registry) observe(name string, args Args, start time.Time, err error) {
	if len(r.observers) == 0 {
		return
	}
	tenantID, _ := args[ArgTenantID].(string)
	rec := CallRecord{
		Tool:     name,
		TenantID: tenantID,
		Started:  start,
		Duration: time.Since(start),
		Err:      err,
	}
	for _, o := range r.observers {
		o.ObserveCall(rec)
	}
}
