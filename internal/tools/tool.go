// ABOUTME: Tool definitions: a dot-namespaced name, a handler, and discovery metadata.
// ABOUTME: Packs group the tools a single platform contributes to the registry.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTool indicates a tool definition that cannot be registered.
var ErrInvalidTool = errors.New("invalid tool")

// Handler executes a tool. It receives the keyword arguments of the call and returns
// a normalized result or an error. Handlers own their argument validation.
type Handler func(ctx context.Context, args Args) (any, error)

// Tool is a registered, invokable operation.
type Tool struct {
	// Name is dot-namespaced by platform, e.g. "twitter.get_timeline".
	Name        string
	Description string
	// RequiredCapability is advertised for discovery. The handler enforces it.
	RequiredCapability string
	Input              *Schema
	Handler            Handler
}

// Platform returns the namespace part of the tool name.
func (t *Tool) Platform() string {
	platform, _, found := strings.Cut(t.Name, ".")
	if !found {
		return ""
	}
	return platform
}

// InputSchema returns the raw JSON Schema for the tool's arguments.
func (t *Tool) InputSchema() json.RawMessage {
	if t.Input == nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return t.Input.Raw()
}

func (t *Tool) validate() error {
	if t == nil {
		return ErrInvalidTool
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTool)
	}
	if t.Handler == nil {
		return fmt.Errorf("%w: handler is required for '%s'", ErrInvalidTool, t.Name)
	}
	return nil
}

// Pack is the set of tools contributed by one platform.
type Pack struct {
	ID    string
	Tools []*Tool
}
