// ABOUTME: Keyword-argument bag passed to tool handlers with typed accessors.
// ABOUTME: Accepts both Go values and JSON-decoded values (float64, json.Number).

package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidArgument indicates a missing or malformed tool argument.
var ErrInvalidArgument = errors.New("invalid argument")

// Conventional argument names shared by every platform operation.
const (
	ArgTenantID = "tenant_id"
	ArgToken    = "token"
)

// Args holds the keyword arguments of a tool call.
type Args map[string]any

// TenantID returns the required tenant_id argument.
func (a Args) TenantID() (string, error) {
	return a.String(ArgTenantID)
}

// Token returns the capability token argument, or "" when absent or null.
func (a Args) Token() string {
	token, _ := a[ArgToken].(string)
	return token
}

// String returns a required, non-empty string argument.
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidArgument, key)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, key)
	}
	return s, nil
}

// OptionalString returns a string argument or def when it is absent, null or empty.
func (a Args) OptionalString(key, def string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidArgument, key)
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// Int returns an integer argument or def when it is absent or null.
func (a Args) Int(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
		}
		return int(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
		}
		return int(f), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArgument, key)
	}
}

// Bool returns a boolean argument or def when it is absent or null.
func (a Args) Bool(key string, def bool) (bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrInvalidArgument, key)
	}
	return b, nil
}

// Without returns a copy of the arguments with the given keys removed.
func (a Args) Without(keys ...string) Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// DecodeArgs parses a JSON object into Args. Numbers are kept as json.Number.
func DecodeArgs(raw json.RawMessage) (Args, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Args{}, nil
	}
	var args Args
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: arguments must be a JSON object: %v", ErrInvalidArgument, err)
	}
	if args == nil {
		args = Args{}
	}
	return args, nil
}
