// ABOUTME: JSON Schema wrapper used by tool handlers to validate their own arguments.
// ABOUTME: Schemas are compiled once at pack construction and reused for every call.

package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema for a tool's arguments.
type Schema struct {
	raw      json.RawMessage
	compiled *gojsonschema.Schema
}

// CompileSchema parses and compiles a JSON Schema document.
func CompileSchema(raw string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Schema{raw: json.RawMessage(raw), compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for package-level schema literals.
func MustCompileSchema(raw string) *Schema {
	s, err := CompileSchema(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Raw returns the schema document.
func (s *Schema) Raw() json.RawMessage {
	return s.raw
}

// Validate checks the arguments against the schema. Violations are reported as
// ErrInvalidArgument with every failing field listed.
func (s *Schema) Validate(args Args) error {
	if s == nil {
		return nil
	}
	if args == nil {
		args = Args{}
	}

	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(map[string]any(args)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(problems, "; "))
	}

	return nil
}
