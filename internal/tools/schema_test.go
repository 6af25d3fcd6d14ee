// ABOUTME: Tests for JSON Schema argument validation.
// ABOUTME: Uses a schema shaped like the platform operation schemas.

package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timelineSchema = `{
	"type": "object",
	"properties": {
		"tenant_id": {"type": "string", "minLength": 1},
		"token": {"type": ["string", "null"]},
		"username": {"type": "string", "minLength": 1},
		"max_results": {"type": "integer", "minimum": 1, "maximum": 100}
	},
	"required": ["tenant_id", "username"]
}`

func TestSchemaValidate(t *testing.T) {
	schema := MustCompileSchema(timelineSchema)

	tests := []struct {
		name    string
		args    Args
		wantErr bool
	}{
		{name: "valid", args: Args{"tenant_id": "agent-1", "username": "golang", "max_results": 3}},
		{name: "json number", args: Args{"tenant_id": "agent-1", "username": "golang", "max_results": json.Number("3")}},
		{name: "null token", args: Args{"tenant_id": "agent-1", "username": "golang", "token": nil}},
		{name: "missing username", args: Args{"tenant_id": "agent-1"}, wantErr: true},
		{name: "max_results out of range", args: Args{"tenant_id": "agent-1", "username": "golang", "max_results": 500}, wantErr: true},
		{name: "wrong type", args: Args{"tenant_id": 12, "username": "golang"}, wantErr: true},
		{name: "nil args", args: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(`{"type": 12}`)
	require.Error(t, err)

	assert.Panics(t, func() { MustCompileSchema(`not json`) })
}

func TestSchemaNil(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.Validate(Args{"anything": 1}))
}

func TestSchemaValidate_IntegralDecimalReadsAsInt(t *testing.T) {
	schema := MustCompileSchema(timelineSchema)

	args, err := DecodeArgs([]byte(`{"tenant_id":"agent-1","username":"golang","max_results":3.0}`))
	require.NoError(t, err)
	require.NoError(t, schema.Validate(args))

	n, err := args.Int("max_results", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
