// ABOUTME: Tests for the MCP HTTP server including tool listing and execution.
// ABOUTME: Validates sessions, capability filtering, token forwarding, and error results.

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tools"
)

// testValidator accepts "reader" and "writer" tokens.
var testValidator = auth.ValidatorFunc(func(token string) (*auth.Claims, error) {
	switch token {
	case "reader":
		return &auth.Claims{PrincipalID: "agent-r", Capabilities: []string{"demo.read"}}, nil
	case "writer":
		return &auth.Claims{PrincipalID: "agent-w", Capabilities: []string{"demo.read", "demo.write"}}, nil
	}
	return nil, auth.ErrInvalidToken
})

// setupTestRegistry creates a registry with tools that check their own tokens.
func setupTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry(slog.Default())

	pack := &tools.Pack{
		ID: "demo",
		Tools: []*tools.Tool{
			{
				Name:               "demo.read",
				Description:        "Reads something",
				RequiredCapability: "demo.read",
				Handler: func(_ context.Context, args tools.Args) (any, error) {
					claims, err := auth.Authorize(testValidator, args.Token(), "demo.read")
					if err != nil {
						return nil, err
					}
					return map[string]string{"principal": claims.PrincipalID}, nil
				},
			},
			{
				Name:               "demo.write",
				Description:        "Writes something",
				RequiredCapability: "demo.write",
				Handler: func(_ context.Context, args tools.Args) (any, error) {
					if _, err := auth.Authorize(testValidator, args.Token(), "demo.write"); err != nil {
						return nil, err
					}
					return nil, platform.NotFound("nothing to write to")
				},
			},
		},
	}
	if err := registry.RegisterPack(pack); err != nil {
		t.Fatalf("failed to register test pack: %v", err)
	}
	return registry
}

func setupTestServer(t *testing.T, requireAuth bool) http.Handler {
	t.Helper()
	server, err := NewServer(Config{
		Registry:    setupTestRegistry(t),
		Validator:   testValidator,
		Logger:      slog.Default(),
		RequireAuth: requireAuth,
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	router := chi.NewRouter()
	server.RegisterRoutes(router)
	return router
}

func post(t *testing.T, h http.Handler, path, token, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func initialize(t *testing.T, h http.Handler, path, token string) string {
	t.Helper()
	rr := post(t, h, path, token, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("initialize status = %d", rr.Code)
	}
	sessionID := rr.Header().Get("Mcp-Session-Id")
	if sessionID == "" {
		t.Fatalf("initialize returned no session id: %s", rr.Body.String())
	}
	return sessionID
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) JSONRPCResponse {
	t.Helper()
	var resp JSONRPCResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return resp
}

func decodeCallResult(t *testing.T, rr *httptest.ResponseRecorder) MCPCallToolResult {
	t.Helper()
	var resp struct {
		Result MCPCallToolResult `json:"result"`
		Error  *JSONRPCError     `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected JSON-RPC error: %+v", resp.Error)
	}
	return resp.Result
}

func TestInitialize(t *testing.T) {
	h := setupTestServer(t, false)

	rr := post(t, h, "/mcp", "", "", `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	resp := decodeResponse(t, rr)
	if resp.Error != nil {
		t.Fatalf("initialize error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]any)
	if result["protocolVersion"] != latestProtocolVersion {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	if rr.Header().Get("Mcp-Session-Id") == "" {
		t.Error("missing Mcp-Session-Id header")
	}
}

func TestInitialize_RequireAuth(t *testing.T) {
	h := setupTestServer(t, true)

	rr := post(t, h, "/mcp", "", "", `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	resp := decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Message != "authentication required" {
		t.Fatalf("expected authentication required, got %+v", resp.Error)
	}

	rr = post(t, h, "/mcp", "bogus", "", `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	resp = decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Message != "invalid or expired token" {
		t.Fatalf("expected invalid token, got %+v", resp.Error)
	}
}

func TestRequestsNeedSession(t *testing.T) {
	h := setupTestServer(t, false)

	rr := post(t, h, "/mcp", "", "", `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing session: status = %d, want 400", rr.Code)
	}

	rr = post(t, h, "/mcp", "", "does-not-exist", `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown session: status = %d, want 404", rr.Code)
	}
}

func TestToolsList_FilteredByCapabilities(t *testing.T) {
	h := setupTestServer(t, false)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous sees all", "", 2},
		{"reader sees read tools", "reader", 1},
		{"writer sees everything", "writer", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessionID := initialize(t, h, "/mcp", tt.token)
			rr := post(t, h, "/mcp", tt.token, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

			var resp struct {
				Result MCPListToolsResult `json:"result"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Result.Tools) != tt.want {
				t.Errorf("got %d tools, want %d", len(resp.Result.Tools), tt.want)
			}
			for _, tool := range resp.Result.Tools {
				if !json.Valid(tool.InputSchema) {
					t.Errorf("tool %s has invalid input schema", tool.Name)
				}
			}
		})
	}
}

func TestToolsCall_InjectsBearerToken(t *testing.T) {
	h := setupTestServer(t, false)
	sessionID := initialize(t, h, "/mcp", "reader")

	rr := post(t, h, "/mcp", "reader", sessionID,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"demo.read","arguments":{"tenant_id":"acme"}}}`)
	result := decodeCallResult(t, rr)
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	if !strings.Contains(result.Content[0].Text, `"principal":"agent-r"`) {
		t.Errorf("content = %q", result.Content[0].Text)
	}
}

func TestToolsCall_NullTokenUsesBearer(t *testing.T) {
	h := setupTestServer(t, false)
	sessionID := initialize(t, h, "/mcp", "reader")

	rr := post(t, h, "/mcp", "reader", sessionID,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"demo.read","arguments":{"tenant_id":"acme","token":null}}}`)
	result := decodeCallResult(t, rr)
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	if !strings.Contains(result.Content[0].Text, `"principal":"agent-r"`) {
		t.Errorf("content = %q", result.Content[0].Text)
	}
}

func TestToolsCall_TokenInPath(t *testing.T) {
	h := setupTestServer(t, false)
	sessionID := initialize(t, h, "/mcp/writer", "")

	rr := post(t, h, "/mcp/writer", "", sessionID,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"demo.read","arguments":{}}}`)
	result := decodeCallResult(t, rr)
	if result.IsError || !strings.Contains(result.Content[0].Text, "agent-w") {
		t.Errorf("result = %+v", result)
	}
}

func TestToolsCall_ErrorsAreToolResults(t *testing.T) {
	h := setupTestServer(t, false)
	sessionID := initialize(t, h, "/mcp", "")

	tests := []struct {
		name    string
		token   string
		tool    string
		outcome platform.Outcome
	}{
		{"missing token", "", "demo.read", platform.OutcomeUnauthenticated},
		{"missing capability", "reader", "demo.write", platform.OutcomeUnauthorized},
		{"not found", "writer", "demo.write", platform.OutcomeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"` + tt.tool + `","arguments":{}}}`
			result := decodeCallResult(t, post(t, h, "/mcp", tt.token, sessionID, body))
			if !result.IsError {
				t.Fatalf("expected isError result, got %+v", result)
			}
			var payload toolError
			if err := json.Unmarshal([]byte(result.Content[0].Text), &payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if payload.Error != string(tt.outcome) {
				t.Errorf("outcome = %q, want %q", payload.Error, tt.outcome)
			}
		})
	}
}

func TestToolsCall_UnknownToolIsInvalidParams(t *testing.T) {
	h := setupTestServer(t, false)
	sessionID := initialize(t, h, "/mcp", "")

	rr := post(t, h, "/mcp", "", sessionID,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"nope.tool"}}`)
	resp := decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Code != JSONRPCInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}

	rr = post(t, h, "/mcp", "", sessionID,
		`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"demo.read","arguments":[1,2]}}`)
	resp = decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Code != JSONRPCInvalidParams {
		t.Fatalf("expected invalid params for non-object arguments, got %+v", resp.Error)
	}
}

func TestNotificationsAndUnknownMethods(t *testing.T) {
	h := setupTestServer(t, false)
	sessionID := initialize(t, h, "/mcp", "")

	rr := post(t, h, "/mcp", "", sessionID, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if rr.Code != http.StatusAccepted {
		t.Errorf("notification status = %d, want 202", rr.Code)
	}

	rr = post(t, h, "/mcp", "", sessionID, `{"jsonrpc":"2.0","id":7,"method":"resources/list"}`)
	resp := decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Code != JSONRPCMethodNotFound {
		t.Errorf("expected method not found, got %+v", resp.Error)
	}

	rr = post(t, h, "/mcp", "", sessionID, `{"jsonrpc":"2.0","id":8,"method":"ping"}`)
	if resp := decodeResponse(t, rr); resp.Error != nil {
		t.Errorf("ping error: %+v", resp.Error)
	}
}

func TestBadRequests(t *testing.T) {
	h := setupTestServer(t, false)

	rr := post(t, h, "/mcp", "", "", `not json`)
	if resp := decodeResponse(t, rr); resp.Error == nil || resp.Error.Code != JSONRPCParseError {
		t.Errorf("expected parse error, got %+v", resp.Error)
	}

	rr = post(t, h, "/mcp", "", "", `{"jsonrpc":"1.0","id":1,"method":"initialize"}`)
	if resp := decodeResponse(t, rr); resp.Error == nil || resp.Error.Code != JSONRPCInvalidRequest {
		t.Errorf("expected invalid request, got %+v", resp.Error)
	}

	big := bytes.Repeat([]byte("x"), MaxRequestBodySize+10)
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(big))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if resp := decodeResponse(t, rec); resp.Error == nil || resp.Error.Message != "request body too large" {
		t.Errorf("expected body too large, got %+v", resp.Error)
	}

	sessionID := initialize(t, h, "/mcp", "")
	req = httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	req.Header.Set("Mcp-Session-Id", sessionID)
	req.Header.Set("Mcp-Protocol-Version", "1999-01-01")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported protocol version: status = %d, want 400", rec.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	h := setupTestServer(t, false)
	sessionID := initialize(t, h, "/mcp", "reader")

	del := func(token string) int {
		req := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
		req.Header.Set("Mcp-Session-Id", sessionID)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := del("writer"); code != http.StatusForbidden {
		t.Errorf("delete by other caller: status = %d, want 403", code)
	}
	if code := del("reader"); code != http.StatusNoContent {
		t.Errorf("delete by owner: status = %d, want 204", code)
	}
	if code := del("reader"); code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", code)
	}
}

func TestGetNotAllowed(t *testing.T) {
	h := setupTestServer(t, false)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rr.Code)
	}
}

func TestNewServer_Validation(t *testing.T) {
	if _, err := NewServer(Config{}); err == nil {
		t.Error("expected error without registry")
	}
	if _, err := NewServer(Config{Registry: tools.NewRegistry(slog.Default()), RequireAuth: true}); err == nil {
		t.Error("expected error when auth is required without a validator")
	}
}
