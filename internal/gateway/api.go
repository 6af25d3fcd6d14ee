// ABOUTME: REST API handlers for tool discovery, invocation, tenants, and the call audit trail
// ABOUTME: Errors are mapped from outcome labels to HTTP status codes with a JSON body

package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/store"
	"github.com/2389/herald-gateway/internal/tools"
)

// CapAuditRead allows reading the tool-call audit trail.
const CapAuditRead = "herald.audit"

// maxRequestBody bounds a tool invocation body.
const maxRequestBody = 1 << 20

// ToolInfoResponse describes one tool for GET /api/tools.
type ToolInfoResponse struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	RequiredCapability string          `json:"required_capability"`
	InputSchema        json.RawMessage `json:"input_schema"`
}

// ListToolsResponse is the JSON response for GET /api/tools.
type ListToolsResponse struct {
	Tools []ToolInfoResponse `json:"tools"`
}

// CallToolResponse is the JSON response for a successful POST /api/tools/{name}.
type CallToolResponse struct {
	Tool   string `json:"tool"`
	Result any    `json:"result"`
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ToolCallResponse is one audit entry for GET /api/calls.
type ToolCallResponse struct {
	ID         string `json:"id"`
	Tool       string `json:"tool"`
	Platform   string `json:"platform"`
	TenantID   string `json:"tenant_id,omitempty"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	StartedAt  string `json:"started_at"`
}

// ListCallsResponse is the JSON response for GET /api/calls.
type ListCallsResponse struct {
	Calls   []ToolCallResponse   `json:"calls"`
	Summary []store.OutcomeCount `json:"summary"`
}

// registerAPIRoutes mounts the REST API under /api.
func (g *Gateway) registerAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.With(auth.OptionalClaims(g.validator)).Get("/tools", g.handleListTools)
		r.Post("/tools/{name}", g.handleCallTool)
		r.Get("/tenants", g.handleListTenants)
		r.Get("/calls", g.handleListCalls)
	})
}

// handleListTools returns every tool, or only those the caller's token allows.
func (g *Gateway) handleListTools(w http.ResponseWriter, r *http.Request) {
	list := g.registry.List()
	if claims := auth.FromContext(r.Context()); claims != nil {
		list = g.registry.ForCapabilities(claims.Capabilities)
	}

	resp := ListToolsResponse{Tools: make([]ToolInfoResponse, 0, len(list))}
	for _, t := range list {
		resp.Tools = append(resp.Tools, ToolInfoResponse{
			Name:               t.Name,
			Description:        t.Description,
			RequiredCapability: t.RequiredCapability,
			InputSchema:        t.InputSchema(),
		})
	}
	g.sendJSON(w, http.StatusOK, resp)
}

// handleCallTool dispatches POST /api/tools/{name}. The body is the argument object;
// the bearer token is used when the arguments carry no token.
func (g *Gateway) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, string(platform.OutcomeInvalidArgument), "failed to read body")
		return
	}

	args, err := tools.DecodeArgs(body)
	if err != nil {
		g.sendToolError(w, err)
		return
	}
	if args.Token() == "" {
		if token := auth.BearerToken(r); token != "" {
			args[tools.ArgToken] = token
		}
	}

	result, err := g.registry.Call(r.Context(), name, args)
	if err != nil {
		g.sendToolError(w, err)
		return
	}
	g.sendJSON(w, http.StatusOK, CallToolResponse{Tool: name, Result: result})
}

// handleListTenants returns the registered tenant ids per platform. Any valid token may list them.
func (g *Gateway) handleListTenants(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.CheckToken(g.validator, auth.BearerToken(r)); err != nil {
		g.sendToolError(w, err)
		return
	}
	g.sendJSON(w, http.StatusOK, map[string]any{"tenants": g.tenantsByPlatform()})
}

// handleListCalls returns recent audit entries and an outcome summary.
// Query parameters: tool, tenant_id, outcome, since (RFC 3339), limit.
func (g *Gateway) handleListCalls(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.Authorize(g.validator, auth.BearerToken(r), CapAuditRead); err != nil {
		g.sendToolError(w, err)
		return
	}

	q := r.URL.Query()
	filter := store.ToolCallFilter{
		Tool:     q.Get("tool"),
		TenantID: q.Get("tenant_id"),
		Outcome:  q.Get("outcome"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			g.sendJSONError(w, http.StatusBadRequest, string(platform.OutcomeInvalidArgument), "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	var since time.Time
	if raw := q.Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			g.sendJSONError(w, http.StatusBadRequest, string(platform.OutcomeInvalidArgument), "since must be an RFC 3339 timestamp")
			return
		}
		since = t
		filter.Since = &since
	}

	calls, err := g.store.ListToolCalls(r.Context(), filter)
	if err != nil {
		g.logger.Error("failed to list tool calls", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, string(platform.OutcomeInternal), "failed to list tool calls")
		return
	}
	summary, err := g.store.CountToolCalls(r.Context(), since)
	if err != nil {
		g.logger.Error("failed to count tool calls", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, string(platform.OutcomeInternal), "failed to count tool calls")
		return
	}

	resp := ListCallsResponse{Calls: make([]ToolCallResponse, 0, len(calls)), Summary: summary}
	for _, c := range calls {
		resp.Calls = append(resp.Calls, ToolCallResponse{
			ID:         c.ID,
			Tool:       c.Tool,
			Platform:   c.Platform,
			TenantID:   c.TenantID,
			Outcome:    c.Outcome,
			Error:      c.Error,
			DurationMS: c.Duration.Milliseconds(),
			StartedAt:  c.StartedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	g.sendJSON(w, http.StatusOK, resp)
}

// statusFor maps an outcome label to an HTTP status.
func statusFor(outcome platform.Outcome) int {
	switch outcome {
	case platform.OutcomeUnauthenticated:
		return http.StatusUnauthorized
	case platform.OutcomeUnauthorized:
		return http.StatusForbidden
	case platform.OutcomeToolNotFound, platform.OutcomeUnregisteredTenant, platform.OutcomeNotFound:
		return http.StatusNotFound
	case platform.OutcomeInvalidArgument, platform.OutcomeInvalidCredentials:
		return http.StatusBadRequest
	case platform.OutcomeUnsupported:
		return http.StatusNotImplemented
	case platform.OutcomeRemoteError:
		return http.StatusBadGateway
	case platform.OutcomeCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// sendToolError classifies err and writes the matching status and body.
func (g *Gateway) sendToolError(w http.ResponseWriter, err error) {
	outcome := platform.Classify(err)
	status := statusFor(outcome)
	message := err.Error()
	if status == http.StatusInternalServerError {
		g.logger.Error("tool call failed", "error", err)
		message = "internal error"
	}
	g.sendJSONError(w, status, string(outcome), message)
}

// sendJSON writes v as a JSON response.
func (g *Gateway) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Debug("failed to write response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, outcome, message string) {
	g.sendJSON(w, status, ErrorResponse{Error: outcome, Message: message})
}
