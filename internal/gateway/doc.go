// Package gateway orchestrates the herald-gateway server components.
//
// # Overview
//
// The gateway owns the tool registry, one tenant client cache per enabled
// platform, the audit store, and the servers that expose them:
//
//   - HTTP: health, REST API, MCP endpoint, Prometheus metrics
//   - gRPC: grpc.health.v1 only, when server.grpc_addr is set
//
// When Tailscale is enabled they listen on the tailnet instead: HTTPS on :443,
// and gRPC on :50051 only when tailscale.grpc is set.
//
// # Startup
//
// New builds the token validator (JWT secret and/or static tokens), opens the
// store, creates the registry with the audit and metrics observers, then for
// every enabled platform creates the tenant cache, registers the tenants from
// config, and registers the platform's tool pack.
//
// # HTTP API
//
//	GET  /health              liveness
//	GET  /health/ready        200 when tools are registered and the store answers
//	GET  /api/tools           tool list, filtered by the bearer token when present
//	POST /api/tools/{name}    invoke a tool; body is the argument object
//	GET  /api/tenants         registered tenants per platform (any valid token)
//	GET  /api/calls           audit trail and outcome summary (herald.audit)
//	POST /mcp                 MCP Streamable HTTP
//
// Tool errors map to status codes by outcome:
//
//	unauthenticated                              401
//	unauthorized                                 403
//	tool_not_found, unregistered_tenant, not_found 404
//	invalid_argument, invalid_credentials        400
//	unsupported                                  501
//	remote_error                                 502
//	canceled                                     504
//
// The body is always {"error": "<outcome>", "message": "..."}.
package gateway
