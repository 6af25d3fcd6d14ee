// Package mcp implements the Model Context Protocol server for agent tool access.
//
// # Overview
//
// The server exposes the gateway's tool registry over MCP Streamable HTTP:
// JSON-RPC 2.0 messages are POSTed to a single endpoint and answered inline.
//
//   - POST /mcp - JSON-RPC requests (initialize, ping, tools/list, tools/call)
//   - DELETE /mcp - terminate a session
//   - /mcp/{token} - same endpoint for clients that cannot set headers
//
// # Authentication
//
// Callers present a capability token:
//
//	Authorization: Bearer <token>
//
// The server validates it for initialize and tools/list (listing only the tools
// the token's capabilities allow) and forwards it as the "token" argument of
// tools/call when the arguments don't carry one. Tools perform their own token
// and capability checks on every call.
//
// # Tool Execution
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {
//	    "name": "twitter.get_timeline",
//	    "arguments": {"tenant_id": "acme", "username": "golang", "max_results": 5}
//	  },
//	  "id": 2
//	}
//
// Tool failures are returned as results with isError set and a text payload of
// {"error": "<outcome>", "message": "..."}, so agents can read them. Unknown
// tools and malformed arguments are JSON-RPC invalid params errors.
//
// # Integration with Claude Desktop
//
//	{
//	  "mcpServers": {
//	    "herald": {
//	      "url": "http://localhost:8080/mcp",
//	      "authorization": "Bearer <token>"
//	    }
//	  }
//	}
package mcp
