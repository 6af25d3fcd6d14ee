// Package config handles configuration loading for herald-gateway.
//
// # Overview
//
// Configuration is loaded from a YAML file, or a TOML file when the path ends
// in .toml, with environment variable expansion, defaults, and validation.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from HERALD_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/herald/gateway.yaml
//  3. ~/.config/herald/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${HERALD_JWT_SECRET}"
//
// Unset variables expand to an empty string.
//
// # Configuration Sections
//
//	server:
//	  http_addr: "0.0.0.0:8080"     # MCP, REST, health, metrics
//	  grpc_addr: "0.0.0.0:50051"    # optional grpc.health.v1 endpoint
//	  shutdown_timeout: "10s"
//
//	tailscale:
//	  enabled: true
//	  hostname: "herald"
//	  grpc: true                    # grpc.health.v1 on :50051 of the tailnet
//
//	database:
//	  path: "/var/lib/herald/audit.db"
//
//	auth:
//	  jwt_secret: "${HERALD_JWT_SECRET}"   # at least 32 bytes
//	  static_tokens:
//	    - principal: "ops-bot"
//	      token_hash: "$2a$10$..."         # herald-gateway hash-token <token>
//	      capabilities: ["twitter.read"]
//
//	tools:
//	  allow_overwrite: false        # duplicate tool names are an error
//	  platforms: ["twitter", "matrix"]
//
//	tenants:
//	  implicit_env: true            # build clients from FB_ACCESS_TOKEN_<TENANT> etc.
//	  twitter:
//	    - id: "acme"
//	      bearer_token: "${ACME_TWITTER_BEARER}"
//
//	platforms:
//	  http_timeout: "30s"
//
//	logging:
//	  level: "info"                 # debug, info, warn, error
//	  format: "text"                # text or json
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
package config
