// ABOUTME: Configuration loading and parsing for herald-gateway
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Platforms lists the platform packs the gateway can enable.
var Platforms = []string{"twitter", "facebook", "instagram", "linkedin", "matrix"}

// Config represents the complete herald-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Tools     ToolsConfig     `yaml:"tools" toml:"tools"`
	Tenants   TenantsConfig   `yaml:"tenants" toml:"tenants"`
	Platforms PlatformsConfig `yaml:"platforms" toml:"platforms"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr" toml:"grpc_addr"` // optional health endpoint
	ShutdownTimeout time.Duration `yaml:"-" toml:"-"`

	ShutdownTimeoutRaw string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	// GRPC serves the gRPC health service on the tailnet at :50051.
	GRPC bool `yaml:"grpc" toml:"grpc"`
}

// DatabaseConfig holds the audit database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// AuthConfig holds capability token configuration
type AuthConfig struct {
	JWTSecret    string              `yaml:"jwt_secret" toml:"jwt_secret"`
	Issuer       string              `yaml:"issuer" toml:"issuer"`
	RequireAuth  bool                `yaml:"require_auth" toml:"require_auth"` // MCP discovery needs a token
	StaticTokens []StaticTokenConfig `yaml:"static_tokens" toml:"static_tokens"`
}

// StaticTokenConfig is a fixed token stored as a bcrypt hash
type StaticTokenConfig struct {
	Principal    string   `yaml:"principal" toml:"principal"`
	TokenHash    string   `yaml:"token_hash" toml:"token_hash"`
	Capabilities []string `yaml:"capabilities" toml:"capabilities"`
}

// ToolsConfig selects the registered platform packs
type ToolsConfig struct {
	AllowOverwrite bool     `yaml:"allow_overwrite" toml:"allow_overwrite"`
	Platforms      []string `yaml:"platforms" toml:"platforms"` // empty enables all
}

// TenantsConfig holds per-platform tenant credentials
type TenantsConfig struct {
	ImplicitEnv bool              `yaml:"implicit_env" toml:"implicit_env"`
	Twitter     []TwitterTenant   `yaml:"twitter" toml:"twitter"`
	Facebook    []FacebookTenant  `yaml:"facebook" toml:"facebook"`
	Instagram   []InstagramTenant `yaml:"instagram" toml:"instagram"`
	LinkedIn    []LinkedInTenant  `yaml:"linkedin" toml:"linkedin"`
	Matrix      []MatrixTenant    `yaml:"matrix" toml:"matrix"`
}

// TwitterTenant holds app-only or OAuth1 user credentials
type TwitterTenant struct {
	ID           string `yaml:"id" toml:"id"`
	BearerToken  string `yaml:"bearer_token" toml:"bearer_token"`
	APIKey       string `yaml:"api_key" toml:"api_key"`
	APISecret    string `yaml:"api_secret" toml:"api_secret"`
	AccessToken  string `yaml:"access_token" toml:"access_token"`
	AccessSecret string `yaml:"access_secret" toml:"access_secret"`
}

// FacebookTenant holds a page access token
type FacebookTenant struct {
	ID          string `yaml:"id" toml:"id"`
	AccessToken string `yaml:"access_token" toml:"access_token"`
	PageID      string `yaml:"page_id" toml:"page_id"`
}

// InstagramTenant holds a Graph API token and business account
type InstagramTenant struct {
	ID                string `yaml:"id" toml:"id"`
	AccessToken       string `yaml:"access_token" toml:"access_token"`
	BusinessAccountID string `yaml:"business_account_id" toml:"business_account_id"`
}

// LinkedInTenant holds a member access token
type LinkedInTenant struct {
	ID          string `yaml:"id" toml:"id"`
	AccessToken string `yaml:"access_token" toml:"access_token"`
	AuthorURN   string `yaml:"author_urn" toml:"author_urn"`
}

// MatrixTenant holds a Matrix account
type MatrixTenant struct {
	ID          string `yaml:"id" toml:"id"`
	Homeserver  string `yaml:"homeserver" toml:"homeserver"`
	UserID      string `yaml:"user_id" toml:"user_id"`
	AccessToken string `yaml:"access_token" toml:"access_token"`
	DefaultRoom string `yaml:"default_room" toml:"default_room"`
}

// PlatformsConfig holds shared HTTP settings and API base URL overrides
type PlatformsConfig struct {
	HTTPTimeout time.Duration `yaml:"-" toml:"-"`

	HTTPTimeoutRaw  string `yaml:"http_timeout" toml:"http_timeout"`
	TwitterBaseURL  string `yaml:"twitter_base_url" toml:"twitter_base_url"`
	GraphBaseURL    string `yaml:"graph_base_url" toml:"graph_base_url"` // Facebook and Instagram
	LinkedInBaseURL string `yaml:"linkedin_base_url" toml:"linkedin_base_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "text" or "json"
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills unset optional fields.
func (c *Config) applyDefaults() {
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Platforms.HTTPTimeout == 0 {
		c.Platforms.HTTPTimeout = 30 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// The HTTP address is required unless Tailscale is enabled
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if err := c.Auth.validate(); err != nil {
		return err
	}

	for _, p := range c.Tools.Platforms {
		if !slices.Contains(Platforms, p) {
			return fmt.Errorf("tools.platforms: unknown platform %q (known: %s)", p, strings.Join(Platforms, ", "))
		}
	}

	if err := c.Tenants.validate(); err != nil {
		return err
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}

	return nil
}

// MinJWTSecretLength is the minimum HS256 secret size in bytes.
const MinJWTSecretLength = 32

func (a AuthConfig) validate() error {
	if a.JWTSecret == "" && len(a.StaticTokens) == 0 {
		return fmt.Errorf("auth.jwt_secret or auth.static_tokens is required")
	}
	if a.JWTSecret != "" && len(a.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", MinJWTSecretLength)
	}
	for i, st := range a.StaticTokens {
		if st.Principal == "" {
			return fmt.Errorf("auth.static_tokens[%d].principal is required", i)
		}
		if !strings.HasPrefix(st.TokenHash, "$2") {
			return fmt.Errorf("auth.static_tokens[%d].token_hash must be a bcrypt hash", i)
		}
	}
	return nil
}

func (t TenantsConfig) validate() error {
	sections := []struct {
		name string
		ids  []string
	}{
		{"twitter", tenantIDs(t.Twitter, func(x TwitterTenant) string { return x.ID })},
		{"facebook", tenantIDs(t.Facebook, func(x FacebookTenant) string { return x.ID })},
		{"instagram", tenantIDs(t.Instagram, func(x InstagramTenant) string { return x.ID })},
		{"linkedin", tenantIDs(t.LinkedIn, func(x LinkedInTenant) string { return x.ID })},
		{"matrix", tenantIDs(t.Matrix, func(x MatrixTenant) string { return x.ID })},
	}
	for _, s := range sections {
		seen := make(map[string]bool, len(s.ids))
		for i, id := range s.ids {
			if id == "" {
				return fmt.Errorf("tenants.%s[%d].id is required", s.name, i)
			}
			if seen[id] {
				return fmt.Errorf("tenants.%s: duplicate tenant %q", s.name, id)
			}
			seen[id] = true
		}
	}
	return nil
}

func tenantIDs[T any](entries []T, id func(T) string) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = id(e)
	}
	return ids
}

// PlatformEnabled reports whether the named platform pack should be registered.
func (c *Config) PlatformEnabled(name string) bool {
	return len(c.Tools.Platforms) == 0 || slices.Contains(c.Tools.Platforms, name)
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Server.ShutdownTimeoutRaw != "" {
		cfg.Server.ShutdownTimeout, err = time.ParseDuration(cfg.Server.ShutdownTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing shutdown_timeout %q: %w", cfg.Server.ShutdownTimeoutRaw, err)
		}
	}

	if cfg.Platforms.HTTPTimeoutRaw != "" {
		cfg.Platforms.HTTPTimeout, err = time.ParseDuration(cfg.Platforms.HTTPTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing http_timeout %q: %w", cfg.Platforms.HTTPTimeoutRaw, err)
		}
	}

	return nil
}
