// ABOUTME: Entry point for herald-gateway, the multi-tenant social platform tool server
// ABOUTME: Dispatches serve, init, token, hash-token, tools, call, and health commands

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/herald-gateway/internal/config"
	"github.com/2389/herald-gateway/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _                    _     _
 | |__   ___ _ __ __ _| | __| |
 | '_ \ / _ \ '__/ _' | |/ _' |
 | | | |  __/ | | (_| | | (_| |
 |_| |_|\___|_|  \__,_|_|\__,_|
`

// getConfigPath returns the path to the gateway config file.
// Priority: HERALD_CONFIG env var > XDG_CONFIG_HOME/herald/gateway.yaml > ~/.config/herald/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("HERALD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "herald", "gateway.yaml")
}

// getDataPath returns the path to the herald data directory.
// Priority: XDG_DATA_HOME/herald > ~/.local/share/herald
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "herald")
}

func usage() {
	fmt.Println("Usage: herald-gateway <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                                  Start the gateway server")
	fmt.Println("  init                                   Create a new config file interactively")
	fmt.Println("  token --principal ID --caps a,b [--ttl 720h]")
	fmt.Println("                                         Issue a capability token")
	fmt.Println("  hash-token [TOKEN]                     Hash a static token for the config")
	fmt.Println("  tools                                  List tools visible to $HERALD_TOKEN")
	fmt.Println("  call NAME --tenant ID [--args JSON]    Invoke a tool on a running gateway")
	fmt.Println("  health                                 Check gateway health")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "token":
		err = runToken(args)
	case "hash-token":
		err = runHashToken(args)
	case "tools":
		err = runTools(ctx, args)
	case "call":
		err = runCall(ctx, args)
	case "health":
		err = runHealth(ctx)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	if cfg.Server.GRPCAddr != "" {
		green.Print("    ▶ ")
		fmt.Printf("gRPC:      %s (health)\n", cfg.Server.GRPCAddr)
	}
	for _, p := range config.Platforms {
		if !cfg.PlatformEnabled(p) {
			continue
		}
		green.Print("    ▶ ")
		fmt.Printf("Platform:  %s\n", p)
	}

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	}

	fmt.Println()

	logger.Info("starting herald-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"grpc_addr", cfg.Server.GRPCAddr,
		"version", version,
	)

	gateway.Version = version
	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gatewayURL(cfg)+"/health/ready", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// gatewayURL returns the base URL of the running gateway.
// Priority: HERALD_GATEWAY_URL env var > https://<tailscale hostname> > http://<http_addr>
func gatewayURL(cfg *config.Config) string {
	if envURL := os.Getenv("HERALD_GATEWAY_URL"); envURL != "" {
		return envURL
	}
	if cfg.Tailscale.Enabled {
		return "https://" + cfg.Tailscale.Hostname
	}
	return "http://" + cfg.Server.HTTPAddr
}
