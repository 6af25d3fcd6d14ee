// ABOUTME: Operator commands: token issuing, static token hashing, and a small API client
// ABOUTME: tools and call talk to a running gateway using $HERALD_TOKEN as the bearer token

package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/config"
	"github.com/2389/herald-gateway/internal/gateway"
)

// defaultTokenTTL is the lifetime of tokens issued by the token command.
const defaultTokenTTL = 30 * 24 * time.Hour

// runToken issues a capability JWT signed with the configured secret.
func runToken(args []string) error {
	flags, rest, err := parseFlags(args, "principal", "caps", "ttl")
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}
	principal := strings.TrimSpace(flags["principal"])
	if principal == "" {
		return errors.New("--principal flag is required")
	}

	ttl := defaultTokenTTL
	if raw := flags["ttl"]; raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("--ttl must be a positive duration, got %q", raw)
		}
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured; use hash-token for static tokens")
	}

	issuer, err := auth.NewJWTValidator([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	caps := splitList(flags["caps"])
	token, err := issuer.Issue(principal, caps, ttl)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}

	gray := color.New(color.FgHiBlack)
	gray.Fprintf(os.Stderr, "principal: %s\ncapabilities: %s\nexpires: %s\n",
		principal, strings.Join(caps, ", "), time.Now().Add(ttl).Format(time.RFC3339))
	fmt.Println(token)
	return nil
}

// runHashToken prints the bcrypt hash of a static token, generating one when none is given.
func runHashToken(args []string) error {
	_, rest, err := parseFlags(args)
	if err != nil {
		return err
	}

	var token string
	switch len(rest) {
	case 0:
		token, err = randomToken()
		if err != nil {
			return err
		}
		fmt.Printf("token:      %s\n", token)
	case 1:
		token = rest[0]
	default:
		return errors.New("hash-token takes at most one argument")
	}

	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}
	fmt.Printf("token_hash: %q\n", hash)
	return nil
}

// randomToken returns 32 random bytes, URL-safe base64 encoded.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// apiClient talks to the gateway's REST API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(tokenFlag string) (*apiClient, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	token := tokenFlag
	if token == "" {
		token = os.Getenv("HERALD_TOKEN")
	}
	return &apiClient{
		baseURL: strings.TrimSuffix(gatewayURL(cfg), "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// do sends a request and decodes the JSON response into out. API errors become Go errors.
func (c *apiClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr gateway.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (%d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}

// runTools lists the tools visible to the caller's token.
func runTools(ctx context.Context, args []string) error {
	flags, _, err := parseFlags(args, "token")
	if err != nil {
		return err
	}
	client, err := newAPIClient(flags["token"])
	if err != nil {
		return err
	}

	var resp gateway.ListToolsResponse
	if err := client.do(ctx, http.MethodGet, "/api/tools", nil, &resp); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tCAPABILITY\tDESCRIPTION")
	for _, t := range resp.Tools {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.RequiredCapability, t.Description)
	}
	return w.Flush()
}

// runCall invokes one tool and prints the JSON result.
func runCall(ctx context.Context, args []string) error {
	flags, rest, err := parseFlags(args, "tenant", "args", "token")
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("usage: herald-gateway call NAME --tenant ID [--args JSON]")
	}
	name := rest[0]

	callArgs := map[string]any{}
	if raw := flags["args"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &callArgs); err != nil {
			return fmt.Errorf("--args must be a JSON object: %w", err)
		}
	}
	if tenant := flags["tenant"]; tenant != "" {
		callArgs["tenant_id"] = tenant
	}
	body, err := json.Marshal(callArgs)
	if err != nil {
		return err
	}

	client, err := newAPIClient(flags["token"])
	if err != nil {
		return err
	}
	var resp gateway.CallToolResponse
	if err := client.do(ctx, http.MethodPost, "/api/tools/"+name, body, &resp); err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
