// ABOUTME: Minimal JSON-over-HTTP client shared by the REST platform clients.
// ABOUTME: Non-2xx responses become *RemoteError carrying the upstream message.

package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2"
)

// maxResponseBody bounds how much of an upstream response is read.
const maxResponseBody = 4 << 20

// maxUpstreamMessage bounds a raw upstream body used as an error message.
const maxUpstreamMessage = 200

// DefaultHTTPTimeout applies when no timeout is configured.
const DefaultHTTPTimeout = 30 * time.Second

// Request describes one API call.
type Request struct {
	Op     string // operation name used in errors, e.g. "get_user"
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// JSONClient sends JSON requests to one API base URL.
type JSONClient struct {
	Platform string
	BaseURL  string
	HTTP     *http.Client
	Header   http.Header // sent with every request
}

// Do sends the request and decodes a 2xx JSON response into out (when non-nil).
func (c *JSONClient) Do(ctx context.Context, req Request, out any) (http.Header, error) {
	u := strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", req.Op, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", req.Op, err)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &RemoteError{Platform: c.Platform, Op: req.Op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &RemoteError{Platform: c.Platform, Op: req.Op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{
			Platform:   c.Platform,
			Op:         req.Op,
			StatusCode: resp.StatusCode,
			Message:    UpstreamMessage(data, resp.StatusCode),
		}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, &RemoteError{
				Platform:   c.Platform,
				Op:         req.Op,
				StatusCode: resp.StatusCode,
				Message:    "malformed response body",
				Err:        err,
			}
		}
	}

	return resp.Header, nil
}

// errorEnvelope covers the error shapes of the Graph API, Twitter v2, LinkedIn,
// and the Matrix client-server API.
type errorEnvelope struct {
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Errors           []struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Title   string `json:"title"`
	} `json:"errors"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Title   string `json:"title"`
}

// UpstreamMessage extracts the most specific error message from a response body.
func UpstreamMessage(body []byte, status int) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if len(env.Error) > 0 {
			var obj struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(env.Error, &obj) == nil && obj.Message != "" {
				return obj.Message
			}
			var s string
			if json.Unmarshal(env.Error, &s) == nil && s != "" {
				if env.ErrorDescription != "" {
					return s + ": " + env.ErrorDescription
				}
				return s
			}
		}
		for _, e := range env.Errors {
			for _, m := range []string{e.Detail, e.Message, e.Title} {
				if m != "" {
					return m
				}
			}
		}
		for _, m := range []string{env.Detail, env.Message, env.Title} {
			if m != "" {
				return m
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	return truncate(text, maxUpstreamMessage)
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// NewHTTPClient returns a plain client with the given timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// BearerClient wraps base so every request carries the access token.
func BearerClient(base *http.Client, accessToken string) *http.Client {
	if base == nil {
		base = NewHTTPClient(0)
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = base.Timeout
	return client
}
