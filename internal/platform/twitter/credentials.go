// ABOUTME: Twitter credentials: app-only bearer token or the OAuth1 user-context quadruple.
// ABOUTME: EnvSource derives credentials from TWITTER_*_<TENANT> variables.

package twitter

import (
	"errors"

	"github.com/2389/herald-gateway/internal/tenants"
)

// minBearerTokenLength rejects obviously truncated bearer tokens.
const minBearerTokenLength = 10

// AuthMode is how a handle authenticates to the API.
type AuthMode string

// Authentication modes
const (
	AuthModeBearer AuthMode = "bearer"
	AuthModeOAuth1 AuthMode = "oauth1"
)

// Credentials for one Twitter tenant. Either BearerToken or all four OAuth1 fields
// must be set. When both are present OAuth1 is used, since posting needs user context.
type Credentials struct {
	BearerToken  string
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// HasOAuth1 reports whether all four OAuth1 fields are present.
func (c Credentials) HasOAuth1() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// Mode returns the authentication mode the credentials select.
func (c Credentials) Mode() AuthMode {
	if c.HasOAuth1() {
		return AuthModeOAuth1
	}
	return AuthModeBearer
}

// Validate implements tenants.Credentials.
func (c Credentials) Validate() error {
	if c.HasOAuth1() {
		return nil
	}
	if c.BearerToken != "" {
		if len(c.BearerToken) < minBearerTokenLength {
			return errors.New("bearer token seems too short")
		}
		return nil
	}
	if c.APIKey != "" || c.APISecret != "" || c.AccessToken != "" || c.AccessSecret != "" {
		return errors.New("oauth1 requires api_key, api_secret, access_token and access_secret")
	}
	return errors.New("bearer_token or oauth1 credentials are required")
}

// EnvSource reads TWITTER_BEARER_TOKEN_<TENANT> and the TWITTER_API_KEY_,
// TWITTER_API_SECRET_, TWITTER_ACCESS_TOKEN_ and TWITTER_ACCESS_SECRET_ variables.
func EnvSource(lookup tenants.LookupFunc) tenants.Source[Credentials] {
	return tenants.SourceFunc[Credentials](func(tenantID string) (Credentials, bool, error) {
		creds := Credentials{
			BearerToken:  lookup.Get("TWITTER_BEARER_TOKEN", tenantID),
			APIKey:       lookup.Get("TWITTER_API_KEY", tenantID),
			APISecret:    lookup.Get("TWITTER_API_SECRET", tenantID),
			AccessToken:  lookup.Get("TWITTER_ACCESS_TOKEN", tenantID),
			AccessSecret: lookup.Get("TWITTER_ACCESS_SECRET", tenantID),
		}
		if creds == (Credentials{}) {
			return Credentials{}, false, nil
		}
		return creds, true, nil
	})
}
