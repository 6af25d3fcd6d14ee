// ABOUTME: LinkedIn member credentials and the LINKEDIN_*_<TENANT> environment source.
// ABOUTME: The author URN is optional; shares fall back to the token owner's person URN.

package linkedin

import (
	"errors"
	"strings"

	"github.com/2389/herald-gateway/internal/tenants"
)

// Credentials for one LinkedIn tenant.
type Credentials struct {
	AccessToken string
	AuthorURN   string
}

// Validate implements tenants.Credentials.
func (c Credentials) Validate() error {
	if c.AccessToken == "" {
		return errors.New("access_token is required")
	}
	if c.AuthorURN != "" && !strings.HasPrefix(c.AuthorURN, "urn:li:") {
		return errors.New("author_urn must be a urn:li: identifier")
	}
	return nil
}

// EnvSource reads LINKEDIN_ACCESS_TOKEN_<TENANT> and LINKEDIN_AUTHOR_URN_<TENANT>.
func EnvSource(lookup tenants.LookupFunc) tenants.Source[Credentials] {
	return tenants.SourceFunc[Credentials](func(tenantID string) (Credentials, bool, error) {
		token := lookup.Get("LINKEDIN_ACCESS_TOKEN", tenantID)
		if token == "" {
			return Credentials{}, false, nil
		}
		return Credentials{
			AccessToken: token,
			AuthorURN:   lookup.Get("LINKEDIN_AUTHOR_URN", tenantID),
		}, true, nil
	})
}
