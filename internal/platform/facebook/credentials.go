// ABOUTME: Facebook Page credentials and the FB_*_<TENANT> environment source.
// ABOUTME: A page access token is required; the page id defaults to "me".

package facebook

import (
	"errors"
	"fmt"

	"github.com/2389/herald-gateway/internal/tenants"
)

// DefaultPageID addresses the page the token belongs to.
const DefaultPageID = "me"

// Credentials for one Facebook tenant.
type Credentials struct {
	AccessToken string
	PageID      string
}

// Validate implements tenants.Credentials.
func (c Credentials) Validate() error {
	if c.AccessToken == "" {
		return errors.New("access_token is required")
	}
	return nil
}

// Page returns the configured page id or DefaultPageID.
func (c Credentials) Page() string {
	if c.PageID == "" {
		return DefaultPageID
	}
	return c.PageID
}

// EnvSource reads FB_ACCESS_TOKEN_<TENANT> and FB_PAGE_ID_<TENANT>. Both must be set.
func EnvSource(lookup tenants.LookupFunc) tenants.Source[Credentials] {
	return tenants.SourceFunc[Credentials](func(tenantID string) (Credentials, bool, error) {
		token := lookup.Get("FB_ACCESS_TOKEN", tenantID)
		if token == "" {
			return Credentials{}, false, nil
		}
		pageID := lookup.Get("FB_PAGE_ID", tenantID)
		if pageID == "" {
			return Credentials{}, false, fmt.Errorf("%w: %s is not set", tenants.ErrInvalidCredentials, tenants.EnvKey("FB_PAGE_ID", tenantID))
		}
		return Credentials{AccessToken: token, PageID: pageID}, true, nil
	})
}
