// ABOUTME: Instagram Business credentials and the IG_*_<TENANT> environment source.
// ABOUTME: The business account id is optional and can be passed per call instead.

package instagram

import (
	"errors"

	"github.com/2389/herald-gateway/internal/tenants"
)

// Credentials for one Instagram tenant.
type Credentials struct {
	AccessToken       string
	BusinessAccountID string
}

// Validate implements tenants.Credentials.
func (c Credentials) Validate() error {
	if c.AccessToken == "" {
		return errors.New("access_token is required")
	}
	return nil
}

// EnvSource reads IG_ACCESS_TOKEN_<TENANT> and IG_BUSINESS_ACCOUNT_ID_<TENANT>.
func EnvSource(lookup tenants.LookupFunc) tenants.Source[Credentials] {
	return tenants.SourceFunc[Credentials](func(tenantID string) (Credentials, bool, error) {
		token := lookup.Get("IG_ACCESS_TOKEN", tenantID)
		if token == "" {
			return Credentials{}, false, nil
		}
		return Credentials{
			AccessToken:       token,
			BusinessAccountID: lookup.Get("IG_BUSINESS_ACCOUNT_ID", tenantID),
		}, true, nil
	})
}
