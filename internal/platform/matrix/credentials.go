// ABOUTME: Matrix account credentials and the MATRIX_*_<TENANT> environment source.
// ABOUTME: Homeserver, user id, and access token are required; the default room is optional.

package matrix

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/2389/herald-gateway/internal/tenants"
)

// Credentials for one Matrix tenant.
type Credentials struct {
	Homeserver  string
	UserID      string
	AccessToken string
	DefaultRoom string
}

// Validate implements tenants.Credentials.
func (c Credentials) Validate() error {
	if c.Homeserver == "" {
		return errors.New("homeserver is required")
	}
	u, err := url.Parse(c.Homeserver)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("homeserver %q is not an http(s) URL", c.Homeserver)
	}
	if !strings.HasPrefix(c.UserID, "@") || !strings.Contains(c.UserID, ":") {
		return fmt.Errorf("user_id %q must look like @user:server", c.UserID)
	}
	if c.AccessToken == "" {
		return errors.New("access_token is required")
	}
	return nil
}

// EnvSource reads MATRIX_HOMESERVER_<TENANT>, MATRIX_USER_ID_<TENANT>,
// MATRIX_ACCESS_TOKEN_<TENANT> and MATRIX_ROOM_ID_<TENANT>.
func EnvSource(lookup tenants.LookupFunc) tenants.Source[Credentials] {
	return tenants.SourceFunc[Credentials](func(tenantID string) (Credentials, bool, error) {
		token := lookup.Get("MATRIX_ACCESS_TOKEN", tenantID)
		if token == "" {
			return Credentials{}, false, nil
		}
		return Credentials{
			Homeserver:  lookup.Get("MATRIX_HOMESERVER", tenantID),
			UserID:      lookup.Get("MATRIX_USER_ID", tenantID),
			AccessToken: token,
			DefaultRoom: lookup.Get("MATRIX_ROOM_ID", tenantID),
		}, true, nil
	})
}
