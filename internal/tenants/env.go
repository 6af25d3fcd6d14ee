// ABOUTME: Helpers for deriving tenant credentials from environment variables.
// ABOUTME: Keys are PREFIX_<TENANT> with the tenant id upper-cased and sanitized.

package tenants

import (
	"os"
	"strings"
)

// LookupFunc reads one variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// OSLookup reads from the process environment.
var OSLookup LookupFunc = os.LookupEnv

// EnvKey builds the variable name for a tenant: "FB_ACCESS_TOKEN" and "acme-corp"
// give "FB_ACCESS_TOKEN_ACME_CORP".
func EnvKey(prefix, tenantID string) string {
	var b strings.Builder
	b.Grow(len(prefix) + 1 + len(tenantID))
	b.WriteString(prefix)
	b.WriteByte('_')
	for _, r := range strings.ToUpper(tenantID) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Get returns the trimmed value of PREFIX_<TENANT>, or "".
func (f LookupFunc) Get(prefix, tenantID string) string {
	if f == nil {
		return ""
	}
	v, _ := f(EnvKey(prefix, tenantID))
	return strings.TrimSpace(v)
}

// MapLookup returns a LookupFunc over a fixed map, for tests and config-provided env.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
