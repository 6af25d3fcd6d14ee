// ABOUTME: Tests for bearer token extraction and the optional claims middleware
// ABOUTME: Uses httptest recorders with a stub validator

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header    string
		wantToken string
		wantErr   string
	}{
		{header: "", wantErr: "missing authorization header"},
		{header: "Basic abc", wantErr: "invalid authorization header format"},
		{header: "Bearer ", wantErr: "empty token"},
		{header: "Bearer abc123", wantToken: "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, errMsg := extractBearerToken(tt.header)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantErr, errMsg)
		})
	}
}

func TestOptionalClaims(t *testing.T) {
	v := ValidatorFunc(func(token string) (*Claims, error) {
		if token == "good" {
			return &Claims{PrincipalID: "agent-1"}, nil
		}
		return nil, ErrInvalidToken
	})

	var seen *Claims
	handler := OptionalClaims(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name      string
		header    string
		wantClaim bool
	}{
		{name: "no header", header: ""},
		{name: "invalid token", header: "Bearer bad"},
		{name: "valid token", header: "Bearer good", wantClaim: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			if tt.wantClaim {
				if assert.NotNil(t, seen) {
					assert.Equal(t, "agent-1", seen.PrincipalID)
				}
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}
