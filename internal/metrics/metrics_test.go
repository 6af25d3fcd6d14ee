// ABOUTME: Tests for the Prometheus metrics observer and tenant gauges.
// ABOUTME: Uses prometheus/testutil to read collector values.

package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

func TestObserveCall_CountsByOutcome(t *testing.T) {
	m := New()

	m.ObserveCall(tools.CallRecord{Tool: "twitter.get_tweet", Duration: 20 * time.Millisecond})
	m.ObserveCall(tools.CallRecord{Tool: "twitter.get_tweet", Duration: 30 * time.Millisecond})
	m.ObserveCall(tools.CallRecord{Tool: "twitter.get_tweet", Err: auth.ErrMissingToken})
	m.ObserveCall(tools.CallRecord{Tool: "facebook.post_message", Err: tenants.ErrUnregisteredTenant})
	m.ObserveCall(tools.CallRecord{Tool: "facebook.post_message", Err: errors.New("boom")})

	assert.InDelta(t, 2, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("twitter.get_tweet", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("twitter.get_tweet", "unauthenticated")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("facebook.post_message", "unregistered_tenant")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("facebook.post_message", "internal_error")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.ToolCallDuration))
}

func TestTrackTenants(t *testing.T) {
	m := New()
	n := 3
	require.NoError(t, m.TrackTenants("twitter", func() int { return n }))
	require.NoError(t, m.TrackTenants("matrix", func() int { return 0 }))

	expected := `
# HELP herald_tenant_clients Number of tenant clients cached per platform
# TYPE herald_tenant_clients gauge
herald_tenant_clients{platform="matrix"} 0
herald_tenant_clients{platform="twitter"} 3
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "herald_tenant_clients"))

	// Registering the same platform twice is rejected.
	assert.Error(t, m.TrackTenants("twitter", func() int { return 1 }))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveCall(tools.CallRecord{Tool: "matrix.post_message"})

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `herald_tool_calls_total{outcome="ok",tool="matrix.post_message"} 1`)
}
