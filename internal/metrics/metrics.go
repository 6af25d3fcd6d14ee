// ABOUTME: Prometheus metrics for tool dispatches and tenant client caches.
// ABOUTME: Metrics implements tools.Observer so the registry feeds it directly.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389/herald-gateway/internal/platform"
	"github.com/2389/herald-gateway/internal/tools"
)

const namespace = "herald"

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool dispatches by outcome",
			},
			[]string{"tool", "outcome"},
		),
		ToolCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Duration of tool dispatches in seconds, remote calls included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
	}

	registry.MustRegister(
		m.ToolCallsTotal,
		m.ToolCallDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveCall implements tools.Observer.
func (m *Metrics) ObserveCall(rec tools.CallRecord) {
	m.ToolCallsTotal.WithLabelValues(rec.Tool, string(platform.Classify(rec.Err))).Inc()
	m.ToolCallDuration.WithLabelValues(rec.Tool).Observe(rec.Duration.Seconds())
}

// TrackTenants exports the number of cached clients for one platform as
// herald_tenant_clients{platform="..."}. count is sampled on every scrape.
func (m *Metrics) TrackTenants(platformName string, count func() int) error {
	return m.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "tenant_clients",
			Help:        "Number of tenant clients cached per platform",
			ConstLabels: prometheus.Labels{"platform": platformName},
		},
		func() float64 { return float64(count()) },
	))
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
