// Package metrics exports Prometheus metrics for tool dispatches and tenant caches.
package metrics
