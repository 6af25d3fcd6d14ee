// ABOUTME: Call observation hooks for metrics and audit.
// ABOUTME: Observers see every dispatch after it completes and cannot alter results.

package tools

import "time"

// CallRecord describes one completed dispatch.
type CallRecord struct {
	Tool     string
	TenantID string
	Started  time.Time
	Duration time.Duration
	Err      error
}

// Observer is notified after every Call.
type Observer interface {
	ObserveCall(rec CallRecord)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(rec CallRecord)

// ObserveCall calls f(rec).
func (f ObserverFunc) ObserveCall(rec CallRecord) {
	f(rec)
}
