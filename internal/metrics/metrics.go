// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the import pipeline.
//
// The global backend defaults to a no-op implementation, so metric calls are
// always safe even when no real backend is configured. Concrete metric
// systems (Prometheus Pushgateway, Datadog) live in subpackages and are
// installed with SetBackend, mirroring the storage factory pattern.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordRun records one finished import run with its outcome and duration.
func RecordRun(entity string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"entity": entity,
		"status": status,
	}
	backend.IncCounter("import_runs_total", 1, lbls)
	backend.ObserveHistogram("import_run_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given entity and kind.
//
// Typical kinds mirror the import summary fields:
//   - "processed"
//   - "inserted"
//   - "updated"
//   - "failed"
func RecordRows(entity, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("import_records_total", float64(delta), Labels{
		"entity": entity,
		"kind":   kind,
	})
}
