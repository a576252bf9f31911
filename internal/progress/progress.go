// Package progress accumulates per-run import statistics: monotonic
// counters, a bounded FIFO sample of recent failures, and a throttle for
// progress reporting. Memory stays constant regardless of input size; the
// failed counter is the authoritative total, the sample is diagnostics only.
package progress

import (
	"math"
	"time"
)

// Status is the lifecycle state of an import run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Failure is one sampled per-record failure.
type Failure struct {
	Row     int    `json:"row"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

// Failure types recorded by the import pipeline.
const (
	FailureValidation = "validation"
	FailureWrite      = "write"
	FailurePanic      = "panic"
)

// Tracker accumulates the statistics of one import run. Not safe for
// concurrent use; the import pipeline is sequential.
type Tracker struct {
	processed int
	succeeded int
	inserted  int
	updated   int
	failed    int

	recent    []Failure // ring buffer; head marks the oldest entry once full
	head      int
	recentCap int

	reportEvery  int
	lastReported int

	status    Status
	startedAt time.Time
	duration  time.Duration
	fatal     string
}

// New returns a running Tracker. recentCap bounds the failure sample and
// reportEvery throttles ShouldReportProgress; non-positive values get the
// defaults (50 and 1000).
func New(recentCap, reportEvery int) *Tracker {
	if recentCap <= 0 {
		recentCap = 50
	}
	if reportEvery <= 0 {
		reportEvery = 1000
	}
	return &Tracker{
		recentCap:   recentCap,
		reportEvery: reportEvery,
		status:      StatusRunning,
		startedAt:   time.Now(),
	}
}

// RecordProcessed counts one record pulled from the source.
func (t *Tracker) RecordProcessed() { t.processed++ }

// RecordSuccess counts one record written without error.
func (t *Tracker) RecordSuccess() { t.succeeded++ }

// RecordInsert counts one insert outcome.
func (t *Tracker) RecordInsert() { t.inserted++ }

// RecordUpdate counts one update outcome.
func (t *Tracker) RecordUpdate() { t.updated++ }

// RecordFailure counts one failed record and appends it to the recent
// sample, evicting the oldest entry once the cap is reached. The sample is a
// fixed-size ring, so post-cap failures overwrite in place instead of
// shifting the slice.
func (t *Tracker) RecordFailure(row int, failureType, details string) {
	t.failed++
	f := Failure{Row: row, Type: failureType, Details: details}
	if len(t.recent) < t.recentCap {
		t.recent = append(t.recent, f)
		return
	}
	t.recent[t.head] = f
	t.head = (t.head + 1) % t.recentCap
}

// ShouldReportProgress reports whether enough records have been processed
// since the last report to warrant another one, and arms the next interval
// when it returns true.
func (t *Tracker) ShouldReportProgress() bool {
	if t.processed-t.lastReported < t.reportEvery {
		return false
	}
	t.lastReported = t.processed
	return true
}

// Complete freezes the tracker with completed status.
func (t *Tracker) Complete() {
	t.status = StatusCompleted
	t.duration = time.Since(t.startedAt)
}

// Fail freezes the tracker with failed status and the fatal error message.
func (t *Tracker) Fail(msg string) {
	t.status = StatusFailed
	t.fatal = msg
	t.duration = time.Since(t.startedAt)
}

// Stats is a point-in-time snapshot of a Tracker.
type Stats struct {
	Processed int           `json:"total_processed"`
	Succeeded int           `json:"successful"`
	Inserted  int           `json:"inserted"`
	Updated   int           `json:"updated"`
	Failed    int           `json:"failed"`
	Status    Status        `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration,omitempty"`
	Fatal     string        `json:"fatal_error,omitempty"`
	Recent    []Failure     `json:"recent_errors"`
}

// SuccessRate returns the percentage of processed records that succeeded,
// rounded to two decimals. A run with nothing processed rates 0.
func (s Stats) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return math.Round(float64(s.Succeeded)/float64(s.Processed)*100*100) / 100
}

// Snapshot returns a copy of the current counters and the recent-failure
// sample in oldest-first order. The copy is detached; later tracker
// mutations do not affect it.
func (t *Tracker) Snapshot() Stats {
	recent := make([]Failure, len(t.recent))
	n := copy(recent, t.recent[t.head:])
	copy(recent[n:], t.recent[:t.head])
	return Stats{
		Processed: t.processed,
		Succeeded: t.succeeded,
		Inserted:  t.inserted,
		Updated:   t.updated,
		Failed:    t.failed,
		Status:    t.status,
		StartedAt: t.startedAt,
		Duration:  t.duration,
		Fatal:     t.fatal,
		Recent:    recent,
	}
}
