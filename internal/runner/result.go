package runner

import (
	"time"
)

// Status is the outcome of one unit operation.
type Status string

const (
	// StatusSuccess means the command ran and exited zero.
	StatusSuccess Status = "success"
	// StatusFailed means the command failed, could not be started,
	// timed out, or was canceled.
	StatusFailed Status = "failed"
	// StatusSkipped means the skip predicate held and no command ran.
	StatusSkipped Status = "skipped"
)

// Failure reason codes. A spawn failure (binary not found, permission
// denied) is deliberately distinct from a normal non-zero exit.
const (
	ReasonExit     = "non-zero exit"
	ReasonSpawn    = "failed to start"
	ReasonTimeout  = "timed out"
	ReasonCanceled = "canceled"
)

// Result records one unit's outcome for one operation. A failing
// command is represented as data here, never as a raised error.
type Result struct {
	Unit      string
	Operation string
	Status    Status
	Reason    string // Skip reason or failure reason code, "" on success
	ExitCode  int    // Meaningful only when Reason == ReasonExit
	Output    string // Captured combined stdout/stderr, for diagnostics
	Duration  time.Duration
}

// Outcome is the aggregate of one batch: every unit's result in
// manifest order.
type Outcome struct {
	Operation string
	Results   []Result
}

// Failed reports whether any constituent result failed. An outcome is
// never successful while a constituent result is failed; skipped
// results do not count against success.
func (o *Outcome) Failed() bool {
	for _, r := range o.Results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Counts returns the number of succeeded, failed, and skipped results.
func (o *Outcome) Counts() (succeeded, failed, skipped int) {
	for _, r := range o.Results {
		switch r.Status {
		case StatusSuccess:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}
