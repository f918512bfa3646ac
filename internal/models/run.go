package models

import "time"

// RunState is the lifecycle state of a single scan-and-summarize run
type RunState string

// Run state constants
const (
	RunIdle      RunState = "idle"      // No run has been started
	RunRunning   RunState = "running"   // Worker is discovering or reading files
	RunCompleted RunState = "completed" // Table was produced and exported
	RunFailed    RunState = "failed"    // Run ended with a run-terminating error
	RunCancelled RunState = "cancelled" // Cancellation was requested and the worker stopped
)

// String returns the state name
func (s RunState) String() string {
	return string(s)
}

// IsTerminal reports whether the state ends a run
func (s RunState) IsTerminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunCancelled:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is a known state
func (s RunState) IsValid() bool {
	switch s {
	case RunIdle, RunRunning, RunCompleted, RunFailed, RunCancelled:
		return true
	default:
		return false
	}
}

// RunResult represents the outcome of one run
type RunResult struct {
	ID         string    // Unique run identifier
	Root       string    // Scanned root directory
	State      RunState  // Final (or current) state
	Discovered int       // Number of candidate files discovered
	Processed  int       // Number of records produced
	FileErrors int       // Number of per-file read failures
	OutputPath string    // Exported spreadsheet path, empty unless completed
	Err        error     // Run-terminating error, nil unless failed
	StartedAt  time.Time // When the run was started
	FinishedAt time.Time // When the run reached a terminal state
}

// Duration returns how long the run took, or zero if it has not finished
func (r RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ErrorMessage returns the run error text or an empty string
func (r RunResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
