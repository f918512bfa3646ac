package controller

import (
	"errors"
	"fmt"

	"github.com/harrison/txtmerge/internal/scanner"
)

// ErrAlreadyRunning is returned by Start while a run is active, in this
// process or (through the run lock) in another one. The active run is not affected.
var ErrAlreadyRunning = errors.New("a run is already in progress")

// errNoFinalEvent is reported if the worker stops without a final event.
var errNoFinalEvent = errors.New("worker stopped without reporting a result")

// ExportError represents a failure to create the output directory or
// serialize the table. It terminates the run after the worker succeeded.
type ExportError struct {
	Path string // Target workbook path
	Err  error  // Underlying error
}

// Error implements the error interface for ExportError.
func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies err into the run error taxonomy.
// Returns "already_running", "discovery", "no_data", "file_read", "export" or "unknown".
func ErrorKind(err error) string {
	var exportErr *ExportError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyRunning):
		return "already_running"
	case scanner.IsDiscoveryError(err):
		return "discovery"
	case errors.Is(err, scanner.ErrNoData):
		return "no_data"
	case scanner.IsFileReadError(err):
		return "file_read"
	case errors.As(err, &exportErr):
		return "export"
	default:
		return "unknown"
	}
}
