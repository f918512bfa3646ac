package scanner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData is reported when a run produced no records, either because no
// candidate files were discovered or because none of them could be read.
var ErrNoData = errors.New("no valid text files found")

// ErrInvalidEncoding is wrapped by FileReadError when a file is not valid UTF-8.
var ErrInvalidEncoding = errors.New("content is not valid UTF-8")

// DiscoveryError represents a failure to enumerate the scan root.
// It terminates the run.
type DiscoveryError struct {
	Root string // Scan root that could not be enumerated
	Err  error  // Underlying error
}

// Error implements the error interface for DiscoveryError.
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed for %s: %v", e.Root, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// FileReadError represents a single file that could not be read or decoded.
// It is recovered locally: the file is skipped and the run continues.
type FileReadError struct {
	Path string // Path of the unreadable file
	Err  error  // Underlying error
}

// Error implements the error interface for FileReadError.
func (e *FileReadError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("file %s read failed", e.Path))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *FileReadError) Unwrap() error {
	return e.Err
}

// IsFileReadError reports whether err is or wraps a FileReadError.
func IsFileReadError(err error) bool {
	var fre *FileReadError
	return errors.As(err, &fre)
}

// IsDiscoveryError reports whether err is or wraps a DiscoveryError.
func IsDiscoveryError(err error) bool {
	var de *DiscoveryError
	return errors.As(err, &de)
}
