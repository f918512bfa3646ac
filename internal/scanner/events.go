package scanner

import "github.com/harrison/txtmerge/internal/models"

// EventKind identifies the variant carried by an Event
type EventKind int

const (
	// EventProgress reports that one file was summarized.
	EventProgress EventKind = iota
	// EventFileError reports a per-file read failure; the run continues.
	EventFileError
	// EventCompleted carries the finished table; always the last event of a successful run.
	EventCompleted
	// EventFailed reports a run-terminating error; always the last event of a failed run.
	EventFailed
	// EventCancelled carries the partial table accumulated before cancellation took effect.
	EventCancelled
)

// String returns the string representation of EventKind.
func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventFileError:
		return "file_error"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsFinal reports whether the kind ends the event stream of a run
func (k EventKind) IsFinal() bool {
	return k == EventCompleted || k == EventFailed || k == EventCancelled
}

// Event is a single notification emitted by the worker.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind       EventKind
	Percent    int                // Progress: floor(Index/Total*100)
	FileName   string             // Progress: base name of the processed file
	Index      int                // Progress: 1-indexed position in discovery order
	Total      int                // Number of discovered files
	Err        error              // FileError and Failed
	Table      models.ResultTable // Completed and Cancelled
	FileErrors int                // Final events: number of FileError events emitted
}

// Percent computes the integer completion percentage for a 1-indexed position.
func Percent(index, total int) int {
	if total <= 0 {
		return 0
	}
	p := index * 100 / total
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p
}
