// Package scanner discovers text files under a root directory and summarizes
// each one into a models.FileRecord.
//
// A Summarizer is the background worker of a run: it never touches the
// terminal or writes files, it only emits Events on a channel that it closes
// when it is done. Events arrive in discovery order and the final event
// (Completed, Failed or Cancelled) is always the last one sent.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/harrison/txtmerge/internal/fileutil"
	"github.com/harrison/txtmerge/internal/models"
)

// DefaultPace is the pause between files. It only paces visible progress.
const DefaultPace = 10 * time.Millisecond

// DefaultExtensions lists the extensions summarized when none are configured.
var DefaultExtensions = []string{".txt"}

// Warner receives non-fatal discovery warnings such as unreadable subdirectories.
type Warner interface {
	LogWarn(message string)
}

// Options configures a Summarizer
type Options struct {
	// Extensions to include, matched case-insensitively (default: .txt)
	Extensions []string
	// ExcludeDirs lists directory names that are never descended into
	ExcludeDirs []string
	// SkipHidden skips dot-directories during discovery
	SkipHidden bool
	// Pace is the delay after each file (0 disables it)
	Pace time.Duration
	// Warner receives discovery warnings (optional)
	Warner Warner
}

// Summarizer produces a ResultTable from a directory tree.
// It holds no per-run state, so one Summarizer can serve consecutive runs.
type Summarizer struct {
	opts     Options
	readFile func(string) ([]byte, error)
}

// New creates a Summarizer. Missing extensions default to DefaultExtensions.
func New(opts Options) *Summarizer {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Pace < 0 {
		opts.Pace = 0
	}
	return &Summarizer{
		opts:     opts,
		readFile: os.ReadFile,
	}
}

// Run scans root and sends events until the run ends, then closes events.
// ctx is the cancellation token: it is checked once before each file and
// never interrupts a read in progress. Cancellation is not an error; the
// records gathered so far are delivered in an EventCancelled.
func (s *Summarizer) Run(ctx context.Context, root string, events chan<- Event) {
	defer close(events)

	scan, err := fileutil.ScanDirectory(root, fileutil.ScanOptions{
		Extensions:  s.opts.Extensions,
		Recursive:   true,
		ExcludeDirs: s.opts.ExcludeDirs,
		SkipHidden:  s.opts.SkipHidden,
	})
	if err != nil {
		events <- Event{Kind: EventFailed, Err: &DiscoveryError{Root: root, Err: err}}
		return
	}

	if s.opts.Warner != nil {
		for _, walkErr := range scan.Errors {
			s.opts.Warner.LogWarn(fmt.Sprintf("Skipped during discovery: %v", walkErr))
		}
	}

	total := len(scan.Files)
	records := make([]models.FileRecord, 0, total)
	fileErrors := 0
	cancelled := false

	for i, path := range scan.Files {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		index := i + 1
		name := filepath.Base(path)

		record, err := s.summarize(root, path)
		if err != nil {
			fileErrors++
			events <- Event{
				Kind:     EventFileError,
				FileName: name,
				Index:    index,
				Total:    total,
				Err:      err,
			}
		} else {
			records = append(records, record)
			events <- Event{
				Kind:     EventProgress,
				Percent:  Percent(index, total),
				FileName: name,
				Index:    index,
				Total:    total,
			}
		}

		s.pause(ctx)
	}

	table := models.NewResultTable(records)

	switch {
	case cancelled:
		events <- Event{Kind: EventCancelled, Table: table, Total: total, FileErrors: fileErrors}
	case table.IsEmpty():
		events <- Event{Kind: EventFailed, Err: ErrNoData, Total: total, FileErrors: fileErrors}
	default:
		events <- Event{Kind: EventCompleted, Table: table, Total: total, FileErrors: fileErrors}
	}
}

// summarize reads one file as UTF-8 and builds its record
func (s *Summarizer) summarize(root, path string) (models.FileRecord, error) {
	data, err := s.readFile(path)
	if err != nil {
		return models.FileRecord{}, &FileReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return models.FileRecord{}, &FileReadError{Path: path, Err: ErrInvalidEncoding}
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	return models.NewFileRecord(filepath.Base(path), rel, string(data)), nil
}

// pause waits for the configured pace, returning early if ctx is done
func (s *Summarizer) pause(ctx context.Context) {
	if s.opts.Pace <= 0 {
		return
	}
	timer := time.NewTimer(s.opts.Pace)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
