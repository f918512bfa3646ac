// Package controller owns the lifecycle of summarization runs.
//
// A Controller starts at most one run at a time. Each run has one worker
// goroutine (the Summarizer) and one pump goroutine that consumes the
// worker's events in order, updates the presenter and logs, and, once the
// worker has stopped, exports the table and records the outcome. The only
// state shared with the worker is the run context used as its cancellation
// token.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/txtmerge/internal/export"
	"github.com/harrison/txtmerge/internal/filelock"
	"github.com/harrison/txtmerge/internal/logger"
	"github.com/harrison/txtmerge/internal/models"
	"github.com/harrison/txtmerge/internal/scanner"
)

// eventBuffer bounds how far the worker may run ahead of the pump
const eventBuffer = 16

// Summarizer is the background worker of a run.
// Run must close events when it returns.
type Summarizer interface {
	Run(ctx context.Context, root string, events chan<- scanner.Event)
}

// Exporter persists a finished table to path.
type Exporter interface {
	Export(table models.ResultTable, path string) error
}

// Opener opens an exported file with the platform's default application.
type Opener interface {
	Open(path string) error
}

// Presenter receives the user-visible notifications of a run.
type Presenter interface {
	Reset()
	Progress(percent int, fileName string)
	Completed(outputPath string)
	Error(message string)
}

// Recorder stores finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, result models.RunResult) error
}

// Locker guards a single active run across processes.
type Locker interface {
	Acquire() error
	Release() error
}

// Deps bundles the collaborators of a Controller.
// Summarizer and Exporter are required; the rest may be nil.
type Deps struct {
	Summarizer Summarizer
	Exporter   Exporter
	Opener     Opener
	Presenter  Presenter
	Logger     logger.RunLogger
	Recorder   Recorder
	Locker     Locker
}

// Options configures output naming and post-export behavior
type Options struct {
	OutputDir       string           // Directory created inside the scanned root
	FilePrefix      string           // Workbook name prefix
	OpenAfterExport bool             // Open the workbook after a successful export
	Now             func() time.Time // Clock for run timestamps and file names
}

// Controller mediates between user intent and the worker.
type Controller struct {
	deps Deps
	opts Options

	mu     sync.Mutex
	state  models.RunState
	cancel context.CancelFunc
	done   chan struct{}
	result models.RunResult
}

// New creates an idle Controller
func New(deps Deps, opts Options) (*Controller, error) {
	if deps.Summarizer == nil {
		return nil, fmt.Errorf("summarizer is required")
	}
	if deps.Exporter == nil {
		return nil, fmt.Errorf("exporter is required")
	}
	if deps.Presenter == nil {
		deps.Presenter = nopPresenter{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = export.DefaultDirName
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = export.DefaultFilePrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		deps:  deps,
		opts:  opts,
		state: models.RunIdle,
	}, nil
}

// State returns the current run state
func (c *Controller) State() models.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns a snapshot of the current or last run
func (c *Controller) Result() models.RunResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Start begins a run over root. It returns ErrAlreadyRunning if a run is
// active; otherwise the worker starts in the background and Start returns
// immediately. Cancelling ctx cancels the run.
func (c *Controller) Start(ctx context.Context, root string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == models.RunRunning {
		return fmt.Errorf("start %s: %w", root, ErrAlreadyRunning)
	}

	if c.deps.Locker != nil {
		if err := c.deps.Locker.Acquire(); err != nil {
			if errors.Is(err, filelock.ErrLocked) {
				return fmt.Errorf("start %s: %w (held by another process)", root, ErrAlreadyRunning)
			}
			return fmt.Errorf("acquire run lock: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.state = models.RunRunning
	c.cancel = cancel
	c.done = done
	c.result = models.RunResult{
		ID:        uuid.New().String(),
		Root:      root,
		State:     models.RunRunning,
		StartedAt: c.opts.Now(),
	}

	c.deps.Presenter.Reset()
	c.deps.Logger.LogRunStart(root)

	events := make(chan scanner.Event, eventBuffer)
	go c.deps.Summarizer.Run(runCtx, root, events)
	go c.pump(root, events, cancel, done)

	return nil
}

// Cancel requests cooperative cancellation of the active run.
// It does not wait; use Wait to block until the worker has stopped.
// Returns false if no run was active.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != models.RunRunning || c.cancel == nil {
		return false
	}
	c.cancel()
	c.deps.Logger.LogInfo("Cancellation requested, waiting for the current file to finish")
	return true
}

// Wait blocks until the active run (if any) has fully stopped and returns its result.
func (c *Controller) Wait() models.RunResult {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	return c.Result()
}

// Shutdown decides whether the program may exit. With no active run it
// returns true. Otherwise confirm is asked; on refusal Shutdown returns
// false and the run continues, on confirmation the run is cancelled and
// Shutdown blocks until the worker has stopped.
func (c *Controller) Shutdown(confirm func() bool) bool {
	if c.State() != models.RunRunning {
		return true
	}
	if confirm != nil && !confirm() {
		return false
	}
	c.Cancel()
	c.Wait()
	return true
}

// pump consumes worker events in order. The final event is acted on only
// after the worker closed the channel, so the run is never reported as
// finished while the worker is still alive.
func (c *Controller) pump(root string, events <-chan scanner.Event, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()

	var final *scanner.Event
	for ev := range events {
		switch ev.Kind {
		case scanner.EventProgress:
			c.update(func(r *models.RunResult) {
				r.Discovered = ev.Total
				r.Processed++
			})
			c.deps.Presenter.Progress(ev.Percent, ev.FileName)
			c.deps.Logger.LogFileProcessed(ev.Percent, ev.FileName)
		case scanner.EventFileError:
			c.update(func(r *models.RunResult) {
				r.Discovered = ev.Total
				r.FileErrors++
			})
			c.deps.Logger.LogFileError(ev.Err)
		default:
			last := ev
			final = &last
		}
	}

	state, outputPath, runErr := c.finish(root, final)

	c.mu.Lock()
	c.result.State = state
	c.result.OutputPath = outputPath
	c.result.Err = runErr
	c.result.FinishedAt = c.opts.Now()
	result := c.result
	c.mu.Unlock()

	c.deps.Logger.LogSummary(result)

	if c.deps.Recorder != nil {
		if err := c.deps.Recorder.RecordRun(context.Background(), result); err != nil {
			c.deps.Logger.LogWarn(fmt.Sprintf("Failed to record run history: %v", err))
		}
	}
	if c.deps.Locker != nil {
		if err := c.deps.Locker.Release(); err != nil {
			c.deps.Logger.LogWarn(fmt.Sprintf("Failed to release run lock: %v", err))
		}
	}

	// A new run may start only once this one is fully wound down
	c.mu.Lock()
	c.state = state
	c.cancel = nil
	c.mu.Unlock()
}

// finish handles the final event and returns the terminal state
func (c *Controller) finish(root string, final *scanner.Event) (models.RunState, string, error) {
	if final == nil {
		return c.fail(errNoFinalEvent)
	}

	c.update(func(r *models.RunResult) {
		r.Discovered = final.Total
		r.Processed = final.Table.Len()
		r.FileErrors = final.FileErrors
	})

	switch final.Kind {
	case scanner.EventCompleted:
		return c.export(root, final.Table)
	case scanner.EventCancelled:
		c.deps.Logger.LogWarn(fmt.Sprintf("Run cancelled after %d file(s); nothing was exported", final.Table.Len()+final.FileErrors))
		return models.RunCancelled, "", nil
	default:
		err := final.Err
		if err == nil {
			err = errNoFinalEvent
		}
		return c.fail(err)
	}
}

// export writes the table and opens it on success
func (c *Controller) export(root string, table models.ResultTable) (models.RunState, string, error) {
	path := export.OutputPath(root, c.opts.OutputDir, c.opts.FilePrefix, c.opts.Now())

	if err := c.deps.Exporter.Export(table, path); err != nil {
		return c.fail(&ExportError{Path: path, Err: err})
	}

	c.deps.Logger.LogInfo(fmt.Sprintf("Processing complete! File saved to: %s", path))
	c.deps.Presenter.Completed(path)

	if c.opts.OpenAfterExport && c.deps.Opener != nil {
		if err := c.deps.Opener.Open(path); err != nil {
			c.deps.Logger.LogWarn(fmt.Sprintf("Could not open %s: %v", path, err))
		}
	}

	return models.RunCompleted, path, nil
}

// fail surfaces a run-terminating error
func (c *Controller) fail(err error) (models.RunState, string, error) {
	c.deps.Logger.LogError(fmt.Sprintf("Run failed (%s): %v", ErrorKind(err), err))
	c.deps.Presenter.Error(err.Error())
	return models.RunFailed, "", err
}

// update mutates the in-flight result under the lock
func (c *Controller) update(fn func(r *models.RunResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.result)
}

type nopPresenter struct{}

func (nopPresenter) Reset()               {}
func (nopPresenter) Progress(int, string) {}
func (nopPresenter) Completed(string)     {}
func (nopPresenter) Error(string)         {}
