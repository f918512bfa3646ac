package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/harrison/txtmerge/internal/config"
	"github.com/harrison/txtmerge/internal/controller"
	"github.com/harrison/txtmerge/internal/filelock"
	"github.com/harrison/txtmerge/internal/history"
	"github.com/harrison/txtmerge/internal/logger"
	"github.com/harrison/txtmerge/internal/models"
	"github.com/harrison/txtmerge/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns combined output
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// isolate points the txtmerge home at a fresh temp dir
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)
	return home
}

func textDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestRootCommand(t *testing.T) {
	out, err := execute(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "txtmerge")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "history")

	cmd := NewRootCommand()
	names := []string{}
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "history"}, names)
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestRunCommand_WritesWorkbookAndHistory(t *testing.T) {
	home := isolate(t)
	dir := textDir(t, map[string]string{
		"a.txt":     "hello",
		"sub/b.txt": strings.Repeat("b", 150),
		"skip.md":   "not text for us",
	})
	logDir := filepath.Join(t.TempDir(), "logs")

	out, err := execute(t, "", "run", dir, "--no-open", "--pace", "0", "--log-dir", logDir)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Processing complete! File saved to:")
	matches, err := filepath.Glob(filepath.Join(dir, "processing-results", "merged-data_*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	logs, err := filepath.Glob(filepath.Join(logDir, "run-*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	store, err := history.NewStore(filepath.Join(home, "history.db"))
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListRuns(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunCompleted, runs[0].State)
	assert.Equal(t, 2, runs[0].Processed)
	assert.Equal(t, matches[0], runs[0].OutputPath)

	out, err = execute(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Run History (1)")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, dir)
}

func TestRunCommand_NoData(t *testing.T) {
	isolate(t)
	dir := textDir(t, nil)

	out, err := execute(t, "", "run", dir, "--no-open", "--pace", "0", "--log-dir", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid text files found")
	assert.Contains(t, out, "Error")

	_, statErr := os.Stat(filepath.Join(dir, "processing-results"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunCommand_MissingDirectory(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "run", filepath.Join(t.TempDir(), "gone"), "--no-open", "--log-dir", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run failed")
}

func TestRunCommand_InvalidFlags(t *testing.T) {
	isolate(t)
	dir := textDir(t, map[string]string{"a.txt": "a"})

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad level", args: []string{"--log-level", "loud"}, wantErr: "invalid configuration"},
		{name: "bad pace", args: []string{"--pace", "soon"}, wantErr: "invalid pace"},
		{name: "missing config", args: []string{"--config", filepath.Join(dir, "a.txt")}, wantErr: "config"},
		{name: "too many args", args: []string{dir}, wantErr: "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", dir, "--no-open", "--log-dir", ""}, tt.args...)
			_, err := execute(t, "", args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunCommand_AlreadyRunning(t *testing.T) {
	home := isolate(t)
	dir := textDir(t, map[string]string{"a.txt": "a"})

	held := filelock.NewRunLock(filepath.Join(home, "run.lock"))
	require.NoError(t, held.Acquire())
	defer held.Release()

	_, err := execute(t, "", "run", dir, "--no-open", "--log-dir", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, controller.ErrAlreadyRunning)
}

// gatedSummarizer reports one file and then waits for release or cancellation
type gatedSummarizer struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedSummarizer) Run(ctx context.Context, root string, events chan<- scanner.Event) {
	defer close(events)
	close(g.started)

	table := models.NewResultTable([]models.FileRecord{models.NewFileRecord("a.txt", "a.txt", "a")})
	events <- scanner.Event{Kind: scanner.EventProgress, Percent: 100, FileName: "a.txt", Index: 1, Total: 1}
	select {
	case <-g.release:
		events <- scanner.Event{Kind: scanner.EventCompleted, Table: table, Total: 1}
	case <-ctx.Done():
		events <- scanner.Event{Kind: scanner.EventCancelled, Table: table, Total: 1}
	}
}

type nopExporter struct{}

func (nopExporter) Export(models.ResultTable, string) error { return nil }

func newGatedController(t *testing.T) (*controller.Controller, *gatedSummarizer) {
	t.Helper()
	g := &gatedSummarizer{started: make(chan struct{}), release: make(chan struct{})}
	ctrl, err := controller.New(controller.Deps{Summarizer: g, Exporter: nopExporter{}}, controller.Options{})
	require.NoError(t, err)
	return ctrl, g
}

func TestSupervise_DeclinedInterruptKeepsRunning(t *testing.T) {
	ctrl, g := newGatedController(t)
	signals := make(chan os.Signal)
	asked := make(chan struct{}, 1)
	confirm := func() bool {
		asked <- struct{}{}
		return false
	}

	type outcome struct {
		result models.RunResult
		err    error
	}
	doneCh := make(chan outcome, 1)
	go func() {
		r, err := supervise(context.Background(), ctrl, "/data", signals, confirm, logger.NewNoOpLogger())
		doneCh <- outcome{r, err}
	}()

	<-g.started
	signals <- syscall.SIGINT
	select {
	case <-asked:
	case <-time.After(5 * time.Second):
		t.Fatal("confirmation was not requested")
	}

	close(g.release)
	res := <-doneCh
	require.NoError(t, res.err)
	assert.Equal(t, models.RunCompleted, res.result.State)
}

func TestSupervise_ConfirmedInterruptCancels(t *testing.T) {
	ctrl, g := newGatedController(t)
	signals := make(chan os.Signal, 1)

	go func() {
		<-g.started
		signals <- syscall.SIGTERM
	}()

	result, err := supervise(context.Background(), ctrl, "/data", signals, func() bool { return true }, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, models.RunCancelled, result.State)
	assert.NoError(t, runError(result))
}

func TestRunError(t *testing.T) {
	assert.NoError(t, runError(models.RunResult{State: models.RunCompleted}))
	assert.NoError(t, runError(models.RunResult{State: models.RunCancelled}))

	err := runError(models.RunResult{State: models.RunFailed, Err: scanner.ErrNoData})
	require.Error(t, err)
	assert.ErrorIs(t, err, scanner.ErrNoData)

	assert.Error(t, runError(models.RunResult{State: models.RunFailed}))
}

func TestConsoleLevel(t *testing.T) {
	assert.Equal(t, "info", consoleLevel("info", false))
	assert.Equal(t, "warn", consoleLevel("info", true))
	assert.Equal(t, "debug", consoleLevel("debug", true))
	assert.Equal(t, "error", consoleLevel("error", true))
}

func TestParsePace(t *testing.T) {
	pace, err := parsePace("0")
	require.NoError(t, err)
	assert.Zero(t, pace)

	pace, err = parsePace("250ms")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, pace)

	_, err = parsePace("fast")
	assert.Error(t, err)
}

func TestIsInteractive(t *testing.T) {
	assert.False(t, isInteractive(strings.NewReader("y\n")))
}

func TestHistoryCommand_NoDatabase(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No run history found")
}

func seedHistory(t *testing.T, dbPath string, results ...models.RunResult) {
	t.Helper()
	store, err := history.NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	for _, r := range results {
		require.NoError(t, store.RecordRun(context.Background(), r))
	}
}

func TestHistoryCommand_ListAndFilter(t *testing.T) {
	isolate(t)
	dbPath := filepath.Join(t.TempDir(), "h.db")
	base := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	seedHistory(t, dbPath,
		models.RunResult{ID: "r1", Root: "/data/one", State: models.RunCompleted, Processed: 3, Discovered: 3,
			OutputPath: "/data/one/processing-results/merged-data_20240115_143000.xlsx", StartedAt: base, FinishedAt: base.Add(time.Second)},
		models.RunResult{ID: "r2", Root: "/data/two", State: models.RunFailed, Err: scanner.ErrNoData,
			StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour)},
	)

	out, err := execute(t, "", "history", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Run History (2)")
	assert.Less(t, strings.Index(out, "r2"), strings.Index(out, "r1"), "most recent first")
	assert.Contains(t, out, "no valid text files found")
	assert.Contains(t, out, "ago")

	out, err = execute(t, "", "history", "--db-path", dbPath, "--root", "/data/one")
	require.NoError(t, err)
	assert.Contains(t, out, "Run History (1)")
	assert.Contains(t, out, "merged-data_20240115_143000.xlsx")
	assert.NotContains(t, out, "r2")
}

func TestHistoryClearCommand(t *testing.T) {
	isolate(t)
	dbPath := filepath.Join(t.TempDir(), "h.db")
	seedHistory(t, dbPath, models.RunResult{ID: "r1", Root: "/data", State: models.RunCompleted, StartedAt: time.Now()})

	out, err := execute(t, "n\n", "history", "clear", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Operation cancelled.")

	out, err = execute(t, "y\n", "history", "clear", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 run.")

	out, err = execute(t, "", "history", "clear", "--yes", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 runs.")

	out, err = execute(t, "", "history", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")
}
