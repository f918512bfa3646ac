package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/harrison/txtmerge/internal/config"
	"github.com/harrison/txtmerge/internal/controller"
	"github.com/harrison/txtmerge/internal/display"
	"github.com/harrison/txtmerge/internal/export"
	"github.com/harrison/txtmerge/internal/filelock"
	"github.com/harrison/txtmerge/internal/history"
	"github.com/harrison/txtmerge/internal/launcher"
	"github.com/harrison/txtmerge/internal/logger"
	"github.com/harrison/txtmerge/internal/models"
	"github.com/harrison/txtmerge/internal/scanner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// quitQuestion is asked when an interrupt arrives during a run
const quitQuestion = "A run is in progress. Stop it and quit?"

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [directory]",
		Short: "Summarize the text files under a directory",
		Long: `Summarize every text file under a directory into an Excel workbook.

The workbook is written to <directory>/processing-results/merged-data_YYYYMMDD_HHMMSS.xlsx
and opened with the default application when the run completes. Files that cannot
be read as UTF-8 text are skipped and reported.

Press Ctrl+C to stop a run; you are asked for confirmation first (use --yes to skip
the prompt). Nothing is written for a stopped run.

Configuration is loaded from .txtmerge/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  txtmerge run ./notes
  txtmerge run --no-open --pace 0 ./notes
  txtmerge run --output-dir exports --log-level debug .
  txtmerge run --config custom.yaml ./notes`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .txtmerge/config.yaml)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for per-run log files")
	cmd.Flags().String("pace", "", "Delay between files (e.g., 0, 10ms, 250ms)")
	cmd.Flags().String("output-dir", "", "Output directory name inside the scanned directory")
	cmd.Flags().Bool("no-open", false, "Do not open the workbook after export")
	cmd.Flags().Bool("yes", false, "Stop a running run on Ctrl+C without asking")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve directory %s: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	presenter := display.NewStatusPresenter(errOut)
	consoleLog := logger.NewConsoleLogger(out, consoleLevel(cfg.LogLevel, display.IsTerminal(errOut)))

	loggers := []logger.RunLogger{consoleLog}
	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			consoleLog.LogWarn(fmt.Sprintf("File logging disabled: %v", err))
		} else {
			defer fileLog.Close()
			loggers = append(loggers, fileLog)
			consoleLog.LogDebug(fmt.Sprintf("Writing run log to %s", fileLog.Path()))
		}
	}
	runLog := logger.NewMultiLogger(loggers...)

	exporter, err := export.NewXLSXExporter(export.DefaultSheetName, cfg.Headers)
	if err != nil {
		return fmt.Errorf("configure export: %w", err)
	}

	lockPath, err := config.RunLockPath()
	if err != nil {
		return fmt.Errorf("resolve run lock: %w", err)
	}

	var opener controller.Opener = launcher.Noop{}
	if cfg.OpenAfterExport {
		opener = launcher.New()
	}

	deps := controller.Deps{
		Summarizer: scanner.New(scanner.Options{
			Extensions:  cfg.Extensions,
			ExcludeDirs: cfg.ExcludeDirs,
			SkipHidden:  cfg.SkipHidden,
			Pace:        cfg.Pace,
			Warner:      runLog,
		}),
		Exporter:  exporter,
		Opener:    opener,
		Presenter: presenter,
		Logger:    runLog,
		Locker:    filelock.NewRunLock(lockPath),
	}

	if cfg.History.Enabled {
		store, err := openHistory(cfg)
		if err != nil {
			runLog.LogWarn(fmt.Sprintf("Run history disabled: %v", err))
		} else {
			defer store.Close()
			deps.Recorder = store
		}
	}

	ctrl, err := controller.New(deps, controller.Options{
		OutputDir:       cfg.OutputDir,
		FilePrefix:      cfg.OutputPrefix,
		OpenAfterExport: cfg.OpenAfterExport,
	})
	if err != nil {
		return err
	}

	autoConfirm, _ := cmd.Flags().GetBool("yes")
	confirm := func() bool {
		if autoConfirm || !isInteractive(cmd.InOrStdin()) {
			return true
		}
		// keep progress redraws from erasing the question
		presenter.Suspend()
		defer presenter.Resume()
		return display.Confirm(cmd.InOrStdin(), errOut, quitQuestion)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	result, err := supervise(context.Background(), ctrl, root, sigCh, confirm, runLog)
	if err != nil {
		return err
	}
	return runError(result)
}

// supervise starts a run and waits for it, asking confirm on every signal.
// The run keeps going when confirm declines.
func supervise(ctx context.Context, ctrl *controller.Controller, root string, signals <-chan os.Signal, confirm func() bool, log logger.RunLogger) (models.RunResult, error) {
	if err := ctrl.Start(ctx, root); err != nil {
		return models.RunResult{}, err
	}

	done := make(chan models.RunResult, 1)
	go func() {
		done <- ctrl.Wait()
	}()

	for {
		select {
		case result := <-done:
			return result, nil
		case sig := <-signals:
			log.LogDebug(fmt.Sprintf("Received %v", sig))
			if ctrl.Shutdown(confirm) {
				return <-done, nil
			}
			log.LogInfo("Continuing run")
		}
	}
}

// runError maps a finished run to the command's exit error.
// A cancelled run is a normal, user-requested outcome.
func runError(result models.RunResult) error {
	switch result.State {
	case models.RunCompleted, models.RunCancelled:
		return nil
	default:
		if result.Err == nil {
			return fmt.Errorf("run ended in state %s", result.State)
		}
		return fmt.Errorf("run failed: %w", result.Err)
	}
}

// loadRunConfig loads the config file and applies the run flags over it
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var logLevelPtr, outputDirPtr *string
	var pacePtr *time.Duration
	var openPtr *bool

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &level
	}
	if cmd.Flags().Changed("output-dir") {
		outputDir, _ := cmd.Flags().GetString("output-dir")
		outputDirPtr = &outputDir
	}
	if cmd.Flags().Changed("pace") {
		paceStr, _ := cmd.Flags().GetString("pace")
		pace, err := parsePace(paceStr)
		if err != nil {
			return nil, err
		}
		pacePtr = &pace
	}
	if noOpen, _ := cmd.Flags().GetBool("no-open"); noOpen {
		open := false
		openPtr = &open
	}

	cfg.MergeWithFlags(logLevelPtr, pacePtr, outputDirPtr, openPtr)

	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir, _ = cmd.Flags().GetString("log-dir")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parsePace accepts a Go duration; a bare "0" disables pacing
func parsePace(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	pace, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid pace format %q: %w", s, err)
	}
	return pace, nil
}

// consoleLevel keeps per-file INFO lines off the terminal while the
// presenter redraws its status line there. The file log is unaffected.
func consoleLevel(level string, interactive bool) string {
	if !interactive {
		return level
	}
	switch strings.ToLower(level) {
	case "trace", "debug", "warn", "error":
		return level
	default:
		return "warn"
	}
}

// openHistory opens the run history store configured in cfg
func openHistory(cfg *config.Config) (*history.Store, error) {
	dbPath, err := config.HistoryDBPath(cfg)
	if err != nil {
		return nil, err
	}
	return history.NewStore(dbPath)
}

// isInteractive reports whether in is a terminal a user can answer on
func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
