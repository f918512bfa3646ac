package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harrison/txtmerge/internal/config"
	"github.com/harrison/txtmerge/internal/display"
	"github.com/harrison/txtmerge/internal/history"
	"github.com/harrison/txtmerge/internal/models"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'txtmerge history' command group
func NewHistoryCommand() *cobra.Command {
	var root string
	var limit int
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `List previous runs, most recent first, with their outcome,
file counts and output workbook.

Examples:
  txtmerge history
  txtmerge history --root ./notes --limit 5
  txtmerge history clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, root, limit, dbPath)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Only show runs of this directory")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 = all)")
	cmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "Path to history database (default: $TXTMERGE_HOME/history.db)")

	cmd.AddCommand(newHistoryClearCommand(&dbPath))

	return cmd
}

// newHistoryClearCommand creates the 'txtmerge history clear' command
func newHistoryClearCommand(dbPath *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, *dbPath, yes)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Do not ask for confirmation")

	return cmd
}

// runHistory executes the history command
func runHistory(cmd *cobra.Command, root string, limit int, dbPathOverride string) error {
	output := cmd.OutOrStdout()

	dbPath, err := resolveHistoryDB(dbPathOverride)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No run history found at: %s\n", dbPath)
		return nil
	}

	if root != "" {
		if root, err = filepath.Abs(root); err != nil {
			return fmt.Errorf("resolve directory: %w", err)
		}
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), root, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(output, "No runs recorded yet.")
		return nil
	}

	printRuns(output, runs)
	return nil
}

// runHistoryClear executes the history clear command
func runHistoryClear(cmd *cobra.Command, dbPathOverride string, yes bool) error {
	output := cmd.OutOrStdout()

	dbPath, err := resolveHistoryDB(dbPathOverride)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No run history found at: %s\n", dbPath)
		return nil
	}

	if !yes {
		fmt.Fprintf(output, "WARNING: This will delete ALL recorded runs.\n")
		if !display.Confirm(cmd.InOrStdin(), output, "Continue?") {
			fmt.Fprintf(output, "Operation cancelled.\n")
			return nil
		}
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	deleted, err := store.Clear(context.Background())
	if err != nil {
		return err
	}

	recordText := "run"
	if deleted != 1 {
		recordText = "runs"
	}
	fmt.Fprintf(output, "Deleted %d %s.\n", deleted, recordText)
	return nil
}

// resolveHistoryDB returns the override or the configured database path
func resolveHistoryDB(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	dbPath, err := config.HistoryDBPath(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to get history database path: %w", err)
	}
	return dbPath, nil
}

// printRuns formats runs, most recent first
func printRuns(w io.Writer, runs []history.Run) {
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "\n=== Run History (%d) ===\n\n", len(runs))

	for _, run := range runs {
		stateColorFor(run.State).Fprintf(w, "%-9s", run.State)
		fmt.Fprintf(w, " %s ", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
		gray.Fprintf(w, "(%s, %s)\n", humanize.Time(run.StartedAt), run.ID)

		fmt.Fprintf(w, "  Directory: %s\n", run.Root)
		fmt.Fprintf(w, "  Files:     %d processed, %d skipped, %d discovered\n", run.Processed, run.FileErrors, run.Discovered)
		fmt.Fprintf(w, "  Duration:  %s\n", run.Duration().Round(time.Millisecond))
		if run.OutputPath != "" {
			fmt.Fprintf(w, "  Output:    %s\n", run.OutputPath)
		}
		if run.ErrorMessage != "" {
			color.New(color.FgRed).Fprintf(w, "  Error:     %s\n", run.ErrorMessage)
		}
		fmt.Fprintln(w)
	}
}

// stateColorFor picks the listing color for a run state
func stateColorFor(state models.RunState) *color.Color {
	switch state {
	case models.RunCompleted:
		return color.New(color.FgGreen)
	case models.RunFailed:
		return color.New(color.FgRed)
	case models.RunCancelled:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Reset)
	}
}
