package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for txtmerge
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txtmerge",
		Short: "Summarize a folder of text files into one spreadsheet",
		Long: `txtmerge scans a directory tree for text files, summarizes each one
(file name, relative path, a short excerpt and its character count)
and saves the collected rows as an Excel workbook inside the scanned
directory.

Runs show live progress, can be interrupted with Ctrl+C, and are
recorded in a local history database.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
