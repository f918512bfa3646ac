// Package logger provides logging implementations for txtmerge runs.
//
// Loggers record the lifecycle of a run (start, per-file progress, per-file
// failures, summary) as timestamped lines. Implementations are thread-safe
// and write to a console or to a per-run log file.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/txtmerge/internal/models"
)

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive); anything else means info.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// fatih/color already honours NO_COLOR and non-TTY output
		return !color.NoColor
	}
	return false
}

// Level returns the effective log level
func (cl *ConsoleLogger) Level() string {
	return cl.logLevel
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// logWithLevel writes "[HH:MM:SS] [LEVEL] message" if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !allows(cl.logLevel, level) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, colorLevel(level), message)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

// colorLevel wraps a level name in its ANSI color
func colorLevel(level string) string {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogRunStart logs the start of a run at INFO level.
// Format: "[HH:MM:SS] Started processing <root>"
func (cl *ConsoleLogger) LogRunStart(root string) {
	if cl.writer == nil || !allows(cl.logLevel, "info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	if cl.colorOutput {
		root = color.New(color.Bold).Sprint(root)
	}
	fmt.Fprintf(cl.writer, "[%s] Started processing %s\n", timestamp(), root)
}

// LogFileProcessed logs one summarized file at INFO level.
// Format: "[HH:MM:SS] Processed: <name> (<percent>%)"
func (cl *ConsoleLogger) LogFileProcessed(percent int, fileName string) {
	if cl.writer == nil || !allows(cl.logLevel, "info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	pct := fmt.Sprintf("%d%%", percent)
	if cl.colorOutput {
		pct = color.New(color.FgCyan).Sprint(pct)
	}
	fmt.Fprintf(cl.writer, "[%s] Processed: %s (%s)\n", timestamp(), fileName, pct)
}

// LogFileError logs a skipped file at WARN level.
func (cl *ConsoleLogger) LogFileError(err error) {
	if err == nil {
		return
	}
	cl.logWithLevel("WARN", fmt.Sprintf("Skipped: %v", err))
}

// LogSummary logs the run summary at INFO level.
func (cl *ConsoleLogger) LogSummary(result models.RunResult) {
	if cl.writer == nil || !allows(cl.logLevel, "info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	state := strings.ToUpper(result.State.String())
	if cl.colorOutput {
		state = stateColor(result.State).Sprint(state)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] === Run Summary ===\n", ts)
	fmt.Fprintf(&b, "[%s] Status:     %s\n", ts, state)
	fmt.Fprintf(&b, "[%s] Discovered: %d\n", ts, result.Discovered)
	fmt.Fprintf(&b, "[%s] Processed:  %d\n", ts, result.Processed)
	if result.FileErrors > 0 {
		line := fmt.Sprintf("Skipped:    %d", result.FileErrors)
		if cl.colorOutput {
			line = color.New(color.FgYellow).Sprint(line)
		}
		fmt.Fprintf(&b, "[%s] %s\n", ts, line)
	}
	fmt.Fprintf(&b, "[%s] Duration:   %s\n", ts, formatDuration(result.Duration()))
	if result.OutputPath != "" {
		fmt.Fprintf(&b, "[%s] Output:     %s\n", ts, result.OutputPath)
	}
	if result.Err != nil {
		fmt.Fprintf(&b, "[%s] Error:      %v\n", ts, result.Err)
	}

	io.WriteString(cl.writer, b.String())
}

// stateColor picks the summary color for a run state
func stateColor(state models.RunState) *color.Color {
	switch state {
	case models.RunCompleted:
		return color.New(color.FgGreen, color.Bold)
	case models.RunFailed:
		return color.New(color.FgRed, color.Bold)
	case models.RunCancelled:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.Bold)
	}
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Sub-second durations keep millisecond precision. Examples: "250ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
