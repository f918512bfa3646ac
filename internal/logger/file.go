package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/txtmerge/internal/models"
	"gopkg.in/natefinch/lumberjack.v2"
)

// JournalFileName is the cumulative log shared by all runs in a log dir.
// It is rotated by size and age; per-run files are never rotated.
const JournalFileName = "txtmerge.log"

const (
	journalMaxSizeMB  = 10
	journalMaxBackups = 3
	journalMaxAgeDays = 30
)

// FileLogger writes a timestamped log file per run and keeps a latest.log
// symlink pointing at the most recent one. Every line is also appended to
// the rotating journal. It is thread-safe.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	journal  *lumberjack.Logger
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir at the given level.
// The directory is created if needed.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS.log
	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
		journal: &lumberjack.Logger{
			Filename:   filepath.Join(logDir, JournalFileName),
			MaxSize:    journalMaxSizeMB,
			MaxBackups: journalMaxBackups,
			MaxAge:     journalMaxAgeDays,
		},
	}

	fl.writeRunLog("=== txtmerge Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// Path returns the path of the run log file
func (fl *FileLogger) Path() string {
	return fl.runFile
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !allows(fl.logLevel, level) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogRunStart logs the start of a run at INFO level.
func (fl *FileLogger) LogRunStart(root string) {
	if !allows(fl.logLevel, "info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Started processing %s\n", timestamp(), root))
}

// LogFileProcessed logs one summarized file at INFO level.
func (fl *FileLogger) LogFileProcessed(percent int, fileName string) {
	if !allows(fl.logLevel, "info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Processed: %s (%d%%)\n", timestamp(), fileName, percent))
}

// LogFileError logs a skipped file at WARN level.
func (fl *FileLogger) LogFileError(err error) {
	if err == nil {
		return
	}
	fl.logWithLevel("WARN", fmt.Sprintf("Skipped: %v", err))
}

// LogSummary logs the final statistics of a run at INFO level.
func (fl *FileLogger) LogSummary(result models.RunResult) {
	if !allows(fl.logLevel, "info") {
		return
	}

	ts := timestamp()
	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s] === RUN SUMMARY ===\n", ts)
	fmt.Fprintf(&b, "[%s] Run ID:       %s\n", ts, result.ID)
	fmt.Fprintf(&b, "[%s] Root:         %s\n", ts, result.Root)
	fmt.Fprintf(&b, "[%s] Status:       %s\n", ts, strings.ToUpper(result.State.String()))
	fmt.Fprintf(&b, "[%s] Discovered:   %d\n", ts, result.Discovered)
	fmt.Fprintf(&b, "[%s] Processed:    %d\n", ts, result.Processed)
	fmt.Fprintf(&b, "[%s] Skipped:      %d\n", ts, result.FileErrors)
	fmt.Fprintf(&b, "[%s] Total time:   %.1fs\n", ts, result.Duration().Seconds())
	if result.OutputPath != "" {
		fmt.Fprintf(&b, "[%s] Output:       %s\n", ts, result.OutputPath)
	}
	if result.Err != nil {
		fmt.Fprintf(&b, "[%s] Error:        %v\n", ts, result.Err)
	}
	fmt.Fprintf(&b, "[%s] Completed at: %s\n", ts, time.Now().Format(time.RFC3339))

	fl.writeRunLog(b.String())
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	if fl.journal != nil {
		if err := fl.journal.Close(); err != nil {
			return fmt.Errorf("failed to close journal: %w", err)
		}
		fl.journal = nil
	}

	return nil
}

// JournalPath returns the path of the rotating journal
func (fl *FileLogger) JournalPath() string {
	return filepath.Join(fl.logDir, JournalFileName)
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
	if fl.journal != nil {
		fl.journal.Write([]byte(message))
	}
}
