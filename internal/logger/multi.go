package logger

import "github.com/harrison/txtmerge/internal/models"

// RunLogger is the set of methods every txtmerge logger provides
type RunLogger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogRunStart(root string)
	LogFileProcessed(percent int, fileName string)
	LogFileError(err error)
	LogSummary(result models.RunResult)
}

// MultiLogger forwards every call to each of its loggers in order
type MultiLogger struct {
	loggers []RunLogger
}

// NewMultiLogger combines loggers; nil entries are dropped
func NewMultiLogger(loggers ...RunLogger) *MultiLogger {
	ml := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			ml.loggers = append(ml.loggers, l)
		}
	}
	return ml
}

// LogDebug forwards to all loggers
func (ml *MultiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *MultiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *MultiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *MultiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

// LogRunStart forwards to all loggers
func (ml *MultiLogger) LogRunStart(root string) {
	for _, l := range ml.loggers {
		l.LogRunStart(root)
	}
}

// LogFileProcessed forwards to all loggers
func (ml *MultiLogger) LogFileProcessed(percent int, fileName string) {
	for _, l := range ml.loggers {
		l.LogFileProcessed(percent, fileName)
	}
}

// LogFileError forwards to all loggers
func (ml *MultiLogger) LogFileError(err error) {
	for _, l := range ml.loggers {
		l.LogFileError(err)
	}
}

// LogSummary forwards to all loggers
func (ml *MultiLogger) LogSummary(result models.RunResult) {
	for _, l := range ml.loggers {
		l.LogSummary(result)
	}
}

// NoOpLogger discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogDebug(string)              {}
func (n *NoOpLogger) LogInfo(string)               {}
func (n *NoOpLogger) LogWarn(string)               {}
func (n *NoOpLogger) LogError(string)              {}
func (n *NoOpLogger) LogRunStart(string)           {}
func (n *NoOpLogger) LogFileProcessed(int, string) {}
func (n *NoOpLogger) LogFileError(error)           {}
func (n *NoOpLogger) LogSummary(models.RunResult)  {}
