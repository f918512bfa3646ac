package logger

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/txtmerge/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "DEBUG")

		assert.Equal(t, "debug", logger.Level())
		assert.False(t, logger.colorOutput, "buffers never get color")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger := NewConsoleLogger(&bytes.Buffer{}, "verbose")
		assert.Equal(t, "info", logger.Level())
	})

	t.Run("nil writer discards", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		logger.LogInfo("dropped")
		logger.LogRunStart("/tmp")
		logger.LogSummary(models.RunResult{})
	})
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		wantSeen []string
		wantGone []string
	}{
		{"trace", []string{"[TRACE] t", "[DEBUG] d", "[INFO] i", "[WARN] w", "[ERROR] e"}, nil},
		{"info", []string{"[INFO] i", "[WARN] w", "[ERROR] e"}, []string{"[TRACE]", "[DEBUG]"}},
		{"error", []string{"[ERROR] e"}, []string{"[INFO]", "[WARN]"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, tt.level)

			logger.LogTrace("t")
			logger.LogDebug("d")
			logger.LogInfo("i")
			logger.LogWarn("w")
			logger.LogError("e")

			out := buf.String()
			for _, s := range tt.wantSeen {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.wantGone {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestConsoleLogger_RunLines(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogRunStart("/data/in")
	logger.LogFileProcessed(50, "a.txt")
	logger.LogFileError(errors.New("file b.txt read failed: permission denied"))
	logger.LogFileError(nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Started processing /data/in")
	assert.Contains(t, lines[1], "Processed: a.txt (50%)")
	assert.Contains(t, lines[2], "[WARN] Skipped: file b.txt read failed")

	for _, line := range lines {
		assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] `, line)
	}
}

func TestConsoleLogger_LogSummary(t *testing.T) {
	start := time.Now()

	t.Run("completed", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "info").LogSummary(models.RunResult{
			State:      models.RunCompleted,
			Discovered: 3,
			Processed:  2,
			FileErrors: 1,
			OutputPath: "/out/merged.xlsx",
			StartedAt:  start,
			FinishedAt: start.Add(1500 * time.Millisecond),
		})

		out := buf.String()
		assert.Contains(t, out, "=== Run Summary ===")
		assert.Contains(t, out, "Status:     COMPLETED")
		assert.Contains(t, out, "Discovered: 3")
		assert.Contains(t, out, "Processed:  2")
		assert.Contains(t, out, "Skipped:    1")
		assert.Contains(t, out, "Duration:   1s")
		assert.Contains(t, out, "Output:     /out/merged.xlsx")
		assert.NotContains(t, out, "Error:")
	})

	t.Run("failed", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "info").LogSummary(models.RunResult{
			State: models.RunFailed,
			Err:   errors.New("no valid text files found"),
		})

		out := buf.String()
		assert.Contains(t, out, "Status:     FAILED")
		assert.Contains(t, out, "Error:      no valid text files found")
		assert.NotContains(t, out, "Skipped:")
		assert.NotContains(t, out, "Output:")
	})

	t.Run("suppressed above info", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "warn").LogSummary(models.RunResult{State: models.RunCompleted})
		assert.Empty(t, buf.String())
	})
}

func TestConsoleLogger_ConcurrentWrites(t *testing.T) {
	buf := &safeBuffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogFileProcessed(10, "x.txt")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, strings.Count(buf.String(), "Processed: x.txt"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}

func TestIsValidLevel(t *testing.T) {
	for _, l := range ValidLevels {
		assert.True(t, IsValidLevel(l))
		assert.True(t, IsValidLevel(strings.ToUpper(l)))
	}
	assert.False(t, IsValidLevel(""))
	assert.False(t, IsValidLevel("fatal"))
}

// safeBuffer is a bytes.Buffer guarded for concurrent Write calls
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
