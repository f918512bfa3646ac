package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/txtmerge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history", "runs.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

	require.NoError(t, store.RecordRun(ctx, models.RunResult{
		ID:         "run-1",
		Root:       "/data/a",
		State:      models.RunCompleted,
		Discovered: 3,
		Processed:  2,
		FileErrors: 1,
		OutputPath: "/data/a/processing-results/merged-data_20240115_143022.xlsx",
		StartedAt:  base,
		FinishedAt: base.Add(2 * time.Second),
	}))
	require.NoError(t, store.RecordRun(ctx, models.RunResult{
		Root:       "/data/b",
		State:      models.RunFailed,
		Err:        errors.New("no valid text files found"),
		StartedAt:  base.Add(time.Minute),
		FinishedAt: base.Add(time.Minute + time.Second),
	}))

	runs, err := store.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Most recent first
	assert.Equal(t, "/data/b", runs[0].Root)
	assert.Equal(t, models.RunFailed, runs[0].State)
	assert.Equal(t, "no valid text files found", runs[0].ErrorMessage)
	assert.NotEmpty(t, runs[0].ID, "missing IDs are generated")

	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, 3, runs[1].Discovered)
	assert.Equal(t, 2, runs[1].Processed)
	assert.Equal(t, 1, runs[1].FileErrors)
	assert.Equal(t, 2*time.Second, runs[1].Duration())
	assert.True(t, runs[1].StartedAt.Equal(base))

	filtered, err := store.ListRuns(ctx, "/data/a", 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "run-1", filtered[0].ID)

	limited, err := store.ListRuns(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_Clear(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordRun(ctx, models.RunResult{
			Root:      "/data",
			State:     models.RunCancelled,
			StartedAt: time.Now(),
		}))
	}

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	runs, err := store.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_DuplicateID(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	run := models.RunResult{ID: "same", Root: "/x", State: models.RunCompleted, StartedAt: time.Now()}
	require.NoError(t, store.RecordRun(ctx, run))

	err = store.RecordRun(ctx, run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same")
}
