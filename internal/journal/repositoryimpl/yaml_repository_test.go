package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewright/internal/journal"
	"sitewright/pkg/storage"
)

func newRepo(t *testing.T) *YAMLRepository {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store)
}

func TestYAMLRepository_SaveAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	rec := &journal.Record{
		JobID:     "01JOBID",
		Task:      "demo-app",
		Round:     1,
		Status:    journal.StatusAccepted,
		StartedAt: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Get(ctx, "demo-app", 1)
	require.NoError(t, err)
	assert.Equal(t, rec.JobID, got.JobID)
	assert.Equal(t, journal.StatusAccepted, got.Status)
	assert.True(t, rec.StartedAt.Equal(got.StartedAt))

	// Finishing the round rewrites the same record.
	rec.Status = journal.StatusSucceeded
	rec.CommitSHA = "deadbeef"
	rec.FilesWritten = []string{"index.html"}
	require.NoError(t, repo.Save(ctx, rec))

	got, err = repo.Get(ctx, "demo-app", 1)
	require.NoError(t, err)
	assert.Equal(t, journal.StatusSucceeded, got.Status)
	assert.Equal(t, "deadbeef", got.CommitSHA)
	assert.Equal(t, []string{"index.html"}, got.FilesWritten)
}

func TestYAMLRepository_GetMissing(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Get(context.Background(), "demo-app", 7)
	assert.Error(t, err)
}

func TestYAMLRepository_ListOrdersByRound(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, round := range []int{3, 1, 2} {
		require.NoError(t, repo.Save(ctx, &journal.Record{
			JobID:  "job",
			Task:   "demo-app",
			Round:  round,
			Status: journal.StatusSucceeded,
		}))
	}
	require.NoError(t, repo.Save(ctx, &journal.Record{
		JobID:  "job",
		Task:   "other-app",
		Round:  1,
		Status: journal.StatusFailed,
	}))

	records, err := repo.List(ctx, "demo-app")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.Round)
		assert.Equal(t, "demo-app", rec.Task)
	}
}
