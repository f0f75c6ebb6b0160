package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buyled/gomanage-relay/internal/model"
	"github.com/buyled/gomanage-relay/internal/repository"
	"github.com/buyled/gomanage-relay/internal/session"
)

type fakeSyncRunRepo struct {
	deletes atomic.Int64
	cutoff  atomic.Value
}

func (f *fakeSyncRunRepo) FindByID(ctx context.Context, id string) (*model.SyncRun, error) {
	return nil, nil
}

func (f *fakeSyncRunRepo) ListRecent(ctx context.Context, limit, offset int) ([]model.SyncRun, error) {
	return nil, nil
}

func (f *fakeSyncRunRepo) Create(ctx context.Context, params model.CreateSyncRunParams) (*model.SyncRun, error) {
	return nil, nil
}

func (f *fakeSyncRunRepo) Finish(ctx context.Context, params model.FinishSyncRunParams) error {
	return nil
}

func (f *fakeSyncRunRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.deletes.Add(1)
	f.cutoff.Store(cutoff)
	return 2, nil
}

func (f *fakeSyncRunRepo) WithTx(tx *sqlx.Tx) repository.SyncRunRepository { return f }

func TestCleanup(t *testing.T) {
	store := session.NewStore(time.Nanosecond, time.Nanosecond)
	store.Put("stale", "TOKEN")
	time.Sleep(time.Millisecond)

	repo := &fakeSyncRunRepo{}
	retention := 30 * 24 * time.Hour
	job := NewCleanupJob(store, repo, retention, time.Hour)

	job.cleanup()

	assert.Zero(t, store.Count())
	require.Equal(t, int64(1), repo.deletes.Load())

	cutoff, ok := repo.cutoff.Load().(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(-retention), cutoff, time.Minute)
}

func TestCleanupWithoutRepo(t *testing.T) {
	store := session.NewStore(time.Minute, time.Minute)
	job := NewCleanupJob(store, nil, time.Hour, time.Hour)

	// must not panic when sync-run trimming is disabled
	job.cleanup()
}

func TestStartRunsImmediately(t *testing.T) {
	store := session.NewStore(time.Minute, time.Minute)
	repo := &fakeSyncRunRepo{}
	job := NewCleanupJob(store, repo, time.Hour, time.Hour)

	job.Start()
	defer job.Stop()

	assert.Eventually(t, func() bool {
		return repo.deletes.Load() >= 1
	}, time.Second, 10*time.Millisecond)
}
