package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/model"
)

func setupTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := NewClient(ctx, config.RedisConfig{Addr: addr, DB: 1}, zap.NewNop()) // DB 1 for testing
	if err != nil {
		t.Skip("Redis not available, skipping test")
	}
	t.Cleanup(func() {
		client.rdb.Del(context.Background(), lockKey, latestRunKey)
		_ = client.Close()
	})
	client.rdb.Del(context.Background(), lockKey, latestRunKey)
	return client
}

func TestRunLock(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	ok, err := client.AcquireRunLock(ctx, "run-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.AcquireRunLock(ctx, "run-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// 다른 owner는 해제할 수 없음
	require.NoError(t, client.ReleaseRunLock(ctx, "run-2"))
	ok, err = client.AcquireRunLock(ctx, "run-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.ReleaseRunLock(ctx, "run-1"))
	ok, err = client.AcquireRunLock(ctx, "run-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLatestRun(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	run, err := client.GetLatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, run)

	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, client.SaveLatestRun(ctx, model.SyncRun{
		RunID:            "run-1",
		Status:           model.SyncRunDegraded,
		StartedAt:        started,
		ProposalsFailed:  2,
		ProposalsEmitted: 4,
	}))

	run, err = client.GetLatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, model.SyncRunDegraded, run.Status)
	assert.True(t, run.StartedAt.Equal(started))
	assert.Equal(t, 2, run.ProposalsFailed)
}
