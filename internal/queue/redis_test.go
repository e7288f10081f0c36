package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis mirrors the teacher corpus's own miniredis-backed test
// harness for its go-redis cache (internal/cache/redis_test.go).
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisBackend) {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := &RedisBackend{client: client, prefix: "narrated_demo", queueName: "default", now: time.Now}
	return mr, b
}

func TestRedisBackend_EnqueueDequeueStatus(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()
	ctx := context.Background()

	job, err := b.Enqueue(ctx, EnqueueInput{RunType: RunTypeRender, ProjectID: "p1", FuncName: "run_render"})
	require.NoError(t, err)

	depth, err := b.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)

	got, err := b.Status(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ProjectID)
	assert.Equal(t, StatusQueued, got.Status)
}

func TestRedisBackend_StatusMissingIsNotFound(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()

	_, err := b.Status(context.Background(), "missing")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestRedisBackend_MarkFinishedPersists(t *testing.T) {
	mr, b := setupMiniRedis(t)
	defer mr.Close()
	ctx := context.Background()

	job, err := b.Enqueue(ctx, EnqueueInput{RunType: RunTypeDemoCapture, ProjectID: "p1"})
	require.NoError(t, err)

	require.NoError(t, b.MarkFinished(ctx, job.JobID, "ok"))
	got, err := b.Status(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, got.Status)
}
