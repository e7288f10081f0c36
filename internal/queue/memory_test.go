package queue

import (
	"context"
	"testing"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_EnqueueStatusRoundTrips(t *testing.T) {
	b := NewMemoryBackend("default")
	ctx := context.Background()

	job, err := b.Enqueue(ctx, EnqueueInput{RunType: RunTypeRender, ProjectID: "p1", FuncName: "run_render"})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)
	assert.NotEmpty(t, job.JobID)

	got, err := b.Status(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ProjectID)
}

func TestMemoryBackend_StatusMissingIsNotFound(t *testing.T) {
	b := NewMemoryBackend("default")
	_, err := b.Status(context.Background(), "missing")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestMemoryBackend_DequeueReturnsFIFO(t *testing.T) {
	b := NewMemoryBackend("default")
	ctx := context.Background()

	j1, _ := b.Enqueue(ctx, EnqueueInput{RunType: RunTypeDemoCapture, ProjectID: "p1"})
	j2, _ := b.Enqueue(ctx, EnqueueInput{RunType: RunTypeDemoCapture, ProjectID: "p2"})

	got1, err := b.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, j1.JobID, got1.JobID)

	got2, err := b.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, j2.JobID, got2.JobID)

	depth, err := b.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), depth)
}

func TestMemoryBackend_MarkStartedFinishedFailed(t *testing.T) {
	b := NewMemoryBackend("default")
	ctx := context.Background()

	job, _ := b.Enqueue(ctx, EnqueueInput{RunType: RunTypeRender, ProjectID: "p1", NarrationMode: config.NarrationTTSOnly})

	require.NoError(t, b.MarkStarted(ctx, job.JobID))
	started, _ := b.Status(ctx, job.JobID)
	assert.Equal(t, StatusStarted, started.Status)
	require.NotNil(t, started.StartedAt)

	require.NoError(t, b.MarkFinished(ctx, job.JobID, map[string]any{"render_id": "render_123"}))
	finished, _ := b.Status(ctx, job.JobID)
	assert.Equal(t, StatusFinished, finished.Status)
	require.NotNil(t, finished.EndedAt)

	job2, _ := b.Enqueue(ctx, EnqueueInput{RunType: RunTypeRender, ProjectID: "p2"})
	require.NoError(t, b.MarkFailed(ctx, job2.JobID, "boom"))
	failed, _ := b.Status(ctx, job2.JobID)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "boom", failed.Error)
}

func TestTruncateError_KeepsLast2000Chars(t *testing.T) {
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'a'
	}
	out := truncateError(string(long))
	assert.Len(t, out, maxErrorChars)
}
