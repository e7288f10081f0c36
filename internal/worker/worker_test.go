package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/apresai/narrated-demo/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDispatcher records which method was invoked per job and lets tests
// control the outcome, so Pool's orchestration can be tested without any
// real browser/ffmpeg/HTTP work.
type fakeDispatcher struct {
	mu    sync.Mutex
	calls []string

	unifiedErr error
	demoErr    error
	renderErr  error
	delay      time.Duration
}

func (f *fakeDispatcher) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeDispatcher) RunUnified(ctx context.Context, job *queue.Job) (any, error) {
	f.record("unified")
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return "unified-ok", f.unifiedErr
}

func (f *fakeDispatcher) RunDemoCapture(ctx context.Context, job *queue.Job) (any, error) {
	f.record("demo_capture")
	return "demo-ok", f.demoErr
}

func (f *fakeDispatcher) RunRenderOnly(ctx context.Context, job *queue.Job) (any, error) {
	f.record("render_only")
	return "render-ok", f.renderErr
}

func waitForStatus(t *testing.T, backend queue.Backend, jobID string, want queue.Status) *queue.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := backend.Status(context.Background(), jobID)
		require.NoError(t, err)
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestPool_DemoCaptureJobRunsAndFinishes(t *testing.T) {
	backend := queue.NewMemoryBackend("default")
	disp := &fakeDispatcher{}
	pool := NewPool(backend, disp, 2, nil, context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pool.Run(ctx)

	job, err := backend.Enqueue(context.Background(), queue.EnqueueInput{RunType: queue.RunTypeDemoCapture, ProjectID: "p1"})
	require.NoError(t, err)

	finished := waitForStatus(t, backend, job.JobID, queue.StatusFinished)
	assert.Equal(t, "demo-ok", finished.Result)

	disp.mu.Lock()
	assert.Equal(t, []string{"demo_capture"}, disp.calls)
	disp.mu.Unlock()
}

func TestPool_RenderJobWithUnifiedNarrationModeDispatchesUnified(t *testing.T) {
	backend := queue.NewMemoryBackend("default")
	disp := &fakeDispatcher{}
	pool := NewPool(backend, disp, 2, nil, context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pool.Run(ctx)

	job, err := backend.Enqueue(context.Background(), queue.EnqueueInput{
		RunType:       queue.RunTypeRender,
		ProjectID:     "p1",
		NarrationMode: "unified",
	})
	require.NoError(t, err)

	waitForStatus(t, backend, job.JobID, queue.StatusFinished)

	disp.mu.Lock()
	assert.Equal(t, []string{"unified"}, disp.calls)
	disp.mu.Unlock()
}

func TestPool_RenderJobWithTTSOnlyModeDispatchesRenderOnly(t *testing.T) {
	backend := queue.NewMemoryBackend("default")
	disp := &fakeDispatcher{}
	pool := NewPool(backend, disp, 2, nil, context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pool.Run(ctx)

	job, err := backend.Enqueue(context.Background(), queue.EnqueueInput{
		RunType:       queue.RunTypeRender,
		ProjectID:     "p1",
		NarrationMode: "tts_only",
	})
	require.NoError(t, err)

	waitForStatus(t, backend, job.JobID, queue.StatusFinished)

	disp.mu.Lock()
	assert.Equal(t, []string{"render_only"}, disp.calls)
	disp.mu.Unlock()
}

func TestPool_FailedDispatchMarksJobFailed(t *testing.T) {
	backend := queue.NewMemoryBackend("default")
	disp := &fakeDispatcher{demoErr: errors.New("browser crashed")}
	pool := NewPool(backend, disp, 2, nil, context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pool.Run(ctx)

	job, err := backend.Enqueue(context.Background(), queue.EnqueueInput{RunType: queue.RunTypeDemoCapture, ProjectID: "p1"})
	require.NoError(t, err)

	failed := waitForStatus(t, backend, job.JobID, queue.StatusFailed)
	assert.Equal(t, "browser crashed", failed.Error)
}

func TestPool_RespectsMaxTasksConcurrency(t *testing.T) {
	backend := queue.NewMemoryBackend("default")
	disp := &fakeDispatcher{delay: 150 * time.Millisecond}
	pool := NewPool(backend, disp, 1, nil, context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pool.Run(ctx)

	j1, err := backend.Enqueue(context.Background(), queue.EnqueueInput{RunType: queue.RunTypeRender, ProjectID: "p1", NarrationMode: "unified"})
	require.NoError(t, err)
	j2, err := backend.Enqueue(context.Background(), queue.EnqueueInput{RunType: queue.RunTypeRender, ProjectID: "p2", NarrationMode: "unified"})
	require.NoError(t, err)

	// Give the pool time to pick up the first job but not finish it yet.
	time.Sleep(75 * time.Millisecond)
	s1, err := backend.Status(context.Background(), j1.JobID)
	require.NoError(t, err)
	s2, err := backend.Status(context.Background(), j2.JobID)
	require.NoError(t, err)
	// With maxTasks=1, exactly one of the two should still be queued while
	// the other is started (order between them is not guaranteed).
	startedCount := 0
	for _, s := range []queue.Status{s1.Status, s2.Status} {
		if s == queue.StatusStarted {
			startedCount++
		}
	}
	assert.Equal(t, 1, startedCount)

	waitForStatus(t, backend, j1.JobID, queue.StatusFinished)
	waitForStatus(t, backend, j2.JobID, queue.StatusFinished)
}

func TestPool_CancelStopsAJobsContext(t *testing.T) {
	backend := queue.NewMemoryBackend("default")
	disp := &fakeDispatcher{delay: 500 * time.Millisecond}
	pool := NewPool(backend, disp, 2, nil, context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pool.Run(ctx)

	job, err := backend.Enqueue(context.Background(), queue.EnqueueInput{RunType: queue.RunTypeRender, ProjectID: "p1", NarrationMode: "unified"})
	require.NoError(t, err)

	waitForStatus(t, backend, job.JobID, queue.StatusStarted)
	pool.Cancel(job.JobID)

	failed := waitForStatus(t, backend, job.JobID, queue.StatusFailed)
	assert.Equal(t, "worker shutdown during processing", failed.Error)
}
