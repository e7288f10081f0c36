package queue

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryBackend is an in-process Backend for local development and
// tests, mirroring the teacher's memoryCache fallback shape (a mutex-
// guarded map plus an explicit FIFO order) rather than go-redis.
type MemoryBackend struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	pending []string
	queueName string
	now     func() time.Time
}

// NewMemoryBackend returns an empty, ready-to-use MemoryBackend.
func NewMemoryBackend(queueName string) *MemoryBackend {
	return &MemoryBackend{
		jobs:      make(map[string]*Job),
		queueName: queueName,
		now:       time.Now,
	}
}

func (b *MemoryBackend) Enqueue(ctx context.Context, in EnqueueInput) (*Job, error) {
	id, err := newJobID()
	if err != nil {
		return nil, err
	}
	queueName := in.QueueName
	if queueName == "" {
		queueName = b.queueName
	}
	now := b.now()
	job := &Job{
		JobID:         id,
		RunType:       in.RunType,
		ProjectID:     in.ProjectID,
		ExecutionMode: in.ExecutionMode,
		NarrationMode: in.NarrationMode,
		FuncName:      in.FuncName,
		Status:        StatusQueued,
		QueuedAt:      now,
		EnqueuedAt:    now,
		QueueName:     queueName,
	}

	b.mu.Lock()
	b.jobs[id] = job
	b.pending = append(b.pending, id)
	b.mu.Unlock()

	cp := *job
	return &cp, nil
}

func (b *MemoryBackend) Dequeue(ctx context.Context) (*Job, error) {
	for {
		b.mu.Lock()
		if len(b.pending) > 0 {
			id := b.pending[0]
			b.pending = b.pending[1:]
			job := b.jobs[id]
			b.mu.Unlock()
			cp := *job
			return &cp, nil
		}
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (b *MemoryBackend) Status(ctx context.Context, jobID string) (*Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[jobID]
	if !ok {
		return nil, &NotFoundError{JobID: jobID}
	}
	cp := *job
	return &cp, nil
}

func (b *MemoryBackend) MarkStarted(ctx context.Context, jobID string) error {
	return b.update(jobID, func(j *Job) {
		t := b.now()
		j.Status = StatusStarted
		j.StartedAt = &t
	})
}

func (b *MemoryBackend) MarkFinished(ctx context.Context, jobID string, result any) error {
	return b.update(jobID, func(j *Job) {
		t := b.now()
		j.Status = StatusFinished
		j.EndedAt = &t
		j.Result = result
	})
}

func (b *MemoryBackend) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	return b.update(jobID, func(j *Job) {
		t := b.now()
		j.Status = StatusFailed
		j.EndedAt = &t
		j.Error = truncateError(errMsg)
	})
}

func (b *MemoryBackend) update(jobID string, mutate func(*Job)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[jobID]
	if !ok {
		return &NotFoundError{JobID: jobID}
	}
	mutate(job)
	return nil
}

func (b *MemoryBackend) Depth(ctx context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.pending)), nil
}

func (b *MemoryBackend) Close() error { return nil }

func newJobID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return "job_" + id.String(), nil
}
