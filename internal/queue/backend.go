package queue

import "context"

// Backend is the durable job queue a Gateway drives, per spec.md §4.9.
// RedisBackend is the production implementation; MemoryBackend backs
// local runs and tests. Both are safe for concurrent use by many
// goroutines; only RedisBackend can be shared by the API process
// (enqueue/status) and worker process (dequeue/mark*), since
// MemoryBackend's jobs live inside one process.
type Backend interface {
	// Enqueue persists a new job in StatusQueued and returns its id.
	Enqueue(ctx context.Context, in EnqueueInput) (*Job, error)

	// Dequeue blocks (up to the backend's own polling behavior) for the
	// next queued job, or returns nil, nil if ctx is done first.
	Dequeue(ctx context.Context) (*Job, error)

	// Status returns the current record for jobID, or *NotFoundError.
	Status(ctx context.Context, jobID string) (*Job, error)

	// MarkStarted/MarkFinished/MarkFailed transition a job already
	// returned by Dequeue. Only the worker process calls these.
	MarkStarted(ctx context.Context, jobID string) error
	MarkFinished(ctx context.Context, jobID string, result any) error
	MarkFailed(ctx context.Context, jobID string, errMsg string) error

	// Depth reports the number of jobs currently queued (not yet
	// dequeued), for the depth gauge.
	Depth(ctx context.Context) (int64, error)

	Close() error
}
