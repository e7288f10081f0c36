package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is the production Backend: a Redis list holds pending job
// ids (LPUSH/BRPOP for FIFO ordering), and each job's full record lives
// as a JSON string under "<prefix>:job:<id>", mirroring the teacher's
// own RedisCache's "serialize to JSON, one key per value" shape.
type RedisBackend struct {
	client    *redis.Client
	prefix    string
	queueName string
	now       func() time.Time
}

// RedisConfig mirrors the teacher's cache.RedisConfig shape.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisBackend dials queueURL (a redis:// or rediss:// URL, parsed by
// redis.ParseURL; a bare host:port is rejected) and verifies the
// connection with a bounded Ping, exactly as the teacher's NewRedisCache
// does before returning.
func NewRedisBackend(queueURL, queueName string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(queueURL)
	if err != nil {
		return nil, fmt.Errorf("parsing queue url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisBackend{client: client, prefix: "narrated_demo", queueName: queueName, now: time.Now}, nil
}

func (b *RedisBackend) jobKey(id string) string   { return fmt.Sprintf("%s:job:%s", b.prefix, id) }
func (b *RedisBackend) listKey(name string) string { return fmt.Sprintf("%s:queue:%s", b.prefix, name) }

func (b *RedisBackend) Enqueue(ctx context.Context, in EnqueueInput) (*Job, error) {
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

	if err := b.save(ctx, job); err != nil {
		return nil, err
	}
	if err := b.client.LPush(ctx, b.listKey(queueName), id).Err(); err != nil {
		return nil, fmt.Errorf("pushing job %s onto queue: %w", id, err)
	}
	return job, nil
}

func (b *RedisBackend) Dequeue(ctx context.Context) (*Job, error) {
	res, err := b.client.BRPop(ctx, 5*time.Second, b.listKey(b.queueName)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeueing from %s: %w", b.queueName, err)
	}
	// res is [list-key, value]
	return b.Status(ctx, res[1])
}

func (b *RedisBackend) Status(ctx context.Context, jobID string) (*Job, error) {
	data, err := b.client.Get(ctx, b.jobKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, &NotFoundError{JobID: jobID}
	}
	if err != nil {
		return nil, fmt.Errorf("fetching job %s: %w", jobID, err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decoding job %s: %w", jobID, err)
	}
	return &job, nil
}

func (b *RedisBackend) MarkStarted(ctx context.Context, jobID string) error {
	return b.update(ctx, jobID, func(j *Job) {
		t := b.now()
		j.Status = StatusStarted
		j.StartedAt = &t
	})
}

func (b *RedisBackend) MarkFinished(ctx context.Context, jobID string, result any) error {
	return b.update(ctx, jobID, func(j *Job) {
		t := b.now()
		j.Status = StatusFinished
		j.EndedAt = &t
		j.Result = result
	})
}

func (b *RedisBackend) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	return b.update(ctx, jobID, func(j *Job) {
		t := b.now()
		j.Status = StatusFailed
		j.EndedAt = &t
		j.Error = truncateError(errMsg)
	})
}

func (b *RedisBackend) update(ctx context.Context, jobID string, mutate func(*Job)) error {
	job, err := b.Status(ctx, jobID)
	if err != nil {
		return err
	}
	mutate(job)
	return b.save(ctx, job)
}

func (b *RedisBackend) save(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.JobID, err)
	}
	if err := b.client.Set(ctx, b.jobKey(job.JobID), data, 0).Err(); err != nil {
		return fmt.Errorf("storing job %s: %w", job.JobID, err)
	}
	return nil
}

func (b *RedisBackend) Depth(ctx context.Context) (int64, error) {
	n, err := b.client.LLen(ctx, b.listKey(b.queueName)).Result()
	if err != nil {
		return 0, fmt.Errorf("reading queue depth: %w", err)
	}
	return n, nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
