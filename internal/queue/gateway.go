package queue

import "context"

// Gateway is the thin façade the HTTP API talks to: Enqueue from request
// handlers (which also refreshes the depth gauge) and Status for
// GET /jobs/{id}. The worker uses a Backend directly.
type Gateway struct {
	Backend Backend
}

func NewGateway(b Backend) *Gateway {
	return &Gateway{Backend: b}
}

func (g *Gateway) Enqueue(ctx context.Context, in EnqueueInput) (*Job, error) {
	job, err := g.Backend.Enqueue(ctx, in)
	if err != nil {
		return nil, err
	}
	if depth, derr := g.Backend.Depth(ctx); derr == nil {
		QueueDepth.WithLabelValues(job.QueueName).Set(float64(depth))
	}
	return job, nil
}

func (g *Gateway) Status(ctx context.Context, jobID string) (*Job, error) {
	return g.Backend.Status(ctx, jobID)
}
