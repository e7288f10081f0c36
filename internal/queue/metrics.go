package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Queue depth gauge and job latency histogram, grounded on the teacher's promauto-registered
// metric style (internal/metrics/admission.go).
var (
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "narrated_demo_queue_depth",
		Help: "Number of jobs currently queued, by queue name.",
	}, []string{"queue_name"})

	JobLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "narrated_demo_job_latency_seconds",
		Help:    "Time from enqueue to job completion, by run_type and outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"run_type", "status"})
)

// ObserveLatency records the enqueue-to-completion latency for a
// finished or failed job.
func ObserveLatency(runType RunType, status Status, seconds float64) {
	JobLatencySeconds.WithLabelValues(string(runType), string(status)).Observe(seconds)
}
