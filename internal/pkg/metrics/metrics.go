package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeRetry     = "retry"
	OutcomePermanent = "permanent"
)

var (
	// ReviewsCreated counts reviews persisted by the API
	ReviewsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Total number of reviews created",
	})

	// JobsEnqueued counts jobs accepted by the queue, by job name and backend
	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_enqueued_total",
			Help: "Total number of background jobs enqueued",
		},
		[]string{"job", "backend"},
	)

	// JobsEnqueueFailed counts jobs the queue refused
	JobsEnqueueFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_enqueue_failed_total",
			Help: "Total number of background jobs that could not be enqueued",
		},
		[]string{"job", "backend"},
	)

	// JobsProcessed counts executed jobs by outcome
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Total number of background jobs executed",
		},
		[]string{"job", "outcome"},
	)

	// HTTPRequestsTotal counts served HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes HTTP latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
