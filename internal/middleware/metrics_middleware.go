// internal/middleware/metrics_middleware.go
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	stageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_transitions_total",
			Help: "Total number of committed lead stage transitions",
		},
		[]string{"from", "to"},
	)

	transitionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stage_transition_conflicts_total",
			Help: "Total number of transitions rejected by the optimistic-concurrency guard",
		},
	)

	callsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calls_ingested_total",
			Help: "Total number of call records ingested",
		},
		[]string{"channel"},
	)
)

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordStageTransition(from, to string) {
	stageTransitions.WithLabelValues(from, to).Inc()
}

func RecordTransitionConflict() {
	transitionConflicts.Inc()
}

func RecordCallIngested(channel string) {
	callsIngested.WithLabelValues(channel).Inc()
}
