package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "student_mess",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "student_mess",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "student_mess",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	reviewsAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "student_mess",
			Subsystem: "reviews",
			Name:      "added_total",
			Help:      "Total number of reviews accepted.",
		},
		[]string{"target"},
	)

	subscriptionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "student_mess",
			Subsystem: "subscriptions",
			Name:      "created_total",
			Help:      "Total number of subscriptions created.",
		},
	)

	subscriptionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "student_mess",
			Subsystem: "subscriptions",
			Name:      "expired_total",
			Help:      "Total number of subscriptions marked expired by the sweep.",
		},
	)

	orderStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "student_mess",
			Subsystem: "orders",
			Name:      "status_changes_total",
			Help:      "Total number of recorded order status changes.",
		},
		[]string{"status"},
	)

	statsAggregateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "student_mess",
			Subsystem: "stats",
			Name:      "aggregate_failures_total",
			Help:      "Provider stats aggregates that failed and fell back to zero.",
		},
		[]string{"aggregate"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		reviewsAdded,
		subscriptionsCreated,
		subscriptionsExpired,
		orderStatusChanges,
		statsAggregateFailures,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records request count, latency and in-flight gauge per route template.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordReview counts an accepted review. target is "provider" or "menu_item".
func RecordReview(target string) {
	reviewsAdded.WithLabelValues(target).Inc()
}

func RecordSubscription() {
	subscriptionsCreated.Inc()
}

func RecordExpired(n int) {
	if n > 0 {
		subscriptionsExpired.Add(float64(n))
	}
}

func RecordStatusChange(status string) {
	orderStatusChanges.WithLabelValues(status).Inc()
}

func RecordAggregateFailure(aggregate string) {
	statsAggregateFailures.WithLabelValues(aggregate).Inc()
}
