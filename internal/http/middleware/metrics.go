// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic: request
// counts, latencies, in-flight concurrency, and response sizes. Labels are
// limited to method, registered route path, and status code to keep
// cardinality bounded.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microblog",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// Status is omitted from the latency histogram to keep its cardinality low.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "microblog",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "microblog",
			Name:      "http_requests_inflight",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	// Buckets tuned for JSON payloads: feed pages dominate the upper range.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "microblog",
			Name:      "http_response_size_bytes",
			Help:      "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 5 << 10, 10 << 10,
				50 << 10, 100 << 10, 500 << 10, 1 << 20,
			},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize)
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
// The "path" label uses the registered route (c.FullPath()) to avoid
// unbounded cardinality from raw URLs; unmatched routes fall back to the raw
// path.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			// Hijacked connections report -1; skip those.
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
