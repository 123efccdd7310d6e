package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestDuration)
}

// Middleware records a counter increment and latency observation per request.
// The route pattern is used as the path label to keep cardinality bounded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		requestCounter.WithLabelValues(c.Method(), path, status).Inc()
		requestDuration.WithLabelValues(c.Method(), path, status).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler exposes the prometheus scrape endpoint.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
