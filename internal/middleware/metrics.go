package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "missiondesk",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "missiondesk",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 15, 60},
		},
		[]string{"method", "route"},
	)

	AnalysisCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "missiondesk",
			Name:      "analyses_total",
			Help:      "AI analyses by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	registerOnce sync.Once
)

// RegisterMetrics registers the collectors once on the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter, RequestDuration, AnalysisCounter)
	})
}

// ObserveAnalysis counts one analysis of kind ("submission", "plan_task", "verdict").
func ObserveAnalysis(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	AnalysisCounter.WithLabelValues(kind, outcome).Inc()
}

// Metrics records request count and latency per route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		RequestCounter.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// MetricsHandler serves the Prometheus exposition format.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
