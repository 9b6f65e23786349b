package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the API and the winback jobs.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDuration     *prometheus.HistogramVec
	leadsEnrolledTotal      prometheus.Counter
	attemptsCreatedTotal    prometheus.Counter
	attemptsDispatchedTotal *prometheus.CounterVec
	dispatchDuration        *prometheus.HistogramVec
	jobRunsTotal            *prometheus.CounterVec
	jobRunDuration          *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "winback_engine",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "winback_engine",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		leadsEnrolledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "winback_engine",
				Name:      "leads_enrolled_total",
				Help:      "Total number of leads enrolled into a winback sequence.",
			},
		),
		attemptsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "winback_engine",
				Name:      "attempts_created_total",
				Help:      "Total number of winback attempts materialized at enrollment.",
			},
		),
		attemptsDispatchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "winback_engine",
				Name:      "attempts_dispatched_total",
				Help:      "Total number of dispatched winback attempts by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "winback_engine",
				Name:      "dispatch_duration_seconds",
				Help:      "Channel handler execution duration in seconds grouped by channel.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"channel"},
		),
		jobRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "winback_engine",
				Name:      "job_runs_total",
				Help:      "Total number of job invocations by job name and result.",
			},
			[]string{"job", "result"},
		),
		jobRunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "winback_engine",
				Name:      "job_run_duration_seconds",
				Help:      "Job invocation duration in seconds by job name.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"job"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.leadsEnrolledTotal,
		m.attemptsCreatedTotal,
		m.attemptsDispatchedTotal,
		m.dispatchDuration,
		m.jobRunsTotal,
		m.jobRunDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncLeadEnrolled() {
	if m == nil {
		return
	}
	m.leadsEnrolledTotal.Inc()
}

func (m *Metrics) AddAttemptsCreated(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.attemptsCreatedTotal.Add(float64(count))
}

func (m *Metrics) IncAttemptDispatched(channel string, outcome string) {
	if m == nil {
		return
	}
	outcomeLabel := strings.TrimSpace(strings.ToLower(outcome))
	if outcomeLabel == "" {
		outcomeLabel = "unknown"
	}
	m.attemptsDispatchedTotal.WithLabelValues(normalizeChannel(channel), outcomeLabel).Inc()
}

func (m *Metrics) ObserveDispatchDuration(channel string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.dispatchDuration.WithLabelValues(normalizeChannel(channel)).Observe(seconds)
}

func (m *Metrics) ObserveJobRun(job string, success bool, duration time.Duration) {
	if m == nil {
		return
	}

	result := "success"
	if !success {
		result = "error"
	}

	m.jobRunsTotal.WithLabelValues(job, result).Inc()
	m.jobRunDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeChannel(channel string) string {
	normalized := strings.ToLower(strings.TrimSpace(channel))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
