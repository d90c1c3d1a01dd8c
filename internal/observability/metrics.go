package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "sitepnl"

// NewRegistry returns the registry served on /metrics with the Go runtime
// and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

type Metrics struct {
	computeDuration *prometheus.HistogramVec
	computeSites    prometheus.Histogram
	siteFailures    prometheus.Counter
	providerErrors  *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	rateLimited     prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		computeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pnl",
			Name:      "compute_duration_seconds",
			Help:      "Duration of P&L computations.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
		computeSites: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pnl",
			Name:      "compute_sites",
			Help:      "Number of sites per P&L computation.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		siteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pnl",
			Name:      "site_failures_total",
			Help:      "Sites whose inputs could not be loaded.",
		}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pnl",
			Name:      "provider_errors_total",
			Help:      "Data provider failures absorbed by a revenue component.",
		}, []string{"component"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		m.computeDuration,
		m.computeSites,
		m.siteFailures,
		m.providerErrors,
		m.httpRequests,
		m.httpDuration,
		m.rateLimited,
	)
	return m
}

func (m *Metrics) ObserveCompute(duration time.Duration, sites int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.computeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.computeSites.Observe(float64(sites))
}

func (m *Metrics) SiteFailed() {
	m.siteFailures.Inc()
}

func (m *Metrics) ProviderError(component string) {
	m.providerErrors.WithLabelValues(component).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}
