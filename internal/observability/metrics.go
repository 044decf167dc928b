// Package observability holds the Prometheus collectors shared by the API
// server and the workers.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gymadmin"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route template, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route template and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	activityAppends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "activity",
		Name:      "appends_total",
		Help:      "Activity-log appends by action and outcome.",
	}, []string{"action", "outcome"})

	eventPublishes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "publishes_total",
		Help:      "Activity event publishes by outcome.",
	}, []string{"outcome"})

	expiredSubscriptions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "subscriptions_expired_total",
		Help:      "Subscriptions marked expired by the expiry sweep.",
	})

	lastSweepGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "last_expiry_sweep_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed expiry sweep.",
	})

	reportCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reports",
		Name:      "cache_lookups_total",
		Help:      "Report cache lookups by result.",
	}, []string{"result"})

	rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequests,
		httpDuration,
		activityAppends,
		eventPublishes,
		expiredSubscriptions,
		lastSweepGauge,
		reportCache,
		rateLimited,
	)
}

// RecordHTTPRequest observes one completed request.
func RecordHTTPRequest(route, method string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func RecordActivityAppend(action string, err error) {
	activityAppends.WithLabelValues(action, outcome(err)).Inc()
}

func RecordEventPublish(err error) {
	eventPublishes.WithLabelValues(outcome(err)).Inc()
}

// RecordExpirySweep counts expired subscriptions and moves the sweep
// watermark.
func RecordExpirySweep(expired int, at time.Time) {
	expiredSubscriptions.Add(float64(expired))
	if !at.IsZero() {
		lastSweepGauge.Set(float64(at.Unix()))
	}
}

func RecordReportCache(hit bool) {
	if hit {
		reportCache.WithLabelValues("hit").Inc()
		return
	}
	reportCache.WithLabelValues("miss").Inc()
}

func RecordRateLimited() {
	rateLimited.Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
