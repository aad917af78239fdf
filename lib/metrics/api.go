package metrics

import (
	"fmt"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var apiLabels = []string{"endpoint", "method", "status"}

// APIMetrics observes the http requests of a node by route template and
// status class, like `2xx`.
type APIMetrics struct {
	Requests        metrics.Counter
	RequestErrors   metrics.Counter
	RequestDuration metrics.Histogram
}

func StatusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}

func (a *APIMetrics) Observe(endpoint, method string, status int, begin time.Time) {
	lvs := []string{"endpoint", endpoint, "method", method, "status", StatusClass(status)}

	a.Requests.With(lvs...).Add(1)
	if status >= 400 {
		a.RequestErrors.With(lvs...).Add(1)
	}
	a.RequestDuration.With(lvs...).Observe(time.Since(begin).Seconds())
}

func PromAPIMetrics() *APIMetrics {
	return &APIMetrics{
		Requests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "requests_total",
			Help:      "Handled requests.",
		}, apiLabels),
		RequestErrors: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "request_errors_total",
			Help:      "Requests answered with 4xx or 5xx.",
		}, apiLabels),
		RequestDuration: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: APISubsystem,
			Name:      "request_duration_seconds",
			Help:      "Time to answer a request.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, apiLabels),
	}
}

func NopAPIMetrics() *APIMetrics {
	return &APIMetrics{
		Requests:        discard.NewCounter(),
		RequestErrors:   discard.NewCounter(),
		RequestDuration: discard.NewHistogram(),
	}
}
