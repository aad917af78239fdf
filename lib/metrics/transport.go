package metrics

import (
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type TransportMetrics struct {
	Messages        metrics.Counter
	DurationSeconds metrics.Histogram
}

// Observe counts one delivery to the peer `node`.
func (t *TransportMetrics) Observe(node, status string, begin time.Time) {
	lvs := []string{"node", node, "status", status}

	t.Messages.With(lvs...).Add(1)
	t.DurationSeconds.With(lvs...).Observe(time.Since(begin).Seconds())
}

func PromTransportMetrics() *TransportMetrics {
	return &TransportMetrics{
		Messages: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: TransportSubsystem,
			Name:      "messages_total",
			Help:      "Total number of messages sent to peers.",
		}, []string{"node", "status"}),
		DurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: TransportSubsystem,
			Name:      "send_duration_seconds",
		}, []string{"node", "status"}),
	}
}

func NopTransportMetrics() *TransportMetrics {
	return &TransportMetrics{
		Messages:        discard.NewCounter(),
		DurationSeconds: discard.NewHistogram(),
	}
}
