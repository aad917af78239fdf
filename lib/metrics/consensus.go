package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// ConsensusMetrics is labeled by node id, so the nodes of an in-process
// network share one registry.
type ConsensusMetrics struct {
	Round     metrics.Gauge
	Decided   metrics.Gauge
	Value     metrics.Gauge
	Rounds    metrics.Counter
	CoinFlips metrics.Counter
	Received  metrics.Counter
	Rejected  metrics.Counter
	Malformed metrics.Counter
}

func (c *ConsensusMetrics) SetRound(node string, round uint64) {
	c.Round.With("node", node).Set(float64(round))
}

func (c *ConsensusMetrics) SetDecided(node string, x uint8) {
	c.Decided.With("node", node).Set(1)
	c.Value.With("node", node).Set(float64(x))
}

func (c *ConsensusMetrics) AddRound(node string, coin bool) {
	c.Rounds.With("node", node).Add(1)
	if coin {
		c.CoinFlips.With("node", node).Add(1)
	}
}

func PromConsensusMetrics() *ConsensusMetrics {
	return &ConsensusMetrics{
		Round: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: ConsensusSubsystem,
			Name:      "round",
			Help:      "Current round of the node.",
		}, []string{"node"}),
		Decided: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: ConsensusSubsystem,
			Name:      "decided",
			Help:      "1 once the node has decided.",
		}, []string{"node"}),
		Value: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: ConsensusSubsystem,
			Name:      "value",
			Help:      "Decided value of the node.",
		}, []string{"node"}),
		Rounds: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ConsensusSubsystem,
			Name:      "rounds_total",
			Help:      "Total number of evaluated rounds.",
		}, []string{"node"}),
		CoinFlips: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ConsensusSubsystem,
			Name:      "coin_flips_total",
			Help:      "Total number of rounds without majority.",
		}, []string{"node"}),
		Received: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ConsensusSubsystem,
			Name:      "messages_received_total",
			Help:      "Total number of accepted messages.",
		}, []string{"node"}),
		Rejected: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ConsensusSubsystem,
			Name:      "messages_rejected_total",
			Help:      "Total number of messages rejected by a killed or faulty node.",
		}, []string{"node"}),
		Malformed: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ConsensusSubsystem,
			Name:      "messages_malformed_total",
			Help:      "Total number of dropped malformed messages.",
		}, []string{"node"}),
	}
}

func NopConsensusMetrics() *ConsensusMetrics {
	return &ConsensusMetrics{
		Round:     discard.NewGauge(),
		Decided:   discard.NewGauge(),
		Value:     discard.NewGauge(),
		Rounds:    discard.NewCounter(),
		CoinFlips: discard.NewCounter(),
		Received:  discard.NewCounter(),
		Rejected:  discard.NewCounter(),
		Malformed: discard.NewCounter(),
	}
}
