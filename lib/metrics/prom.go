package metrics

import (
	"sync"
)

var initPrometheusOnce sync.Once

// InitPrometheusMetrics replaces the nop metrics by prometheus ones. The
// collectors are registered only once per process.
func InitPrometheusMetrics() {
	initPrometheusOnce.Do(func() {
		Build = PromBuild()
		Consensus = PromConsensusMetrics()
		Transport = PromTransportMetrics()
		API = PromAPIMetrics()

		setBuild(Build)
	})
}
