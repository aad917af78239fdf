package metrics

import (
	"runtime"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"boscoin.io/benor/lib/version"
)

// Build is always 1; the build of the binary is in its labels.
var Build metrics.Gauge = discard.NewGauge()

func PromBuild() metrics.Gauge {
	return prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build of the running binary.",
	}, []string{"version", "git_commit", "go_version"})
}

func setBuild(g metrics.Gauge) {
	g.With(
		"version", version.Version,
		"git_commit", version.GitCommit,
		"go_version", runtime.Version(),
	).Set(1)
}
