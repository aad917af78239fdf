package runner

import (
	"sync/atomic"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/network"
	"boscoin.io/benor/lib/node"
)

var testBasePort int64 = 20000

// NewTestConfig makes the config of an in-memory network of n nodes; every
// call gets other endpoints.
func NewTestConfig(n, f int) common.Config {
	conf := common.NewTestConfig()
	conf.Scheme = network.MemoryScheme
	conf.BasePort = int(atomic.AddInt64(&testBasePort, 100))
	conf.Nodes = n
	conf.Faults = f

	return conf
}

// NewTestNodeRunners makes the runners of the network of `conf`; the node
// `i` starts with `values[i]` and the nodes in `faulty` are faulty.
func NewTestNodeRunners(conf common.Config, values []consensus.Value, faulty ...int) (nrs []*NodeRunner, gate *node.ReadinessTracker, err error) {
	gate = node.NewReadinessTracker(conf.Nodes)

	for i := 0; i < conf.Nodes; i++ {
		var nr *NodeRunner
		if nr, err = NewNodeRunner(conf, i, values[i], common.InIntArray(faulty, i), gate); err != nil {
			return
		}
		nrs = append(nrs, nr)
	}

	return
}
