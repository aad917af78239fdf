package launcher

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	benorerrors "boscoin.io/benor/lib/errors"
	"boscoin.io/benor/lib/network"
	"boscoin.io/benor/lib/node"
	"boscoin.io/benor/lib/node/runner"
)

// Node is the handle of one launched node; it goes through the control
// surface of the node like any other client.
type Node struct {
	id     int
	runner *runner.NodeRunner
	client network.NetworkClient
}

func (n *Node) ID() int {
	return n.id
}

func (n *Node) Runner() *runner.NodeRunner {
	return n.runner
}

func (n *Node) Endpoint() *common.Endpoint {
	return n.client.Endpoint()
}

func (n *Node) Start(ctx context.Context) error {
	return n.client.Start(ctx)
}

func (n *Node) Stop(ctx context.Context) error {
	return n.client.Stop(ctx)
}

func (n *Node) State(ctx context.Context) (consensus.NodeState, error) {
	return n.client.State(ctx)
}

func (n *Node) Status(ctx context.Context) (bool, error) {
	return n.client.Status(ctx)
}

// Network is a set of nodes launched in this process.
type Network struct {
	sync.Mutex

	config NetworkConfig
	conf   common.Config
	nodes  []*Node
	gate   *node.ReadinessTracker

	done      chan struct{}
	failed    chan error
	err       error
	closeOnce sync.Once
}

// LaunchNetwork starts the runners of every node and returns once they all
// listen. The nodes are not started yet; see `StartAll`.
func LaunchNetwork(ctx context.Context, nc NetworkConfig) (*Network, error) {
	return LaunchNetworkWithConfig(ctx, nc, common.NewConfig())
}

func LaunchNetworkWithConfig(ctx context.Context, nc NetworkConfig, base common.Config) (nw *Network, err error) {
	if err = nc.Validate(); err != nil {
		return
	}
	if nc.FaultyCount() > nc.F {
		log.Warn("more faulty nodes than tolerated", "faulty", nc.FaultyCount(), "f", nc.F)
	}

	nw = &Network{
		config: nc,
		conf:   nc.Config(base),
		gate:   node.NewReadinessTracker(nc.N),
		done:   make(chan struct{}),
		failed: make(chan error, nc.N),
	}

	for i := 0; i < nc.N; i++ {
		var nr *runner.NodeRunner
		if nr, err = runner.NewNodeRunner(nw.conf, i, nc.InitialValue(i), nc.IsFaulty(i), nw.gate); err != nil {
			err = errors.Wrapf(err, "failed to make node %d", i)
			nw.closeRunners()
			return
		}

		nw.nodes = append(nw.nodes, &Node{
			id:     i,
			runner: nr,
			client: nr.Network().GetClient(nr.Network().Endpoint()),
		})
	}

	var g errgroup.Group
	for _, n := range nw.nodes {
		n := n
		g.Go(func() error {
			if err := n.runner.Start(); err != nil {
				err = errors.Wrapf(err, "node %d stopped", n.id)
				nw.failed <- err
				return err
			}
			return nil
		})
	}

	go func() {
		err := g.Wait()

		nw.Lock()
		nw.err = err
		nw.Unlock()

		close(nw.done)
	}()

	select {
	case <-nw.gate.Done():
		log.Debug("network launched", "n", nc.N, "f", nc.F, "endpoint", nw.conf.NodeEndpoint(0))
		return
	case err = <-nw.failed:
	case <-ctx.Done():
		err = errors.Wrap(ctx.Err(), "nodes are not ready")
	}

	nw.Close()
	nw = nil

	return
}

func (nw *Network) Config() NetworkConfig {
	return nw.config
}

func (nw *Network) Nodes() []*Node {
	return nw.nodes
}

func (nw *Network) Node(id int) *Node {
	if id < 0 || id >= len(nw.nodes) {
		return nil
	}

	return nw.nodes[id]
}

// Err is the first failure of a runner, once they are all stopped.
func (nw *Network) Err() error {
	nw.Lock()
	defer nw.Unlock()

	return nw.err
}

// StartAll starts every node which is not faulty.
func (nw *Network) StartAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, n := range nw.nodes {
		if nw.config.IsFaulty(n.id) {
			continue
		}

		n := n
		g.Go(func() error {
			if err := n.Start(ctx); err != nil {
				return errors.Wrapf(err, "failed to start node %d", n.id)
			}
			return nil
		})
	}

	return g.Wait()
}

func (nw *Network) States(ctx context.Context) (states []consensus.NodeState, err error) {
	for _, n := range nw.nodes {
		var state consensus.NodeState
		if state, err = n.State(ctx); err != nil {
			err = errors.Wrapf(err, "failed to get state of node %d", n.id)
			return
		}
		states = append(states, state)
	}

	return
}

// WaitDecided polls the states until every node which is neither faulty
// nor killed has decided.
func (nw *Network) WaitDecided(ctx context.Context) (states []consensus.NodeState, err error) {
	ticker := time.NewTicker(nw.conf.RoundInterval)
	defer ticker.Stop()

	timeout := func() error {
		return benorerrors.ConsensusTimeout.Clone().SetData("states", states)
	}

	for {
		states, err = nw.States(ctx)
		switch {
		case err == nil && isFinished(states):
			return
		case ctx.Err() != nil:
			err = timeout()
			return
		case err != nil:
			return
		}

		select {
		case <-ctx.Done():
			err = timeout()
			return
		case <-ticker.C:
		}
	}
}

func isFinished(states []consensus.NodeState) bool {
	for _, state := range states {
		if state.IsFaulty() || state.Killed {
			continue
		}
		if !state.IsDecided() {
			return false
		}
	}

	return true
}

func (nw *Network) closeRunners() {
	for _, n := range nw.nodes {
		n.runner.Stop()
	}
}

// Close stops every runner and waits for them.
func (nw *Network) Close() error {
	nw.closeOnce.Do(func() {
		nw.closeRunners()
		<-nw.done
	})

	return nw.Err()
}

// Done is closed once every runner is stopped.
func (nw *Network) Done() <-chan struct{} {
	return nw.done
}
