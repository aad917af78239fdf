//
// Struct that bridges together components of a node
//
// NodeRunner bridges together the network, the round journal and the
// consensus state machine of one node. In this regard, it can be seen as a
// single node, and is used as such in unit tests.
//
package runner

import (
	"fmt"
	"net/http/pprof"
	"path/filepath"
	"strconv"
	"sync"

	ghandlers "github.com/gorilla/handlers"
	logging "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/common/observer"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/errors"
	"boscoin.io/benor/lib/journal"
	"boscoin.io/benor/lib/metrics"
	"boscoin.io/benor/lib/network"
	"boscoin.io/benor/lib/node"
	"boscoin.io/benor/lib/node/runner/api"
	"boscoin.io/benor/lib/storage"
)

type NodeRunner struct {
	id          int
	policy      consensus.ThresholdPolicy
	network     network.Network
	consensus   *consensus.BenOr
	broadcaster *network.NetworkBroadcaster
	gate        node.ReadinessGate
	storage     *storage.LevelDBBackend
	scheduler   *RoundScheduler
	decidedOnce sync.Once

	log logging.Logger

	Conf common.Config
}

// NewNodeRunner makes the node `id` of a network of `conf.Nodes` nodes; it
// listens at `conf.BasePort + id`. A faulty node never takes part in the
// consensus. Without gate, the node asks its peers whether they are ready.
func NewNodeRunner(
	conf common.Config,
	id int,
	initialValue consensus.Value,
	faulty bool,
	gate node.ReadinessGate,
) (nr *NodeRunner, err error) {
	var policy consensus.ThresholdPolicy
	if policy, err = consensus.NewThresholdPolicy(conf.Nodes, conf.Faults); err != nil {
		return
	}
	if id < 0 || id >= conf.Nodes {
		err = errors.InvalidNodeID.Clone().SetData("id", id).SetData("nodes", conf.Nodes)
		return
	}
	if !initialValue.IsValid() {
		err = errors.InvalidValue.Clone().SetData("value", initialValue)
		return
	}

	nodeName := fmt.Sprintf("node-%d", id)

	var nw network.Network
	if nw, err = network.NewNetwork(nodeName, conf.NodeEndpoint(id)); err != nil {
		return
	}

	var peers []network.Peer
	for i := 0; i < conf.Nodes; i++ {
		peers = append(peers, network.Peer{ID: i, Client: nw.GetClient(conf.NodeEndpoint(i))})
	}
	broadcaster := network.NewNetworkBroadcaster(id, peers, conf.SendTimeout)

	if gate == nil {
		if gate, err = node.NewPeerReadiness(id, peers, conf.PeerCacheSize, conf.ReadyInterval); err != nil {
			return
		}
	}

	var st *storage.LevelDBBackend
	if st, err = openStorage(conf.Storage, id); err != nil {
		return
	}

	seed := conf.Seed
	if seed != 0 {
		seed += int64(id)
	}

	nr = &NodeRunner{
		id:          id,
		policy:      policy,
		network:     nw,
		broadcaster: broadcaster,
		gate:        gate,
		storage:     st,
		log:         log.New(logging.Ctx{"node": id}),
		Conf:        conf,
	}
	nr.consensus = consensus.NewBenOr(consensus.Config{
		ID:           id,
		Policy:       policy,
		InitialValue: initialValue,
		Faulty:       faulty,
		Coin:         consensus.NewLocalCoin(seed),
		Broadcaster:  broadcaster,
	})
	nr.scheduler = NewRoundScheduler(nr, conf.RoundInterval)

	nr.log.Debug("NodeRunner created", "endpoint", nw.Endpoint(), "policy", policy, "faulty", faulty)

	return
}

// openStorage gives every node its own directory under a file storage.
func openStorage(uri string, id int) (st *storage.LevelDBBackend, err error) {
	var config *storage.Config
	if config, err = storage.NewConfigFromString(uri); err != nil {
		return
	}
	if config.Scheme == "file" {
		config.Path = filepath.Join(config.Path, fmt.Sprintf("node-%d", id))
	}

	return storage.NewStorage(config)
}

func (nr *NodeRunner) Ready() {
	rateLimitMiddlewareAPI := network.RateLimitMiddleware(nr.log, nr.Conf.RateLimitRuleAPI)
	if err := nr.network.AddMiddleware(network.RouterNameAPI, rateLimitMiddlewareAPI); err != nil {
		nr.log.Error("`network.RateLimitMiddleware` for `RouterNameAPI` has an error", "err", err)
		return
	}
	rateLimitMiddlewareNode := network.RateLimitMiddleware(nr.log, nr.Conf.RateLimitRuleNode)
	if err := nr.network.AddMiddleware(network.RouterNameNode, rateLimitMiddlewareNode); err != nil {
		nr.log.Error("`network.RateLimitMiddleware` for `RouterNameNode` has an error", "err", err)
		return
	}
	if err := nr.network.AddMiddleware(network.RouterNameMetric, rateLimitMiddlewareAPI); err != nil {
		nr.log.Error("`network.RateLimitMiddleware` for `RouterNameMetric` router has an error", "err", err)
		return
	}
	if err := nr.network.AddMiddleware(network.RouterNameDebug, rateLimitMiddlewareAPI); err != nil {
		nr.log.Error("`network.RateLimitMiddleware` for `RouterNameDebug` router has an error", "err", err)
		return
	}

	// BaseRouter's middlewares impact all sub routers.
	if err := nr.network.AddMiddleware("", network.RecoverMiddleware(PrintStackOnPanic)); err != nil {
		nr.log.Error("Middleware has an error", "err", err)
		return
	}

	{ //CORS
		allowedOrigins := ghandlers.AllowedOrigins([]string{"*"})
		allowedMethods := ghandlers.AllowedMethods([]string{"GET", "POST"})
		allowedHeaders := ghandlers.AllowedHeaders(ValidHeaders)

		cors := ghandlers.CORS(allowedOrigins, allowedMethods, allowedHeaders)
		if err := nr.network.AddMiddleware(network.RouterNameAPI, cors, network.MetricsMiddleware); err != nil {
			nr.log.Error("Middleware has an error", "err", err)
			return
		}
	}

	// node handlers
	nodeHandler := NewNetworkHandlerNode(nr.id, nr.consensus, nr.handleRoundResult)

	nr.network.AddHandler(network.UrlPathPrefixNode+network.PathMessage, nodeHandler.MessageHandler).
		Methods("POST")

	nr.network.AddHandler(network.UrlPathPrefixMetric, promhttp.Handler().ServeHTTP)

	// api handlers
	apiHandler := api.NewNetworkHandlerAPI(nr.id, nr.consensus, nr.storage, network.UrlPathPrefixAPI)
	apiHandler.StartNode = nr.StartConsensus
	apiHandler.StopNode = nr.StopConsensus

	nr.network.AddHandler(apiHandler.HandlerURLPattern(api.GetStatusPattern), apiHandler.StatusHandler).
		Methods("GET", "OPTIONS")
	nr.network.AddHandler(apiHandler.HandlerURLPattern(api.GetStatePattern), apiHandler.StateHandler).
		Methods("GET", "OPTIONS")
	nr.network.AddHandler(apiHandler.HandlerURLPattern(api.StartPattern), apiHandler.StartHandler).
		Methods("GET", "POST", "OPTIONS")
	nr.network.AddHandler(apiHandler.HandlerURLPattern(api.StopPattern), apiHandler.StopHandler).
		Methods("GET", "POST", "OPTIONS")
	nr.network.AddHandler(apiHandler.HandlerURLPattern(api.GetEventsPattern), apiHandler.GetEventsHandler).
		Methods("GET")
	nr.network.AddHandler(apiHandler.HandlerURLPattern(api.GetRoundsPattern), apiHandler.GetRoundsHandler).
		Methods("GET", "OPTIONS")
	nr.network.AddHandler(apiHandler.HandlerURLPattern(api.GetRoundPattern), apiHandler.GetRoundHandler).
		Methods("GET", "OPTIONS")

	// the short paths of the first clients
	nr.network.AddHandler(network.PathMessage, nodeHandler.MessageHandler).Methods("POST")
	nr.network.AddHandler(network.PathStatus, apiHandler.StatusHandler).Methods("GET")
	nr.network.AddHandler(network.PathGetState, apiHandler.StateHandler).Methods("GET")
	nr.network.AddHandler(network.PathStart, apiHandler.StartHandler).Methods("GET", "POST")
	nr.network.AddHandler(network.PathStop, apiHandler.StopHandler).Methods("GET", "POST")

	// pprof
	if DebugPProf == true {
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/cmdline", pprof.Cmdline)
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/profile", pprof.Profile)
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/symbol", pprof.Symbol)
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/trace", pprof.Trace)
		nr.network.AddHandler(network.UrlPathPrefixDebug+"/pprof/*", pprof.Index)
	}

	nr.network.AddListenHook(func() {
		nr.log.Debug("listening", "endpoint", nr.network.Endpoint())
		nr.gate.MarkReady(nr.id)
	})

	nr.network.Ready()
}

// Start serves the node; it blocks until the network is stopped.
func (nr *NodeRunner) Start() (err error) {
	nr.log.Debug("NodeRunner started")
	nr.Ready()

	if err = nr.network.Start(); err != nil {
		return
	}

	return
}

// Stop releases the node; unlike `StopConsensus` it does not kill it.
func (nr *NodeRunner) Stop() {
	nr.scheduler.Stop()
	nr.network.Stop()
	if err := nr.storage.Close(); err != nil {
		nr.log.Error("failed to close storage", "error", err)
	}
}

// StartConsensus is the start operation of the node: it sends the first
// vote and schedules the round-advance.
func (nr *NodeRunner) StartConsensus() (err error) {
	switch {
	case nr.consensus.IsKilled():
		err = errors.NodeIsKilled
	case nr.consensus.IsFaulty():
		err = errors.NodeIsFaulty
	case !nr.gate.AllReady():
		err = errors.NodesAreNotReady
	}
	if err != nil {
		nr.log.Debug("failed to start", "error", err)
		return
	}

	if err = nr.consensus.Start(); err != nil {
		nr.log.Debug("failed to start", "error", err)
		return
	}

	nr.log.Info("consensus started", "state", nr.consensus.State())

	state := nr.consensus.State()
	metrics.Consensus.SetRound(strconv.Itoa(nr.id), *state.K)
	observer.Trigger(nr.id, observer.EventStarted, state)

	if state.IsDecided() {
		nr.decided(state)
		return
	}

	nr.scheduler.Start()

	return
}

// StopConsensus kills the node; it answers no more messages.
func (nr *NodeRunner) StopConsensus() {
	if nr.consensus.IsKilled() {
		return
	}

	nr.consensus.Stop()
	nr.scheduler.Stop()

	nr.log.Info("consensus killed", "state", nr.consensus.State())
	observer.Trigger(nr.id, observer.EventKilled, nr.consensus.State())
}

// handleRoundResult records a round evaluated by the message handler or the
// round scheduler.
func (nr *NodeRunner) handleRoundResult(result consensus.RoundResult) {
	rr := journal.NewRoundRecord(nr.id, result)
	if err := rr.Save(nr.storage); err != nil {
		nr.log.Error("failed to save round record", "record", rr, "error", err)
	}

	name := strconv.Itoa(nr.id)
	if !result.Final {
		metrics.Consensus.AddRound(name, result.Coin)
	}

	state := nr.consensus.State()
	if result.Decided {
		nr.decided(state)
		return
	}

	metrics.Consensus.SetRound(name, *state.K)
	observer.Trigger(nr.id, observer.EventRound, state)
}

func (nr *NodeRunner) decided(state consensus.NodeState) {
	nr.decidedOnce.Do(func() {
		nr.log.Info("decided", "x", *state.X, "k", *state.K)

		metrics.Consensus.SetDecided(strconv.Itoa(nr.id), uint8(*state.X))
		observer.Trigger(nr.id, observer.EventDecided, state)
	})
}

func (nr *NodeRunner) ID() int {
	return nr.id
}

func (nr *NodeRunner) Network() network.Network {
	return nr.network
}

func (nr *NodeRunner) Consensus() *consensus.BenOr {
	return nr.consensus
}

func (nr *NodeRunner) Storage() *storage.LevelDBBackend {
	return nr.storage
}

func (nr *NodeRunner) Policy() consensus.ThresholdPolicy {
	return nr.policy
}

func (nr *NodeRunner) Broadcaster() *network.NetworkBroadcaster {
	return nr.broadcaster
}

func (nr *NodeRunner) Scheduler() *RoundScheduler {
	return nr.scheduler
}
