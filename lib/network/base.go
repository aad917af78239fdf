package network

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
)

const (
	RouterNameNode   = "node"
	RouterNameAPI    = "api"
	RouterNameMetric = "metrics"
	RouterNameDebug  = "debug"
)

var (
	UrlPathPrefixNode   = fmt.Sprintf("/%s", RouterNameNode)
	UrlPathPrefixAPI    = fmt.Sprintf("/%s", RouterNameAPI)
	UrlPathPrefixDebug  = fmt.Sprintf("/%s", RouterNameDebug)
	UrlPathPrefixMetric = fmt.Sprintf("/%s", RouterNameMetric)
)

// Paths of the handlers; the node paths are under `UrlPathPrefixNode`, the
// others under `UrlPathPrefixAPI`. Every one is also served at the root
// except `PathState`, which is `PathGetState` there.
const (
	PathMessage  = "/message"
	PathStatus   = "/status"
	PathState    = "/state"
	PathGetState = "/getState"
	PathStart    = "/start"
	PathStop     = "/stop"
	PathEvents   = "/events"
	PathRounds   = "/rounds"
)

const (
	ResponseLive             = "live"
	ResponseFaulty           = "faulty"
	ResponseStarted          = "started"
	ResponseKilled           = "killed"
	ResponseMessageProcessed = "Message processed"
)

type Network interface {
	Endpoint() *common.Endpoint
	GetClient(endpoint *common.Endpoint) NetworkClient
	AddHandler(pattern string, handler http.HandlerFunc) *mux.Route
	AddMiddleware(routerName string, mws ...mux.MiddlewareFunc) error

	// AddListenHook adds a function called once the network accepts
	// connections.
	AddListenHook(func())

	// Starts network handling
	// Blocks until finished, either because of an error
	// or because `Stop` was called
	Start() error
	Stop()
	Ready() error
	IsReady() bool
}

type NetworkClient interface {
	Endpoint() *common.Endpoint

	SendMessage(context.Context, consensus.Message) error
	Status(context.Context) (live bool, err error)
	State(context.Context) (consensus.NodeState, error)
	Start(context.Context) error
	Stop(context.Context) error
}
