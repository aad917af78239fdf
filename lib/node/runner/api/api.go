package api

import (
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/network"
	"boscoin.io/benor/lib/storage"
)

// API Endpoint patterns
const (
	GetStatusPattern = network.PathStatus
	GetStatePattern  = network.PathState
	StartPattern     = network.PathStart
	StopPattern      = network.PathStop
	GetEventsPattern = network.PathEvents
	GetRoundsPattern = network.PathRounds
	GetRoundPattern  = network.PathRounds + "/{round}"
)

type NetworkHandlerAPI struct {
	id        int
	consensus *consensus.BenOr
	storage   *storage.LevelDBBackend
	urlPrefix string

	// StartNode and StopNode run the start and stop operations of the
	// node runner.
	StartNode func() error
	StopNode  func()
}

func NewNetworkHandlerAPI(id int, c *consensus.BenOr, storage *storage.LevelDBBackend, urlPrefix string) *NetworkHandlerAPI {
	return &NetworkHandlerAPI{
		id:        id,
		consensus: c,
		storage:   storage,
		urlPrefix: urlPrefix,
		StartNode: c.Start,
		StopNode:  c.Stop,
	}
}

func (api NetworkHandlerAPI) HandlerURLPattern(pattern string) string {
	return api.urlPrefix + pattern
}
