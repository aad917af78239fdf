package network

import (
	"strconv"
	"time"

	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/metrics"
)

type Peer struct {
	ID     int
	Client NetworkClient
}

// NetworkBroadcaster sends every message to the peers, each in its own
// goroutine bounded by the timeout. Failed deliveries are logged and
// counted, never retried.
type NetworkBroadcaster struct {
	id      int
	peers   []Peer
	timeout time.Duration
	log     logging.Logger
}

// NewNetworkBroadcaster skips the peer of the id itself.
func NewNetworkBroadcaster(id int, peers []Peer, timeout time.Duration) *NetworkBroadcaster {
	var others []Peer
	for _, p := range peers {
		if p.ID == id {
			continue
		}
		others = append(others, p)
	}

	return &NetworkBroadcaster{
		id:      id,
		peers:   others,
		timeout: timeout,
		log:     log.New(logging.Ctx{"node": id}),
	}
}

func (b *NetworkBroadcaster) Peers() []Peer {
	return b.peers
}

func (b *NetworkBroadcaster) Broadcast(m consensus.Message) {
	for _, peer := range b.peers {
		go b.send(peer, m)
	}
}

func (b *NetworkBroadcaster) send(peer Peer, m consensus.Message) {
	begin := time.Now()

	ctx, cancel := newTimeoutContext(b.timeout)
	defer cancel()

	status := metrics.TransportStatusSent
	if err := peer.Client.SendMessage(ctx, m); err != nil {
		status = metrics.TransportStatusFailed
		b.log.Warn(
			"failed to send message",
			"peer", peer.ID,
			"endpoint", peer.Client.Endpoint(),
			"message", m,
			"error", err,
		)
	} else {
		b.log.Debug("message sent", "peer", peer.ID, "message", m)
	}

	metrics.Transport.Observe(strconv.Itoa(peer.ID), status, begin)
}
