package node

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/network"
)

// PeerReadiness is the gate of a node running alone; the peers are ready
// once they answer the status request. Peers seen ready are kept in the
// cache and are not asked again.
type PeerReadiness struct {
	id       int
	peers    []network.Peer
	seen     *lru.Cache
	interval time.Duration
	timeout  time.Duration
	log      logging.Logger
}

func NewPeerReadiness(id int, peers []network.Peer, cacheSize int, interval time.Duration) (*PeerReadiness, error) {
	if cacheSize < len(peers)+1 {
		cacheSize = len(peers) + 1
	}

	seen, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}

	return &PeerReadiness{
		id:       id,
		peers:    peers,
		seen:     seen,
		interval: interval,
		timeout:  interval,
		log:      log.New(logging.Ctx{"node": id}),
	}, nil
}

func (p *PeerReadiness) MarkReady(id int) {
	p.seen.Add(id, true)
}

func (p *PeerReadiness) IsReady(id int) bool {
	return p.seen.Contains(id)
}

// AllReady asks the peers not yet seen ready.
func (p *PeerReadiness) AllReady() bool {
	if !p.seen.Contains(p.id) {
		return false
	}

	ready := true
	for _, peer := range p.peers {
		if peer.ID == p.id || p.seen.Contains(peer.ID) {
			continue
		}

		if !p.probe(peer) {
			ready = false
		}
	}

	return ready
}

func (p *PeerReadiness) probe(peer network.Peer) bool {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if _, err := peer.Client.Status(ctx); err != nil {
		p.log.Debug("peer is not ready", "peer", peer.ID, "error", err)
		return false
	}

	p.log.Debug("peer is ready", "peer", peer.ID)
	p.seen.Add(peer.ID, true)

	return true
}

// Wait polls the peers every interval until all of them are ready or ctx
// is done.
func (p *PeerReadiness) Wait(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if p.AllReady() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
