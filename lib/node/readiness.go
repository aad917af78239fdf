package node

import (
	"context"
	"sync"
)

// ReadinessGate tells a node whether every node of the network listens.
// Each node marks itself once its listener is bound.
type ReadinessGate interface {
	AllReady() bool
	MarkReady(id int)
}

// ReadinessTracker is the gate of the nodes running in one process.
type ReadinessTracker struct {
	sync.RWMutex

	n     int
	ready map[int]bool
	done  chan struct{}
}

func NewReadinessTracker(n int) *ReadinessTracker {
	return &ReadinessTracker{
		n:     n,
		ready: map[int]bool{},
		done:  make(chan struct{}),
	}
}

// MarkReady ignores ids outside of the network.
func (r *ReadinessTracker) MarkReady(id int) {
	if id < 0 || id >= r.n {
		log.Warn("unknown node marked ready", "id", id, "n", r.n)
		return
	}

	r.Lock()
	defer r.Unlock()

	if r.ready[id] {
		return
	}
	r.ready[id] = true

	log.Debug("node ready", "id", id, "ready", len(r.ready), "n", r.n)

	if len(r.ready) == r.n {
		close(r.done)
	}
}

func (r *ReadinessTracker) AllReady() bool {
	r.RLock()
	defer r.RUnlock()

	return len(r.ready) == r.n
}

func (r *ReadinessTracker) IsReady(id int) bool {
	r.RLock()
	defer r.RUnlock()

	return r.ready[id]
}

// Done is closed once every node is ready.
func (r *ReadinessTracker) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until every node is ready or ctx is done.
func (r *ReadinessTracker) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
