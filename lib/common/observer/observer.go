package observer

import (
	"fmt"

	"github.com/GianlucaGuarini/go-observable"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
)

// NodeObserver carries the transitions of every node running in the
// process.
var NodeObserver = observable.New()

const (
	EventStarted = "started"
	EventRound   = "round"
	EventDecided = "decided"
	EventKilled  = "killed"
	ConditionAll = "*"
)

var EventKinds = []string{EventStarted, EventRound, EventDecided, EventKilled}

// Event is the observable event name of `kind` for the node `id`, e.g.
// "node-3-round".
func Event(id int, kind string) string {
	return fmt.Sprintf("node-%d-%s", id, kind)
}

// Events returns the event names of the given kinds for the node; with no
// kind, every kind.
func Events(id int, kinds ...string) []string {
	if len(kinds) < 1 {
		kinds = EventKinds
	}

	var events []string
	for _, kind := range kinds {
		events = append(events, Event(id, kind))
	}

	return events
}

// NodeEvent is the argument of every node event.
type NodeEvent struct {
	Node  int                 `json:"node"`
	Kind  string              `json:"kind"`
	State consensus.NodeState `json:"state"`
	Time  string              `json:"time"`
}

// Trigger publishes the transition of the node.
func Trigger(id int, kind string, state consensus.NodeState) {
	NodeObserver.Trigger(Event(id, kind), NodeEvent{
		Node:  id,
		Kind:  kind,
		State: state,
		Time:  common.NowISO8601(),
	})
}
