package resource

import (
	"encoding/json"

	"github.com/nvellon/hal"

	"boscoin.io/benor/lib/consensus"
)

// NodeState renders the state of a node; the fields of a faulty node are
// null.
type NodeState struct {
	s consensus.NodeState
}

func NewNodeState(s consensus.NodeState) *NodeState {
	return &NodeState{s: s}
}

func (ns NodeState) GetMap() hal.Entry {
	return hal.Entry{
		"killed":  ns.s.Killed,
		"x":       ns.s.X,
		"decided": ns.s.Decided,
		"k":       ns.s.K,
	}
}

func (ns NodeState) Resource() *hal.Resource {
	r := hal.NewResource(ns, ns.LinkSelf())
	r.AddLink("status", hal.NewLink(URLStatus))
	r.AddLink("rounds", hal.NewLink(URLRounds))
	r.AddLink("events", hal.NewLink(URLEvents))

	return r
}

func (ns NodeState) LinkSelf() string {
	return URLState
}

func (ns NodeState) MarshalJSON() ([]byte, error) {
	return json.Marshal(ns.Resource().GetMap())
}
