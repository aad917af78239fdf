package consensus

import (
	"encoding/json"
)

// NodeState is a snapshot of a node. `X`, `Decided` and `K` are nil for a
// faulty node.
type NodeState struct {
	Killed  bool    `json:"killed"`
	X       *Value  `json:"x"`
	Decided *bool   `json:"decided"`
	K       *uint64 `json:"k"`
}

func (s NodeState) IsFaulty() bool {
	return s.X == nil && s.Decided == nil && s.K == nil
}

func (s NodeState) IsDecided() bool {
	return s.Decided != nil && *s.Decided
}

func (s NodeState) Serialize() ([]byte, error) {
	return json.Marshal(s)
}

func (s NodeState) String() string {
	b, _ := s.Serialize()
	return string(b)
}
