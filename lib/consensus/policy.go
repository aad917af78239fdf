package consensus

import (
	"encoding/json"

	"boscoin.io/benor/lib/errors"
)

// ThresholdPolicy derives the quorum and majority of a network of `n`
// nodes tolerating `f` faulty nodes.
type ThresholdPolicy struct {
	n int
	f int
}

func NewThresholdPolicy(n, f int) (ThresholdPolicy, error) {
	if n < 1 || f < 0 || f >= n {
		return ThresholdPolicy{}, errors.InvalidThreshold.Clone().SetData("n", n).SetData("f", f)
	}

	return ThresholdPolicy{n: n, f: f}, nil
}

func (p ThresholdPolicy) Nodes() int {
	return p.n
}

func (p ThresholdPolicy) Faults() int {
	return p.f
}

// Required is the number of current round votes a node waits for.
func (p ThresholdPolicy) Required() int {
	return p.n - p.f
}

// Majority is the vote count one value needs to be decided.
func (p ThresholdPolicy) Majority() int {
	return p.Required()/2 + 1
}

// CanDecide reports whether the fault count still allows a safe majority.
func (p ThresholdPolicy) CanDecide() bool {
	return p.n > 2*p.f
}

func (p ThresholdPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"n":          p.n,
		"f":          p.f,
		"required":   p.Required(),
		"majority":   p.Majority(),
		"can_decide": p.CanDecide(),
	})
}
