package consensus

import (
	"math/rand"
	"sync"
	"time"
)

// Coin draws the value a node adopts when a round has no majority. Every
// node flips its own coin.
type Coin interface {
	Flip() Value
}

type LocalCoin struct {
	sync.Mutex
	r *rand.Rand
}

// NewLocalCoin returns a coin seeded with `seed`; 0 seeds it from the clock.
func NewLocalCoin(seed int64) *LocalCoin {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &LocalCoin{r: rand.New(rand.NewSource(seed))}
}

func (c *LocalCoin) Flip() Value {
	c.Lock()
	defer c.Unlock()

	return Value(c.r.Intn(2))
}

type CoinFunc func() Value

func (f CoinFunc) Flip() Value {
	return f()
}
