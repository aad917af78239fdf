package consensus

import (
	"sync"

	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/errors"
)

// Broadcaster sends a message to every peer except the node itself.
// Broadcast must not wait for the delivery.
type Broadcaster interface {
	Broadcast(Message)
}

type BroadcasterFunc func(Message)

func (f BroadcasterFunc) Broadcast(m Message) {
	f(m)
}

// RoundResult describes one evaluation of the inbox by `Advance`.
type RoundResult struct {
	Round   uint64 `json:"round"`
	Count0  int    `json:"count0"`
	Count1  int    `json:"count1"`
	X       Value  `json:"x"`
	Decided bool   `json:"decided"`
	Coin    bool   `json:"coin"`
	Final   bool   `json:"final"`
}

type Config struct {
	ID           int
	Policy       ThresholdPolicy
	InitialValue Value
	Faulty       bool
	Coin         Coin
	Broadcaster  Broadcaster
}

// BenOr is the state machine of one node. Every exported method is safe
// for concurrent use; messages produced while the state is locked are
// broadcast after it is released.
type BenOr struct {
	sync.Mutex

	id     int
	policy ThresholdPolicy
	faulty bool

	killed  bool
	started bool
	x       Value
	decided bool
	k       uint64

	inbox        *Inbox
	decisionSent bool

	coin        Coin
	broadcaster Broadcaster

	log logging.Logger
}

func NewBenOr(config Config) *BenOr {
	coin := config.Coin
	if coin == nil {
		coin = NewLocalCoin(0)
	}

	broadcaster := config.Broadcaster
	if broadcaster == nil {
		broadcaster = BroadcasterFunc(func(Message) {})
	}

	b := &BenOr{
		id:          config.ID,
		policy:      config.Policy,
		faulty:      config.Faulty,
		x:           config.InitialValue,
		inbox:       NewInbox(),
		coin:        coin,
		broadcaster: broadcaster,
		log:         log.New(logging.Ctx{"node": config.ID}),
	}

	b.log.Debug("BenOr created", "policy", b.policy, "x", b.x, "faulty", b.faulty)

	return b
}

func (b *BenOr) ID() int {
	return b.id
}

func (b *BenOr) Policy() ThresholdPolicy {
	return b.policy
}

func (b *BenOr) IsFaulty() bool {
	return b.faulty
}

func (b *BenOr) IsKilled() bool {
	b.Lock()
	defer b.Unlock()

	return b.killed
}

func (b *BenOr) IsStarted() bool {
	b.Lock()
	defer b.Unlock()

	return b.started
}

func (b *BenOr) IsDecided() bool {
	b.Lock()
	defer b.Unlock()

	return b.decided
}

// IsFinished reports whether round-advance has become a no-op for good.
func (b *BenOr) IsFinished() bool {
	b.Lock()
	defer b.Unlock()

	return b.faulty || b.killed || b.decided
}

func (b *BenOr) InboxSize() int {
	b.Lock()
	defer b.Unlock()

	return b.inbox.Len()
}

func (b *BenOr) State() NodeState {
	b.Lock()
	defer b.Unlock()

	state := NodeState{Killed: b.killed}
	if b.faulty {
		return state
	}

	x, decided, k := b.x, b.decided, b.k
	state.X = &x
	state.Decided = &decided
	state.K = &k

	return state
}

// Start sends the first vote of the node. A network of one node decides
// its own value at once.
func (b *BenOr) Start() error {
	b.Lock()

	if b.faulty {
		b.Unlock()
		return errors.NodeIsFaulty
	}
	if b.killed {
		b.Unlock()
		return errors.NodeIsKilled
	}
	if b.started {
		b.Unlock()
		return errors.NodeAlreadyStarted
	}

	b.started = true

	var out []Message
	switch {
	case b.decided:
	case b.policy.Nodes() == 1:
		b.decided = true
		b.log.Debug("single node decided", "x", b.x)
	default:
		out = b.vote()
	}
	b.Unlock()

	b.send(out)

	return nil
}

// Stop kills the node. It can not be undone.
func (b *BenOr) Stop() {
	b.Lock()
	defer b.Unlock()

	b.killed = true
	b.log.Debug("killed")
}

// Intake buffers the message and tries to advance the round. Votes of
// rounds already evaluated can never be counted again, so they are dropped.
func (b *BenOr) Intake(m Message) (result RoundResult, evaluated bool, err error) {
	b.Lock()

	if b.faulty {
		b.Unlock()
		err = errors.NodeIsFaulty
		return
	}
	if b.killed {
		b.Unlock()
		err = errors.NodeIsKilled
		return
	}

	switch {
	case b.decided:
	case !m.Final && m.K < b.k:
		b.log.Debug("stale vote dropped", "message", m, "k", b.k)
	default:
		b.inbox.Add(m)
	}

	var out []Message
	result, evaluated, out = b.advance()
	b.Unlock()

	b.send(out)

	return
}

// Advance evaluates the inbox for the current round.
func (b *BenOr) Advance() (result RoundResult, evaluated bool) {
	b.Lock()

	var out []Message
	result, evaluated, out = b.advance()
	b.Unlock()

	b.send(out)

	return
}

func (b *BenOr) advance() (result RoundResult, evaluated bool, out []Message) {
	if b.faulty || b.killed || b.decided {
		return
	}

	if final, found := b.inbox.Final(); found {
		b.x = final.X
		b.decided = true
		out = b.decide()

		b.log.Debug("decision adopted", "x", b.x, "k", b.k)

		return RoundResult{Round: b.k, X: b.x, Decided: true, Final: true}, true, out
	}

	votes := b.inbox.Round(b.k)
	if len(votes) < b.policy.Required() {
		return
	}

	result = RoundResult{Round: b.k}
	for _, m := range votes {
		if m.X == Zero {
			result.Count0++
		} else {
			result.Count1++
		}
	}

	majority := b.policy.Majority()
	switch {
	case b.policy.CanDecide() && result.Count0 >= majority:
		b.x = Zero
		b.decided = true
	case b.policy.CanDecide() && result.Count1 >= majority:
		b.x = One
		b.decided = true
	default:
		b.x = b.coin.Flip()
		result.Coin = true
	}

	b.inbox.Prune(b.k)

	result.X = b.x
	result.Decided = b.decided

	b.log.Debug(
		"round evaluated",
		"k", b.k,
		"count0", result.Count0,
		"count1", result.Count1,
		"x", b.x,
		"decided", b.decided,
		"coin", result.Coin,
	)

	if b.decided {
		out = b.decide()
	} else {
		b.k++
		out = b.vote()
	}

	return result, true, out
}

// vote counts the own vote for the current round and returns it for the
// peers.
func (b *BenOr) vote() []Message {
	m := NewMessage(b.x, b.k)
	b.inbox.Add(m)

	return []Message{m}
}

// decide returns the decision announcement, only the first time.
func (b *BenOr) decide() []Message {
	if b.decisionSent {
		return nil
	}
	b.decisionSent = true

	m := NewFinalMessage(b.x, b.k)
	b.inbox.Add(m)

	return []Message{m}
}

func (b *BenOr) send(out []Message) {
	for _, m := range out {
		if b.IsKilled() {
			return
		}
		b.broadcaster.Broadcast(m)
	}
}
