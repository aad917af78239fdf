package consensus

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/benor/lib/errors"
)

type recordBroadcaster struct {
	messages []Message
}

func (r *recordBroadcaster) Broadcast(m Message) {
	r.messages = append(r.messages, m)
}

func newTestBenOr(t *testing.T, n, f int, x Value, coin Coin) (*BenOr, *recordBroadcaster) {
	policy, err := NewThresholdPolicy(n, f)
	require.NoError(t, err)

	if coin == nil {
		coin = NewLocalCoin(1)
	}

	rb := &recordBroadcaster{}
	b := NewBenOr(Config{
		ID:           0,
		Policy:       policy,
		InitialValue: x,
		Coin:         coin,
		Broadcaster:  rb,
	})

	return b, rb
}

func TestBenOrSingleNode(t *testing.T) {
	b, rb := newTestBenOr(t, 1, 0, One, nil)

	require.NoError(t, b.Start())

	state := b.State()
	require.True(t, state.IsDecided())
	require.Equal(t, One, *state.X)
	require.Equal(t, uint64(0), *state.K)
	require.Equal(t, 0, len(rb.messages))

	err := b.Start()
	require.True(t, errors.NodeAlreadyStarted.Is(err))
}

func TestBenOrFaulty(t *testing.T) {
	policy, _ := NewThresholdPolicy(4, 1)
	rb := &recordBroadcaster{}
	b := NewBenOr(Config{ID: 3, Policy: policy, Faulty: true, Broadcaster: rb})

	state := b.State()
	require.True(t, state.IsFaulty())
	require.False(t, state.Killed)
	require.Nil(t, state.X)
	require.Nil(t, state.Decided)
	require.Nil(t, state.K)

	require.True(t, errors.NodeIsFaulty.Is(b.Start()))

	_, _, err := b.Intake(NewFinalMessage(One, 0))
	require.True(t, errors.NodeIsFaulty.Is(err))

	_, evaluated := b.Advance()
	require.False(t, evaluated)

	require.Equal(t, 0, len(rb.messages))
	require.True(t, b.State().IsFaulty())
}

func TestBenOrStartBroadcastsFirstVote(t *testing.T) {
	b, rb := newTestBenOr(t, 4, 1, Zero, nil)

	require.NoError(t, b.Start())
	require.Equal(t, []Message{NewMessage(Zero, 0)}, rb.messages)
	require.Equal(t, 1, b.InboxSize())
}

func TestBenOrQuorumGating(t *testing.T) {
	b, rb := newTestBenOr(t, 4, 1, One, nil)
	require.NoError(t, b.Start())

	_, evaluated, err := b.Intake(NewMessage(Zero, 0))
	require.NoError(t, err)
	require.False(t, evaluated)

	for i := 0; i < 3; i++ {
		_, evaluated = b.Advance()
		require.False(t, evaluated)
	}

	state := b.State()
	require.Equal(t, One, *state.X)
	require.Equal(t, uint64(0), *state.K)
	require.False(t, *state.Decided)
	require.Equal(t, 1, len(rb.messages))

	// votes of a later round do not count for the current one
	_, evaluated, err = b.Intake(NewMessage(Zero, 1))
	require.NoError(t, err)
	require.False(t, evaluated)

	result, evaluated, err := b.Intake(NewMessage(Zero, 0))
	require.NoError(t, err)
	require.True(t, evaluated)
	require.Equal(t, 2, result.Count0)
	require.Equal(t, 1, result.Count1)
	require.True(t, result.Decided)
	require.Equal(t, Zero, result.X)
}

func TestBenOrMajorityIgnoresArrivalOrder(t *testing.T) {
	orders := [][]Value{
		{Zero, Zero, One},
		{Zero, One, Zero},
		{One, Zero, Zero},
	}

	for _, order := range orders {
		b, rb := newTestBenOr(t, 4, 1, One, CoinFunc(func() Value { return One }))

		var result RoundResult
		var evaluated bool
		for _, x := range order {
			var err error
			result, evaluated, err = b.Intake(NewMessage(x, 0))
			require.NoError(t, err)
		}

		require.True(t, evaluated)
		require.False(t, result.Coin)
		require.True(t, result.Decided)
		require.Equal(t, Zero, result.X)
		require.Equal(t, []Message{NewFinalMessage(Zero, 0)}, rb.messages)
	}
}

func TestBenOrNoMajorityFlipsCoin(t *testing.T) {
	b, rb := newTestBenOr(t, 5, 1, Zero, CoinFunc(func() Value { return One }))

	for _, x := range []Value{Zero, Zero, One, One} {
		_, _, err := b.Intake(NewMessage(x, 0))
		require.NoError(t, err)
	}

	state := b.State()
	require.False(t, *state.Decided)
	require.Equal(t, One, *state.X)
	require.Equal(t, uint64(1), *state.K)

	// the new vote is counted by the node itself
	require.Equal(t, []Message{NewMessage(One, 1)}, rb.messages)
	require.Equal(t, 1, b.InboxSize())
}

func TestBenOrBelowThresholdNeverDecides(t *testing.T) {
	b, rb := newTestBenOr(t, 2, 1, Zero, NewLocalCoin(7))
	require.NoError(t, b.Start())

	for i := 0; i < 50; i++ {
		result, evaluated := b.Advance()
		require.True(t, evaluated)
		require.True(t, result.Coin)
		require.False(t, result.Decided)
	}

	state := b.State()
	require.False(t, *state.Decided)
	require.Equal(t, uint64(50), *state.K)
	require.Equal(t, 51, len(rb.messages))
	for _, m := range rb.messages {
		require.False(t, m.Final)
	}
}

func TestBenOrFinalMessageIsAdopted(t *testing.T) {
	b, rb := newTestBenOr(t, 4, 1, Zero, nil)
	require.NoError(t, b.Start())

	result, evaluated, err := b.Intake(NewFinalMessage(One, 5))
	require.NoError(t, err)
	require.True(t, evaluated)
	require.True(t, result.Final)
	require.True(t, result.Decided)

	state := b.State()
	require.True(t, *state.Decided)
	require.Equal(t, One, *state.X)
	require.Equal(t, uint64(0), *state.K)

	require.Equal(t, 2, len(rb.messages))
	require.Equal(t, NewFinalMessage(One, 0), rb.messages[1])

	// decision is broadcast only once
	for i := 0; i < 5; i++ {
		_, evaluated = b.Advance()
		require.False(t, evaluated)
	}
	_, _, err = b.Intake(NewFinalMessage(Zero, 9))
	require.NoError(t, err)
	_, _, err = b.Intake(NewMessage(Zero, 0))
	require.NoError(t, err)

	require.Equal(t, 2, len(rb.messages))
	require.Equal(t, One, *b.State().X)
}

func TestBenOrStaleVoteIsDropped(t *testing.T) {
	b, _ := newTestBenOr(t, 5, 1, Zero, CoinFunc(func() Value { return Zero }))

	for _, x := range []Value{Zero, Zero, One, One} {
		b.Intake(NewMessage(x, 0))
	}
	require.Equal(t, uint64(1), *b.State().K)
	require.Equal(t, 1, b.InboxSize())

	_, evaluated, err := b.Intake(NewMessage(One, 0))
	require.NoError(t, err)
	require.False(t, evaluated)
	require.Equal(t, 1, b.InboxSize())
}

func TestBenOrKill(t *testing.T) {
	b, rb := newTestBenOr(t, 4, 1, Zero, nil)
	require.NoError(t, b.Start())

	b.Stop()
	require.True(t, b.IsKilled())
	require.True(t, b.IsFinished())

	_, _, err := b.Intake(NewMessage(Zero, 0))
	require.True(t, errors.NodeIsKilled.Is(err))
	_, _, err = b.Intake(NewMessage(Zero, 0))
	require.True(t, errors.NodeIsKilled.Is(err))

	require.True(t, errors.NodeIsKilled.Is(b.Start()))

	_, evaluated := b.Advance()
	require.False(t, evaluated)

	state := b.State()
	require.True(t, state.Killed)
	require.Equal(t, Zero, *state.X)
	require.Equal(t, uint64(0), *state.K)
	require.False(t, *state.Decided)
	require.Equal(t, 1, len(rb.messages))
}

// testNetwork delivers the broadcast messages of in-process nodes one by
// one, in FIFO order or shuffled by a seeded source.
type testNetwork struct {
	nodes []*BenOr
	queue []envelope
	r     *rand.Rand
}

type envelope struct {
	to int
	m  Message
}

func newTestNetwork(t *testing.T, f int, values []Value, faulty []int, seed int64) *testNetwork {
	n := len(values)
	policy, err := NewThresholdPolicy(n, f)
	require.NoError(t, err)

	tn := &testNetwork{}
	if seed != 0 {
		tn.r = rand.New(rand.NewSource(seed))
	}

	isFaulty := map[int]bool{}
	for _, i := range faulty {
		isFaulty[i] = true
	}

	for i := 0; i < n; i++ {
		from := i
		tn.nodes = append(tn.nodes, NewBenOr(Config{
			ID:           i,
			Policy:       policy,
			InitialValue: values[i],
			Faulty:       isFaulty[i],
			Coin:         NewLocalCoin(seed + int64(i) + 1),
			Broadcaster: BroadcasterFunc(func(m Message) {
				for to := range tn.nodes {
					if to != from {
						tn.queue = append(tn.queue, envelope{to: to, m: m})
					}
				}
			}),
		}))
	}

	return tn
}

func (tn *testNetwork) start(order ...int) {
	if len(order) < 1 {
		for i := range tn.nodes {
			order = append(order, i)
		}
	}

	for _, i := range order {
		tn.nodes[i].Start()
	}
}

// run delivers messages until every node is finished or nothing is left to
// deliver.
func (tn *testNetwork) run(maxSteps int) {
	for step := 0; step < maxSteps; step++ {
		if tn.finished() {
			return
		}

		if len(tn.queue) < 1 {
			for _, node := range tn.nodes {
				node.Advance()
			}
			if len(tn.queue) < 1 {
				return
			}
			continue
		}

		i := 0
		if tn.r != nil {
			i = tn.r.Intn(len(tn.queue))
		}
		e := tn.queue[i]
		tn.queue = append(tn.queue[:i], tn.queue[i+1:]...)

		tn.nodes[e.to].Intake(e.m)
	}
}

func (tn *testNetwork) finished() bool {
	for _, node := range tn.nodes {
		if !node.IsFinished() {
			return false
		}
	}

	return true
}

func (tn *testNetwork) requireDecided(t *testing.T, x Value) {
	for _, node := range tn.nodes {
		state := node.State()
		if node.IsFaulty() {
			require.True(t, state.IsFaulty())
			continue
		}
		require.True(t, state.IsDecided(), "node=%d", node.ID())
		require.Equal(t, x, *state.X, "node=%d", node.ID())
	}
}

func TestBenOrNetworkFourNodesOneFault(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		tn := newTestNetwork(t, 1, []Value{Zero, Zero, Zero, One}, nil, seed)
		tn.start()
		tn.run(10000)

		tn.requireDecided(t, Zero)
	}
}

func TestBenOrNetworkThreeNodesOneFault(t *testing.T) {
	tn := newTestNetwork(t, 1, []Value{Zero, One, One}, nil, 0)
	tn.start(1, 2, 0)
	tn.run(10000)

	tn.requireDecided(t, One)
}

func TestBenOrNetworkWithFaultyNodes(t *testing.T) {
	values := []Value{One, Zero, One, One, Zero, Zero, One}

	for seed := int64(1); seed <= 20; seed++ {
		tn := newTestNetwork(t, 2, values, []int{1, 4}, seed)
		tn.start()
		tn.run(100000)

		require.True(t, tn.finished())

		// the five live nodes see the same five votes
		tn.requireDecided(t, One)
	}
}

func TestBenOrNetworkStrongMajority(t *testing.T) {
	values := []Value{Zero, Zero, Zero, Zero, One}

	for seed := int64(1); seed <= 20; seed++ {
		tn := newTestNetwork(t, 1, values, nil, seed)
		tn.start()
		tn.run(100000)

		tn.requireDecided(t, Zero)
	}
}

func TestBenOrNetworkBelowThreshold(t *testing.T) {
	tn := newTestNetwork(t, 1, []Value{Zero, One}, nil, 3)
	tn.start()
	tn.run(1000)

	require.False(t, tn.finished())
	for _, node := range tn.nodes {
		state := node.State()
		require.False(t, *state.Decided)
		require.True(t, *state.K > 0)
	}
}
