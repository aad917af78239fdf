package runner

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/errors"
	"boscoin.io/benor/lib/journal"
	"boscoin.io/benor/lib/network"
	"boscoin.io/benor/lib/node"
)

func values(vs ...int) (values []consensus.Value) {
	for _, v := range vs {
		values = append(values, consensus.MustNewValue(v))
	}
	return
}

// startTestNodeRunners serves every runner and waits until they all listen.
func startTestNodeRunners(t *testing.T, nrs []*NodeRunner, gate *node.ReadinessTracker) func() {
	var wg sync.WaitGroup
	for _, nr := range nrs {
		wg.Add(1)
		go func(nr *NodeRunner) {
			defer wg.Done()
			nr.Start()
		}(nr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, gate.Wait(ctx))

	return func() {
		for _, nr := range nrs {
			nr.Stop()
		}
		wg.Wait()
	}
}

func waitUntil(t *testing.T, timeout time.Duration, condition func() bool) {
	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func allDecided(nrs []*NodeRunner) func() bool {
	return func() bool {
		for _, nr := range nrs {
			if nr.Consensus().IsFaulty() {
				continue
			}
			if !nr.Consensus().IsDecided() {
				return false
			}
		}
		return true
	}
}

func startConsensusByClient(t *testing.T, nrs []*NodeRunner) {
	client := nrs[0].Network()
	for _, nr := range nrs {
		if nr.Consensus().IsFaulty() {
			continue
		}
		err := client.GetClient(nr.Network().Endpoint()).Start(context.Background())
		require.NoError(t, err)
	}
}

func TestNodeRunnerConsensusMemoryNetwork(t *testing.T) {
	conf := NewTestConfig(4, 1)
	nrs, gate, err := NewTestNodeRunners(conf, values(0, 0, 0, 1))
	require.NoError(t, err)

	stop := startTestNodeRunners(t, nrs, gate)
	defer stop()

	startConsensusByClient(t, nrs)
	waitUntil(t, 10*time.Second, allDecided(nrs))

	for _, nr := range nrs {
		state := nr.Consensus().State()
		require.False(t, state.Killed)
		require.Equal(t, consensus.Zero, *state.X)
		require.True(t, *state.Decided)
		require.Equal(t, uint64(0), *state.K)
	}

	// every node keeps the round it decided in
	waitUntil(t, 5*time.Second, func() bool {
		for _, nr := range nrs {
			if exists, _ := journal.ExistsRoundRecord(nr.Storage(), nr.ID(), 0); !exists {
				return false
			}
		}
		return true
	})
	for _, nr := range nrs {
		rr, err := journal.GetRoundRecord(nr.Storage(), nr.ID(), 0)
		require.NoError(t, err)
		require.True(t, rr.Decided)
		require.Equal(t, consensus.Zero, rr.X)
	}

	// the schedulers stop by themselves
	waitUntil(t, 5*time.Second, func() bool {
		for _, nr := range nrs {
			if nr.Scheduler().IsRunning() {
				return false
			}
		}
		return true
	})
}

func getBasePort(t *testing.T, n int) int {
	for i := 0; i < 100; i++ {
		ln, err := net.Listen("tcp", "localhost:0")
		require.NoError(t, err)
		base := ln.Addr().(*net.TCPAddr).Port
		ln.Close()

		if base+n > 65535 {
			continue
		}

		free := true
		for j := 0; j < n; j++ {
			l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(base+j))
			if err != nil {
				free = false
				break
			}
			l.Close()
		}
		if free {
			return base
		}
	}

	t.Fatal("no free ports")
	return 0
}

func TestNodeRunnerConsensusHTTP2Network(t *testing.T) {
	conf := NewTestConfig(3, 1)
	conf.Scheme = "http"
	conf.BasePort = getBasePort(t, 3)

	nrs, gate, err := NewTestNodeRunners(conf, values(0, 1, 1))
	require.NoError(t, err)

	stop := startTestNodeRunners(t, nrs, gate)
	defer stop()

	startConsensusByClient(t, nrs)
	waitUntil(t, 10*time.Second, allDecided(nrs))

	for _, nr := range nrs {
		require.Equal(t, consensus.One, *nr.Consensus().State().X)
	}

	// the state through the root path
	client := nrs[0].Network().GetClient(nrs[2].Network().Endpoint())
	state, err := client.State(context.Background())
	require.NoError(t, err)
	require.True(t, state.IsDecided())
	require.Equal(t, consensus.One, *state.X)
}

func TestNodeRunnerFaultyNode(t *testing.T) {
	conf := NewTestConfig(4, 1)
	nrs, gate, err := NewTestNodeRunners(conf, values(0, 0, 0, 1), 3)
	require.NoError(t, err)

	stop := startTestNodeRunners(t, nrs, gate)
	defer stop()

	client := nrs[0].Network().GetClient(nrs[3].Network().Endpoint())

	live, err := client.Status(context.Background())
	require.NoError(t, err)
	require.False(t, live)

	state, err := client.State(context.Background())
	require.NoError(t, err)
	require.True(t, state.IsFaulty())

	err = client.Start(context.Background())
	require.True(t, errors.NodeIsFaulty.Is(err))

	err = client.SendMessage(context.Background(), consensus.NewMessage(consensus.Zero, 0))
	require.True(t, errors.NodeIsFaulty.Is(err))

	startConsensusByClient(t, nrs)
	waitUntil(t, 10*time.Second, allDecided(nrs))

	for _, nr := range nrs[:3] {
		require.Equal(t, consensus.Zero, *nr.Consensus().State().X)
	}
	require.True(t, nrs[3].Consensus().State().IsFaulty())
}

func TestNodeRunnerStartNotReady(t *testing.T) {
	conf := NewTestConfig(2, 0)
	nrs, gate, err := NewTestNodeRunners(conf, values(0, 0))
	require.NoError(t, err)

	// only the first node listens
	stop := startTestNodeRunners(t, nrs[:1], node.NewReadinessTracker(1))
	defer stop()
	require.False(t, gate.AllReady())

	err = nrs[0].StartConsensus()
	require.True(t, errors.NodesAreNotReady.Is(err))
	require.False(t, nrs[0].Consensus().IsStarted())
}

func TestNodeRunnerStartAndStop(t *testing.T) {
	conf := NewTestConfig(4, 1)
	conf.RoundInterval = time.Hour
	nrs, gate, err := NewTestNodeRunners(conf, values(0, 1, 0, 1))
	require.NoError(t, err)

	stop := startTestNodeRunners(t, nrs, gate)
	defer stop()

	nr := nrs[0]
	client := nrs[1].Network().GetClient(nr.Network().Endpoint())

	require.NoError(t, client.Start(context.Background()))
	require.True(t, nr.Scheduler().IsRunning())

	err = client.Start(context.Background())
	require.True(t, errors.NodeAlreadyStarted.Is(err))

	require.NoError(t, client.Stop(context.Background()))
	require.True(t, nr.Consensus().IsKilled())
	require.False(t, nr.Scheduler().IsRunning())

	// stop is idempotent
	require.NoError(t, client.Stop(context.Background()))

	err = client.Start(context.Background())
	require.True(t, errors.NodeIsKilled.Is(err))

	err = client.SendMessage(context.Background(), consensus.NewMessage(consensus.Zero, 0))
	require.True(t, errors.NodeIsKilled.Is(err))

	state, err := client.State(context.Background())
	require.NoError(t, err)
	require.True(t, state.Killed)
	require.False(t, *state.Decided)
}

func TestNodeRunnerSingleNode(t *testing.T) {
	conf := NewTestConfig(1, 0)
	nrs, gate, err := NewTestNodeRunners(conf, values(1))
	require.NoError(t, err)

	stop := startTestNodeRunners(t, nrs, gate)
	defer stop()

	require.NoError(t, nrs[0].StartConsensus())

	state := nrs[0].Consensus().State()
	require.True(t, *state.Decided)
	require.Equal(t, consensus.One, *state.X)
	require.Equal(t, uint64(0), *state.K)
	require.False(t, nrs[0].Scheduler().IsRunning())
}

func TestNodeRunnerWithoutSafeMajority(t *testing.T) {
	conf := NewTestConfig(2, 1)
	nrs, gate, err := NewTestNodeRunners(conf, values(0, 1))
	require.NoError(t, err)

	stop := startTestNodeRunners(t, nrs, gate)
	defer stop()

	startConsensusByClient(t, nrs)

	waitUntil(t, 10*time.Second, func() bool {
		for _, nr := range nrs {
			if *nr.Consensus().State().K < 5 {
				return false
			}
		}
		return true
	})

	for _, nr := range nrs {
		require.False(t, nr.Consensus().IsDecided())
	}
}

func TestNodeRunnerMalformedMessage(t *testing.T) {
	conf := NewTestConfig(4, 1)
	nrs, gate, err := NewTestNodeRunners(conf, values(0, 0, 0, 1))
	require.NoError(t, err)

	stop := startTestNodeRunners(t, nrs, gate)
	defer stop()

	nr := nrs[0]
	u := nr.Network().Endpoint().String() + network.UrlPathPrefixNode + network.PathMessage

	for _, body := range []string{`{"x":"a","k":0}`, `{"x":0}`, `findme`} {
		req, err := http.NewRequest("POST", u, bytes.NewBufferString(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", common.ContentTypeJSON)

		resp, err := network.MemoryDoer{}.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
	}

	require.Equal(t, 0, nr.Consensus().InboxSize())

	{ // unknown content type
		req, err := http.NewRequest("POST", u, bytes.NewBufferString(`{"x":0,"k":0}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "text/xml")

		resp, err := network.MemoryDoer{}.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	}
}

func TestNewNodeRunnerBadArguments(t *testing.T) {
	gate := node.NewReadinessTracker(4)

	_, err := NewNodeRunner(NewTestConfig(4, 2), 0, consensus.Zero, false, gate)
	require.NoError(t, err)

	_, err = NewNodeRunner(NewTestConfig(4, 4), 0, consensus.Zero, false, gate)
	require.True(t, errors.InvalidThreshold.Is(err))

	_, err = NewNodeRunner(NewTestConfig(4, 1), 4, consensus.Zero, false, gate)
	require.True(t, errors.InvalidNodeID.Is(err))

	_, err = NewNodeRunner(NewTestConfig(4, 1), 0, consensus.Value(2), false, gate)
	require.True(t, errors.InvalidValue.Is(err))

	conf := NewTestConfig(4, 1)
	conf.Scheme = "findme"
	_, err = NewNodeRunner(conf, 0, consensus.Zero, false, gate)
	require.True(t, errors.EndpointNotFound.Is(err))
}

func TestNodeRunnerPeerReadiness(t *testing.T) {
	conf := NewTestConfig(3, 1)

	var nrs []*NodeRunner
	for i, v := range values(1, 1, 1) {
		nr, err := NewNodeRunner(conf, i, v, false, nil)
		require.NoError(t, err)
		nrs = append(nrs, nr)
	}

	var wg sync.WaitGroup
	defer func() {
		for _, nr := range nrs {
			nr.Stop()
		}
		wg.Wait()
	}()

	// only the first node listens
	wg.Add(1)
	go func() {
		defer wg.Done()
		nrs[0].Start()
	}()
	waitUntil(t, 5*time.Second, nrs[0].Network().IsReady)

	err := nrs[0].StartConsensus()
	require.Equal(t, errors.NodesAreNotReady, err)

	for _, nr := range nrs[1:] {
		wg.Add(1)
		go func(nr *NodeRunner) {
			defer wg.Done()
			nr.Start()
		}(nr)
	}
	for _, nr := range nrs[1:] {
		waitUntil(t, 5*time.Second, nr.Network().IsReady)
	}

	for _, nr := range nrs {
		nr := nr
		waitUntil(t, 5*time.Second, func() bool {
			return nr.StartConsensus() == nil
		})
	}
	waitUntil(t, 10*time.Second, allDecided(nrs))
}
