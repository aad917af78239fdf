package launcher

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/errors"
)

const testNetworkConfigYAML = `
n: 4
f: 1
base_port: 5000
initial_values: [0, 0, 0, 1]
faulty: [false, false, false, true]
seed: 7
round_interval: 20ms
`

func TestNetworkConfigFromYAML(t *testing.T) {
	nc, err := NewNetworkConfigFromYAML([]byte(testNetworkConfigYAML))
	require.NoError(t, err)

	require.Equal(t, 4, nc.N)
	require.Equal(t, 1, nc.F)
	require.Equal(t, 5000, nc.BasePort)
	require.Equal(t, []int{0, 0, 0, 1}, nc.InitialValues)
	require.Equal(t, 20*time.Millisecond, nc.RoundInterval)
	require.True(t, nc.IsFaulty(3))
	require.False(t, nc.IsFaulty(0))
	require.Equal(t, 1, nc.FaultyCount())
	require.Equal(t, consensus.One, nc.InitialValue(3))

	conf := nc.Config(common.NewConfig())
	require.Equal(t, 4, conf.Nodes)
	require.Equal(t, 1, conf.Faults)
	require.Equal(t, 5000, conf.BasePort)
	require.Equal(t, int64(7), conf.Seed)
	require.Equal(t, 20*time.Millisecond, conf.RoundInterval)
	require.Equal(t, common.DefaultScheme, conf.Scheme)
	require.Equal(t, "http://localhost:5003", conf.NodeEndpoint(3).String())
}

func TestLoadNetworkConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "benor")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "network.yml")
	require.NoError(t, ioutil.WriteFile(path, []byte(testNetworkConfigYAML), 0600))

	nc, err := LoadNetworkConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4, nc.N)

	_, err = LoadNetworkConfig(filepath.Join(dir, "findme.yml"))
	require.Error(t, err)
}

func TestNetworkConfigValidate(t *testing.T) {
	{ // unknown field
		_, err := NewNetworkConfigFromYAML([]byte("n: 1\nf: 0\ninitial_values: [0]\nfindme: 1\n"))
		require.Error(t, err)
	}

	{ // threshold
		_, err := NewNetworkConfigFromYAML([]byte("n: 2\nf: 2\ninitial_values: [0, 1]\n"))
		require.True(t, errors.InvalidThreshold.Is(err))
	}

	{ // missing initial value
		_, err := NewNetworkConfigFromYAML([]byte("n: 2\nf: 0\ninitial_values: [0]\n"))
		require.True(t, errors.InvalidInitialValues.Is(err))
	}

	{ // not binary
		_, err := NewNetworkConfigFromYAML([]byte("n: 2\nf: 0\ninitial_values: [0, 2]\n"))
		require.True(t, errors.InvalidInitialValues.Is(err))
	}

	{ // faulty list of another size
		_, err := NewNetworkConfigFromYAML([]byte("n: 2\nf: 0\ninitial_values: [0, 1]\nfaulty: [true]\n"))
		require.True(t, errors.InvalidFaultyNodes.Is(err))
	}

	{ // no faulty list
		nc, err := NewNetworkConfigFromYAML([]byte("n: 2\nf: 0\ninitial_values: [0, 1]\n"))
		require.NoError(t, err)
		require.False(t, nc.IsFaulty(1))
	}
}
