package consensus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/benor/lib/errors"
)

func TestThresholdPolicy(t *testing.T) {
	{
		p, err := NewThresholdPolicy(4, 1)
		require.NoError(t, err)
		require.Equal(t, 3, p.Required())
		require.Equal(t, 2, p.Majority())
		require.True(t, p.CanDecide())
	}

	{
		p, err := NewThresholdPolicy(3, 1)
		require.NoError(t, err)
		require.Equal(t, 2, p.Required())
		require.Equal(t, 2, p.Majority())
		require.True(t, p.CanDecide())
	}

	{ // N <= 2F
		p, err := NewThresholdPolicy(2, 1)
		require.NoError(t, err)
		require.Equal(t, 1, p.Required())
		require.False(t, p.CanDecide())
	}

	{
		p, err := NewThresholdPolicy(1, 0)
		require.NoError(t, err)
		require.Equal(t, 1, p.Required())
		require.Equal(t, 1, p.Majority())
	}
}

func TestThresholdPolicyInvalid(t *testing.T) {
	for _, c := range [][2]int{{0, 0}, {3, 3}, {3, 4}, {3, -1}} {
		_, err := NewThresholdPolicy(c[0], c[1])
		require.Error(t, err)
		require.True(t, errors.InvalidThreshold.Is(err))
	}
}

func TestThresholdPolicyMarshalJSON(t *testing.T) {
	p, _ := NewThresholdPolicy(5, 1)

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	require.Equal(t, float64(4), m["required"])
	require.Equal(t, float64(3), m["majority"])
	require.Equal(t, true, m["can_decide"])
}
