package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	{ // without scheme, "localhost" is parsed as the scheme
		_, err := ParseEndpoint("localhost:3000")
		require.Error(t, err)
	}

	{ // missing scheme
		_, err := ParseEndpoint("//localhost:3000")
		require.Error(t, err)
	}

	{ // port only
		e, err := ParseEndpoint("http://:3002")
		require.NoError(t, err)
		require.Equal(t, "http://localhost:3002", e.String())
	}

	{ // default port
		e, err := ParseEndpoint("http://localhost")
		require.NoError(t, err)
		require.Equal(t, DefaultBasePort, e.Port())
	}

	{ // loopback becomes localhost
		e, err := ParseEndpoint("http://127.0.0.1:3001")
		require.NoError(t, err)
		require.Equal(t, "http://localhost:3001", e.String())
	}

	{ // invalid port
		_, err := ParseEndpoint("http://localhost:0")
		require.Error(t, err)
	}

	{ // memory endpoint has no port
		e, err := ParseEndpoint("memory://node-0")
		require.NoError(t, err)
		require.Equal(t, "memory://node-0", e.String())
	}
}

func TestEndpointJSON(t *testing.T) {
	e := MustParseEndpoint("http://localhost:3003")

	b, err := json.Marshal(e)
	require.NoError(t, err)
	require.Equal(t, `"http://localhost:3003"`, string(b))

	var r Endpoint
	require.NoError(t, json.Unmarshal(b, &r))
	require.Equal(t, e.String(), r.String())
}

func TestConfigNodeEndpoint(t *testing.T) {
	conf := NewConfig()
	conf.BasePort = 4000

	require.Equal(t, "http://localhost:4002", conf.NodeEndpoint(2).String())

	endpoints := conf.Endpoints(3)
	require.Equal(t, 3, len(endpoints))
	for i, e := range endpoints {
		require.Equal(t, 4000+i, e.Port())
	}
}

func TestRateLimitRule(t *testing.T) {
	rule := NewRateLimitRule(RateLimitAPI)
	require.Equal(t, RateLimitAPI, rule.Rate("1.2.3.4"))
	require.False(t, rule.IsUnlimited())

	rule.ByIPAddress["1.2.3.4"] = NewRate(RateLimitAPI.Period, 1)
	require.Equal(t, int64(1), rule.Rate("1.2.3.4").Limit)
	require.Equal(t, RateLimitAPI.Limit, rule.Rate("4.3.2.1").Limit)

	require.True(t, NewTestConfig().RateLimitRuleAPI.IsUnlimited())
}
