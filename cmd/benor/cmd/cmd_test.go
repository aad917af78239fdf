package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	cmdcommon "boscoin.io/benor/cmd/benor/common"
	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/launcher"
	"boscoin.io/benor/lib/network"
)

func parseTestRateLimit(t *testing.T, cmdline string) (common.RateLimitRule, error) {
	testCmd := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)

	var fr cmdcommon.ListFlags
	testCmd.Var(&fr, "rate-limit-api", "")

	err := testCmd.Parse(strings.Fields(cmdline))
	require.NoError(t, err)

	return parseFlagRateLimit(fr, common.RateLimitAPI)
}

func TestParseFlagRateLimit(t *testing.T) {
	{ // weired value
		_, err := parseTestRateLimit(t, "--rate-limit-api=showme")
		require.Error(t, err)
	}

	{ // bad ip address
		_, err := parseTestRateLimit(t, "--rate-limit-api=1.2.3=8-S")
		require.Error(t, err)
	}

	{ // not given
		rule, err := parseTestRateLimit(t, "")
		require.NoError(t, err)
		require.Equal(t, common.RateLimitAPI, rule.Default)
		require.Equal(t, 0, len(rule.ByIPAddress))
	}

	{ // valid value
		rule, err := parseTestRateLimit(t, "--rate-limit-api=10-S")
		require.NoError(t, err)
		require.Equal(t, time.Second, rule.Default.Period)
		require.Equal(t, int64(10), rule.Default.Limit)
		require.Equal(t, 0, len(rule.ByIPAddress))
	}

	{ // multiple value, last will be choose.
		rule, err := parseTestRateLimit(t, "--rate-limit-api=10-S --rate-limit-api=9-M")
		require.NoError(t, err)
		require.Equal(t, time.Minute, rule.Default.Period)
		require.Equal(t, int64(9), rule.Default.Limit)
	}

	{ // with ip address, but `common.RateLimitAPI` will be default
		allowedIP := "1.2.3.4"
		rule, err := parseTestRateLimit(t, fmt.Sprintf("--rate-limit-api=%s=8-S", allowedIP))
		require.NoError(t, err)
		require.Equal(t, common.RateLimitAPI.Period, rule.Default.Period)
		require.Equal(t, common.RateLimitAPI.Limit, rule.Default.Limit)
		require.Equal(t, 1, len(rule.ByIPAddress))
		require.Equal(t, time.Second, rule.ByIPAddress[allowedIP].Period)
		require.Equal(t, int64(8), rule.ByIPAddress[allowedIP].Limit)
		require.Equal(t, int64(8), rule.Rate(allowedIP).Limit)
	}

	{ // with ip address and with default
		allowedIP := "1.2.3.4"
		rule, err := parseTestRateLimit(t, fmt.Sprintf("--rate-limit-api=11-H --rate-limit-api=%s=8-S", allowedIP))
		require.NoError(t, err)
		require.Equal(t, time.Hour, rule.Default.Period)
		require.Equal(t, int64(11), rule.Default.Limit)
		require.Equal(t, 1, len(rule.ByIPAddress))
		require.Equal(t, int64(8), rule.ByIPAddress[allowedIP].Limit)
	}

	{ // unlimit
		rule, err := parseTestRateLimit(t, "--rate-limit-api=0-S")
		require.NoError(t, err)
		require.Equal(t, int64(0), rule.Default.Limit)
		require.True(t, rule.IsUnlimited())
	}

	{ // lowercase
		rule, err := parseTestRateLimit(t, "--rate-limit-api=10-m")
		require.NoError(t, err)
		require.Equal(t, time.Minute, rule.Default.Period)
		require.Equal(t, int64(10), rule.Default.Limit)
	}
}

func TestParseFlagFaulty(t *testing.T) {
	{ // not given
		faulty, err := parseFlagFaulty("", 4)
		require.NoError(t, err)
		require.Nil(t, faulty)
	}

	{
		faulty, err := parseFlagFaulty("1, 3", 4)
		require.NoError(t, err)
		require.Equal(t, []bool{false, true, false, true}, faulty)
	}

	{ // out of network
		_, err := parseFlagFaulty("4", 4)
		require.Error(t, err)
	}

	{ // not number
		_, err := parseFlagFaulty("a", 4)
		require.Error(t, err)
	}
}

func TestRunNetworkWait(t *testing.T) {
	defer func(start bool, wait time.Duration, encode cmdcommon.Encode) {
		flagNetworkStart, networkWait, networkEncode = start, wait, encode
	}(flagNetworkStart, networkWait, networkEncode)

	networkConfig = launcher.NetworkConfig{
		N:             4,
		F:             1,
		BasePort:      45000,
		InitialValues: []int{0, 0, 0, 1},
		Faulty:        []bool{false, false, false, true},
		Seed:          1,
		RoundInterval: 50 * time.Millisecond,
		Scheme:        network.MemoryScheme,
	}
	flagNetworkStart = true
	networkWait = 10 * time.Second
	networkEncode = cmdcommon.DefaultEncodes["json"]

	var b bytes.Buffer
	require.NoError(t, runNetwork(&b))

	var outputs []nodeStateOutput
	require.NoError(t, json.Unmarshal(b.Bytes(), &outputs))
	require.Equal(t, 4, len(outputs))

	for _, output := range outputs[:3] {
		require.True(t, *output.Decided)
		require.Equal(t, consensus.Zero, *output.X)
	}

	// faulty node
	require.Equal(t, 3, outputs[3].Node)
	require.Nil(t, outputs[3].X)
	require.Nil(t, outputs[3].Decided)
}
