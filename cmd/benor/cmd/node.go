package cmd

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter"

	cmdcommon "boscoin.io/benor/cmd/benor/common"
	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/metrics"
	"boscoin.io/benor/lib/node/runner"
)

var (
	flagNodeID        string = common.GetENVValue("BENOR_ID", "0")
	flagNodes         string = common.GetENVValue("BENOR_NODES", strconv.Itoa(common.DefaultNodes))
	flagFaults        string = common.GetENVValue("BENOR_FAULTS", strconv.Itoa(common.DefaultFaults))
	flagValue         string = common.GetENVValue("BENOR_VALUE", "0")
	flagFaulty        bool   = common.GetENVValue("BENOR_FAULTY", "0") == "1"
	flagBasePort      string = common.GetENVValue("BENOR_BASE_PORT", strconv.Itoa(common.DefaultBasePort))
	flagHost          string = common.GetENVValue("BENOR_HOST", common.DefaultHost)
	flagScheme        string = common.GetENVValue("BENOR_SCHEME", common.DefaultScheme)
	flagRoundInterval string = common.GetENVValue("BENOR_ROUND_INTERVAL", common.DefaultRoundInterval.String())
	flagSendTimeout   string = common.GetENVValue("BENOR_SEND_TIMEOUT", common.DefaultSendTimeout.String())
	flagReadyInterval string = common.GetENVValue("BENOR_READY_INTERVAL", common.DefaultReadyInterval.String())
	flagPeerCacheSize string = common.GetENVValue("BENOR_PEER_CACHE_SIZE", strconv.Itoa(common.DefaultPeerCacheSize))
	flagSeed          string = common.GetENVValue("BENOR_SEED", "0")
	flagDebugPProf    bool   = common.GetENVValue("BENOR_DEBUG_PPROF", "0") == "1"
	flagStorageConfig string
	flagRateLimitAPI  cmdcommon.ListFlags
	flagRateLimitNode cmdcommon.ListFlags
)

var (
	nodeCmd *cobra.Command

	nodeConf     common.Config
	nodeID       int
	initialValue consensus.Value
)

func init() {
	var err error

	nodeCmd = &cobra.Command{
		Use:   "node",
		Short: "Run one benor node",
		Run: func(c *cobra.Command, args []string) {
			parseFlagsLogging(c)
			parseFlagsNode()

			runNode()
			return
		},
	}

	// storage
	var currentDirectory string
	if currentDirectory, err = os.Getwd(); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--storage", err)
	}
	if currentDirectory, err = filepath.Abs(currentDirectory); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--storage", err)
	}
	flagStorageConfig = common.GetENVValue("BENOR_STORAGE", fmt.Sprintf("file://%s/db", currentDirectory))

	nodeCmd.Flags().StringVar(&flagNodeID, "id", flagNodeID, "id of this node, from 0 to nodes-1")
	nodeCmd.Flags().StringVar(&flagNodes, "nodes", flagNodes, "number of nodes in the network")
	nodeCmd.Flags().StringVar(&flagFaults, "faults", flagFaults, "number of faulty nodes tolerated")
	nodeCmd.Flags().StringVar(&flagValue, "value", flagValue, "initial value, {0, 1}")
	nodeCmd.Flags().BoolVar(&flagFaulty, "faulty", flagFaulty, "run as a faulty node, which never takes part")
	nodeCmd.Flags().StringVar(&flagBasePort, "base-port", flagBasePort, "the node `id` listens at base-port + id")
	nodeCmd.Flags().StringVar(&flagHost, "host", flagHost, "host of every node")
	nodeCmd.Flags().StringVar(&flagScheme, "scheme", flagScheme, "scheme of every node, {http, memory}")
	nodeCmd.Flags().StringVar(&flagStorageConfig, "storage", flagStorageConfig, "storage uri of the round journal")
	nodeCmd.Flags().StringVar(&flagRoundInterval, "round-interval", flagRoundInterval, "interval of the round scheduler")
	nodeCmd.Flags().StringVar(&flagSendTimeout, "send-timeout", flagSendTimeout, "timeout of sending a message to a peer")
	nodeCmd.Flags().StringVar(&flagReadyInterval, "ready-interval", flagReadyInterval, "interval of asking the peers whether they are ready")
	nodeCmd.Flags().StringVar(&flagPeerCacheSize, "peer-cache-size", flagPeerCacheSize, "size of the cache of the peers seen ready")
	nodeCmd.Flags().StringVar(&flagSeed, "seed", flagSeed, "seed of the coin; 0 seeds from the clock")
	nodeCmd.Flags().Var(&flagRateLimitAPI, "rate-limit-api", "rate limit for /api: [<ip>=]<limit>-<period>, ex) '10-S' '3.3.3.3=1000-M'")
	nodeCmd.Flags().Var(&flagRateLimitNode, "rate-limit-node", "rate limit for /node: [<ip>=]<limit>-<period>, ex) '10-S' '3.3.3.3=1000-M'")
	nodeCmd.Flags().BoolVar(&flagDebugPProf, "debug-pprof", flagDebugPProf, "serve pprof under /debug")

	rootCmd.AddCommand(nodeCmd)
}

// parseFlagRateLimit parses the rules; the last rule without ip address
// replaces the default rate.
func parseFlagRateLimit(l cmdcommon.ListFlags, defaultRate limiter.Rate) (rule common.RateLimitRule, err error) {
	rule = common.NewRateLimitRule(defaultRate)

	for _, s := range l {
		v := strings.SplitN(strings.TrimSpace(s), "=", 2)

		var ip string
		var formatted string
		if len(v) < 2 {
			formatted = v[0]
		} else {
			if parsed := net.ParseIP(v[0]); parsed == nil {
				err = fmt.Errorf("invalid ip address, %q", v[0])
				return
			}
			ip, formatted = v[0], v[1]
		}

		var rate limiter.Rate
		if rate, err = limiter.NewRateFromFormatted(formatted); err != nil {
			err = errors.Wrapf(err, "invalid rate limit, %q", s)
			return
		}

		if len(ip) < 1 {
			rule.Default = rate
		} else {
			rule.ByIPAddress[ip] = rate
		}
	}

	return
}

func parseDuration(c *cobra.Command, flagName, s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		cmdcommon.PrintFlagsError(c, flagName, err)
	}
	if d < 0 {
		cmdcommon.PrintFlagsError(c, flagName, errors.New("must not be negative"))
	}

	return d
}

func parseInt(c *cobra.Command, flagName, s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		cmdcommon.PrintFlagsError(c, flagName, err)
	}

	return i
}

func parseFlagsNode() {
	var err error

	nodeConf = common.NewConfig()
	nodeConf.Nodes = parseInt(nodeCmd, "--nodes", flagNodes)
	nodeConf.Faults = parseInt(nodeCmd, "--faults", flagFaults)
	nodeConf.BasePort = parseInt(nodeCmd, "--base-port", flagBasePort)
	nodeConf.PeerCacheSize = parseInt(nodeCmd, "--peer-cache-size", flagPeerCacheSize)
	nodeConf.Host = flagHost
	nodeConf.Scheme = flagScheme
	nodeConf.Storage = flagStorageConfig
	nodeConf.RoundInterval = parseDuration(nodeCmd, "--round-interval", flagRoundInterval)
	nodeConf.SendTimeout = parseDuration(nodeCmd, "--send-timeout", flagSendTimeout)
	nodeConf.ReadyInterval = parseDuration(nodeCmd, "--ready-interval", flagReadyInterval)

	if nodeConf.Seed, err = strconv.ParseInt(flagSeed, 10, 64); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--seed", err)
	}

	if _, err = consensus.NewThresholdPolicy(nodeConf.Nodes, nodeConf.Faults); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--faults", err)
	}

	nodeID = parseInt(nodeCmd, "--id", flagNodeID)
	if nodeID < 0 || nodeID >= nodeConf.Nodes {
		cmdcommon.PrintFlagsError(nodeCmd, "--id", fmt.Errorf("must be in [0, %d)", nodeConf.Nodes))
	}

	if initialValue, err = consensus.NewValue(parseInt(nodeCmd, "--value", flagValue)); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--value", err)
	}

	if nodeConf.RateLimitRuleAPI, err = parseFlagRateLimit(flagRateLimitAPI, common.RateLimitAPI); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--rate-limit-api", err)
	}
	if nodeConf.RateLimitRuleNode, err = parseFlagRateLimit(flagRateLimitNode, common.RateLimitNode); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--rate-limit-node", err)
	}

	runner.DebugPProf = flagDebugPProf

	log.Info("Starting benor node")

	// print flags
	parsedFlags := []interface{}{}
	parsedFlags = append(parsedFlags, "\n\tid", nodeID)
	parsedFlags = append(parsedFlags, "\n\tnodes", nodeConf.Nodes)
	parsedFlags = append(parsedFlags, "\n\tfaults", nodeConf.Faults)
	parsedFlags = append(parsedFlags, "\n\tvalue", initialValue)
	parsedFlags = append(parsedFlags, "\n\tfaulty", flagFaulty)
	parsedFlags = append(parsedFlags, "\n\tendpoint", nodeConf.NodeEndpoint(nodeID))
	parsedFlags = append(parsedFlags, "\n\tstorage", flagStorageConfig)
	parsedFlags = append(parsedFlags, "\n\tround-interval", nodeConf.RoundInterval)
	parsedFlags = append(parsedFlags, "\n\tsend-timeout", nodeConf.SendTimeout)
	parsedFlags = append(parsedFlags, "\n\tseed", nodeConf.Seed)
	parsedFlags = append(parsedFlags, "\n\trate-limit-api", nodeConf.RateLimitRuleAPI)
	parsedFlags = append(parsedFlags, "\n\trate-limit-node", nodeConf.RateLimitRuleNode)
	parsedFlags = append(parsedFlags, "\n\tlog-level", flagLogLevel)
	parsedFlags = append(parsedFlags, "\n\tlog-output", flagLogOutput)

	log.Debug("parsed flags:", parsedFlags...)
}

func runNode() {
	metrics.InitPrometheusMetrics()

	nr, err := runner.NewNodeRunner(nodeConf, nodeID, initialValue, flagFaulty, nil)
	if err != nil {
		log.Crit("failed to launch node", "error", err)

		os.Exit(1)
	}

	// Execution group.
	var g run.Group
	{
		g.Add(func() error {
			if err := nr.Start(); err != nil {
				log.Crit("failed to start node", "error", err)
				return err
			}
			return nil
		}, func(error) {
			nr.Stop()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	if err := g.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
