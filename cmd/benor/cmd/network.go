package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/benor/cmd/benor/common"
	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/launcher"
	"boscoin.io/benor/lib/metrics"
)

var (
	flagNetworkConfig        string = common.GetENVValue("BENOR_NETWORK_CONFIG", "")
	flagNetworkNodes         string = common.GetENVValue("BENOR_NODES", "4")
	flagNetworkFaults        string = common.GetENVValue("BENOR_FAULTS", "1")
	flagNetworkValues        string = common.GetENVValue("BENOR_VALUES", "")
	flagNetworkFaulty        string = common.GetENVValue("BENOR_FAULTY_NODES", "")
	flagNetworkBasePort      string = common.GetENVValue("BENOR_BASE_PORT", strconv.Itoa(common.DefaultBasePort))
	flagNetworkScheme        string = common.GetENVValue("BENOR_SCHEME", common.DefaultScheme)
	flagNetworkStorage       string = common.GetENVValue("BENOR_STORAGE", common.DefaultStorage)
	flagNetworkRoundInterval string = common.GetENVValue("BENOR_ROUND_INTERVAL", common.DefaultRoundInterval.String())
	flagNetworkSeed          string = common.GetENVValue("BENOR_SEED", "0")
	flagNetworkStart         bool   = common.GetENVValue("BENOR_START", "0") == "1"
	flagNetworkWait          string = common.GetENVValue("BENOR_WAIT", "0s")
	flagNetworkFormat        string = common.GetENVValue("BENOR_FORMAT", "prettyjson")
)

var (
	networkCmd *cobra.Command

	networkConfig launcher.NetworkConfig
	networkWait   time.Duration
	networkEncode cmdcommon.Encode
)

func init() {
	networkCmd = &cobra.Command{
		Use:   "network",
		Short: "Run every node of a network in this process",
		Run: func(c *cobra.Command, args []string) {
			parseFlagsLogging(c)
			parseFlagsNetwork(c)

			if err := runNetwork(c.OutOrStdout()); err != nil {
				cmdcommon.PrintError(c, err)
			}
		},
	}

	networkCmd.Flags().StringVar(&flagNetworkConfig, "config", flagNetworkConfig, "yaml file of the network; the other network flags are ignored")
	networkCmd.Flags().StringVar(&flagNetworkNodes, "nodes", flagNetworkNodes, "number of nodes")
	networkCmd.Flags().StringVar(&flagNetworkFaults, "faults", flagNetworkFaults, "number of faulty nodes tolerated")
	networkCmd.Flags().StringVar(&flagNetworkValues, "values", flagNetworkValues, "initial value of every node, ex) '0,0,0,1'")
	networkCmd.Flags().StringVar(&flagNetworkFaulty, "faulty", flagNetworkFaulty, "ids of the faulty nodes, ex) '3'")
	networkCmd.Flags().StringVar(&flagNetworkBasePort, "base-port", flagNetworkBasePort, "the node `id` listens at base-port + id")
	networkCmd.Flags().StringVar(&flagNetworkScheme, "scheme", flagNetworkScheme, "scheme of the nodes, {http, memory}")
	networkCmd.Flags().StringVar(&flagNetworkStorage, "storage", flagNetworkStorage, "storage uri of the round journals")
	networkCmd.Flags().StringVar(&flagNetworkRoundInterval, "round-interval", flagNetworkRoundInterval, "interval of the round schedulers")
	networkCmd.Flags().StringVar(&flagNetworkSeed, "seed", flagNetworkSeed, "seed of the coins; 0 seeds from the clock")
	networkCmd.Flags().BoolVar(&flagNetworkStart, "start", flagNetworkStart, "start the consensus once every node is ready")
	networkCmd.Flags().StringVar(&flagNetworkWait, "wait", flagNetworkWait, "wait until every node decides, then print the states and exit; 0 waits for the signal")
	networkCmd.Flags().StringVar(&flagNetworkFormat, "format", flagNetworkFormat, "format of the states, {json, prettyjson, yaml}")

	rootCmd.AddCommand(networkCmd)
}

// parseFlagFaulty turns the ids of the faulty nodes into the faulty list of
// the network.
func parseFlagFaulty(s string, n int) (faulty []bool, err error) {
	var ids []int
	if ids, err = cmdcommon.ParseIntList(s); err != nil || len(ids) < 1 {
		return
	}

	faulty = make([]bool, n)
	for _, id := range ids {
		if id < 0 || id >= n {
			err = fmt.Errorf("unknown node id, %d", id)
			return
		}
		faulty[id] = true
	}

	return
}

func parseFlagsNetwork(c *cobra.Command) {
	var err error

	if len(flagNetworkConfig) > 0 {
		if networkConfig, err = launcher.LoadNetworkConfig(flagNetworkConfig); err != nil {
			cmdcommon.PrintFlagsError(c, "--config", err)
		}
	} else {
		nc := launcher.NetworkConfig{
			N:             parseInt(c, "--nodes", flagNetworkNodes),
			F:             parseInt(c, "--faults", flagNetworkFaults),
			BasePort:      parseInt(c, "--base-port", flagNetworkBasePort),
			Scheme:        flagNetworkScheme,
			Storage:       flagNetworkStorage,
			RoundInterval: parseDuration(c, "--round-interval", flagNetworkRoundInterval),
		}

		if nc.Seed, err = strconv.ParseInt(flagNetworkSeed, 10, 64); err != nil {
			cmdcommon.PrintFlagsError(c, "--seed", err)
		}
		if nc.InitialValues, err = cmdcommon.ParseIntList(flagNetworkValues); err != nil {
			cmdcommon.PrintFlagsError(c, "--values", err)
		}
		if nc.Faulty, err = parseFlagFaulty(flagNetworkFaulty, nc.N); err != nil {
			cmdcommon.PrintFlagsError(c, "--faulty", err)
		}
		if err = nc.Validate(); err != nil {
			cmdcommon.PrintFlagsError(c, "--values", err)
		}

		networkConfig = nc
	}

	networkWait = parseDuration(c, "--wait", flagNetworkWait)

	var found bool
	if networkEncode, found = cmdcommon.DefaultEncodes[flagNetworkFormat]; !found {
		cmdcommon.PrintFlagsError(c, "--format", fmt.Errorf("unknown format, %q", flagNetworkFormat))
	}

	log.Info("Starting benor network")
	log.Debug(
		"parsed flags:",
		"\n\tconfig", flagNetworkConfig,
		"\n\tnetwork", networkConfig,
		"\n\tstart", flagNetworkStart,
		"\n\twait", networkWait,
		"\n\tformat", flagNetworkFormat,
		"\n\tlog-level", flagLogLevel,
		"\n\tlog-output", flagLogOutput,
	)
}

// runNetwork serves the network until the signal comes or, with `--wait`,
// until every node decides.
func runNetwork(w io.Writer) error {
	metrics.InitPrometheusMetrics()

	nw, err := launcher.LaunchNetwork(context.Background(), networkConfig)
	if err != nil {
		return errors.Wrap(err, "failed to launch network")
	}

	// Execution group.
	var g run.Group
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return serveNetwork(nw, w, cancel)
		}, func(error) {
			close(cancel)
			nw.Close()
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

	return g.Run()
}

func serveNetwork(nw *launcher.Network, w io.Writer, cancel <-chan struct{}) error {
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	go func() {
		select {
		case <-cancel:
			cancelCtx()
		case <-ctx.Done():
		}
	}()

	if flagNetworkStart {
		if err := nw.StartAll(ctx); err != nil {
			return errors.Wrap(err, "failed to start consensus")
		}
	}

	if networkWait < 1 {
		select {
		case <-nw.Done():
			return nw.Err()
		case <-ctx.Done():
			return nil
		}
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, networkWait)
	defer waitCancel()

	states, err := nw.WaitDecided(waitCtx)
	if len(states) > 0 {
		if encodeErr := printStates(w, states); encodeErr != nil {
			return encodeErr
		}
	}

	return err
}

type nodeStateOutput struct {
	Node int `json:"node" yaml:"node"`

	Killed  bool             `json:"killed" yaml:"killed"`
	X       *consensus.Value `json:"x" yaml:"x"`
	Decided *bool            `json:"decided" yaml:"decided"`
	K       *uint64          `json:"k" yaml:"k"`
}

func printStates(w io.Writer, states []consensus.NodeState) error {
	var outputs []nodeStateOutput
	for i, state := range states {
		outputs = append(outputs, nodeStateOutput{
			Node:    i,
			Killed:  state.Killed,
			X:       state.X,
			Decided: state.Decided,
			K:       state.K,
		})
	}

	return networkEncode(outputs, w)
}
