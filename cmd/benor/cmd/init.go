package cmd

import (
	"os"

	logging "github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"

	cmdcommon "boscoin.io/benor/cmd/benor/common"
	"boscoin.io/benor/lib/common"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/journal"
	"boscoin.io/benor/lib/launcher"
	"boscoin.io/benor/lib/network"
	"boscoin.io/benor/lib/node"
	"boscoin.io/benor/lib/node/runner"
	"boscoin.io/benor/lib/node/runner/api"
)

const defaultLogLevel logging.Lvl = logging.LvlInfo

var (
	flagLogLevel  string = common.GetENVValue("BENOR_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput string = common.GetENVValue("BENOR_LOG_OUTPUT", "")
	flagVerbose   bool   = common.GetENVValue("BENOR_VERBOSE", "0") == "1"
)

var (
	logLevel logging.Lvl
	log      logging.Logger = logging.New("module", "main")
)

var rootCmd = &cobra.Command{
	Use:   os.Args[0],
	Short: "benor",
	Run: func(c *cobra.Command, args []string) {
		if len(args) < 1 {
			c.Usage()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	rootCmd.PersistentFlags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", flagVerbose, "verbose")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cmdcommon.PrintFlagsError(rootCmd, "", err)
	}
}

func SetArgs(s []string) {
	rootCmd.SetArgs(s)
}

// parseFlagsLogging sets the handler of every package; the terminal gets
// the colored format and the others get json lines.
func parseFlagsLogging(c *cobra.Command) {
	var err error

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		cmdcommon.PrintFlagsError(c, "--log-level", err)
	}

	var formatter logging.Format
	if isatty.IsTerminal(os.Stdout.Fd()) {
		formatter = logging.TerminalFormat()
	} else {
		formatter = common.JsonFormatEx(false, true)
	}
	logHandler := logging.StreamHandler(os.Stdout, formatter)

	if len(flagLogOutput) < 1 {
		flagLogOutput = "<stdout>"
	} else {
		if logHandler, err = logging.FileHandler(flagLogOutput, common.JsonFormatEx(false, true)); err != nil {
			cmdcommon.PrintFlagsError(c, "--log-output", err)
		}
	}

	if logLevel == logging.LvlDebug {
		logHandler = logging.CallerFileHandler(logHandler)
	}

	log.SetHandler(logging.LvlFilterHandler(logLevel, logHandler))
	common.SetLogging(logLevel, logHandler)
	consensus.SetLogging(logLevel, logHandler)
	journal.SetLogging(logLevel, logHandler)
	launcher.SetLogging(logLevel, logHandler)
	network.SetLogging(logLevel, logHandler)
	node.SetLogging(logLevel, logHandler)
	runner.SetLogging(logLevel, logHandler)
	api.SetLogging(logLevel, logHandler)

	// NOTE instead of set `http2.VerboseLogs`, just use
	// `GODEBUG="http2debug=2"`.
	if flagVerbose {
		http2.VerboseLogs = true
	}
}
