package network

import (
	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/common"
)

var log logging.Logger = logging.New("module", "network")

func SetLogging(level logging.Lvl, handler logging.Handler) {
	lh := logging.LvlFilterHandler(level, handler)
	log.SetHandler(lh)
}

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}
