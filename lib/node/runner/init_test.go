package runner

import (
	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/common/test"
	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/network"
	"boscoin.io/benor/lib/node"
	"boscoin.io/benor/lib/node/runner/api"
)

func init() {
	handler := test.LogHandler()

	SetLogging(logging.LvlDebug, handler)
	api.SetLogging(logging.LvlDebug, handler)
	consensus.SetLogging(logging.LvlDebug, handler)
	network.SetLogging(logging.LvlDebug, handler)
	node.SetLogging(logging.LvlDebug, handler)
}
