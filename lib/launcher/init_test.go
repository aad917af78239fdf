package launcher

import (
	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/common/test"
)

func init() {
	SetLogging(logging.LvlDebug, test.LogHandler())
}
