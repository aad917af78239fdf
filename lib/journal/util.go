package journal

import (
	"boscoin.io/benor/lib/common"
)

var now = common.NowISO8601
