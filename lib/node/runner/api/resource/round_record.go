package resource

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"boscoin.io/benor/lib/journal"
)

type RoundRecord struct {
	rr journal.RoundRecord
}

func NewRoundRecord(rr journal.RoundRecord) *RoundRecord {
	return &RoundRecord{rr: rr}
}

func (r RoundRecord) GetMap() hal.Entry {
	return hal.Entry{
		"node":    r.rr.Node,
		"round":   r.rr.Round,
		"count0":  r.rr.Count0,
		"count1":  r.rr.Count1,
		"x":       r.rr.X,
		"decided": r.rr.Decided,
		"coin":    r.rr.Coin,
		"final":   r.rr.Final,
		"time":    r.rr.Time,
	}
}

func (r RoundRecord) Resource() *hal.Resource {
	return hal.NewResource(r, r.LinkSelf())
}

func (r RoundRecord) LinkSelf() string {
	return strings.Replace(URLRound, "{round}", strconv.FormatUint(r.rr.Round, 10), -1)
}

func (r RoundRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Resource().GetMap())
}
