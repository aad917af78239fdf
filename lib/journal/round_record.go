package journal

import (
	"encoding/json"
	"fmt"

	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/storage"
)

// RoundRecord keeps the outcome of one round evaluation, or of the
// adoption of a decision announced by a peer. The storage supports,
//  * find by node and round
//  * list by node, ordered by round
const RoundRecordPrefix string = "rr-" // rr-<node>-<round>

type RoundRecord struct {
	Node    int             `json:"node"`
	Round   uint64          `json:"round"`
	Count0  int             `json:"count0"`
	Count1  int             `json:"count1"`
	X       consensus.Value `json:"x"`
	Decided bool            `json:"decided"`
	Coin    bool            `json:"coin"`
	Final   bool            `json:"final"`
	Time    string          `json:"time"`
}

func NewRoundRecord(node int, result consensus.RoundResult) RoundRecord {
	return RoundRecord{
		Node:    node,
		Round:   result.Round,
		Count0:  result.Count0,
		Count1:  result.Count1,
		X:       result.X,
		Decided: result.Decided,
		Coin:    result.Coin,
		Final:   result.Final,
	}
}

func GetRoundRecordNodePrefix(node int) string {
	return fmt.Sprintf("%s%05d-", RoundRecordPrefix, node)
}

// GetRoundRecordKey pads the round so the keys of one node sort by round.
func GetRoundRecordKey(node int, round uint64) string {
	return fmt.Sprintf("%s%020d", GetRoundRecordNodePrefix(node), round)
}

func (rr RoundRecord) Key() string {
	return GetRoundRecordKey(rr.Node, rr.Round)
}

func (rr RoundRecord) Serialize() ([]byte, error) {
	return json.Marshal(rr)
}

func (rr RoundRecord) String() string {
	encoded, _ := json.Marshal(rr)
	return string(encoded)
}

func (rr *RoundRecord) Save(st *storage.LevelDBBackend) (err error) {
	key := rr.Key()

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if len(rr.Time) < 1 {
		rr.Time = now()
	}

	if exists {
		err = st.Set(key, rr)
	} else {
		err = st.New(key, rr)
	}
	if err != nil {
		return
	}

	log.Debug("round record saved", "record", rr)

	return
}

func GetRoundRecord(st *storage.LevelDBBackend, node int, round uint64) (rr RoundRecord, err error) {
	err = st.Get(GetRoundRecordKey(node, round), &rr)
	return
}

func ExistsRoundRecord(st *storage.LevelDBBackend, node int, round uint64) (bool, error) {
	return st.Has(GetRoundRecordKey(node, round))
}

// GetRoundRecords returns the records of the node ordered by round.
func GetRoundRecords(st *storage.LevelDBBackend, node int, option *storage.WalkOption) (records []RoundRecord, err error) {
	err = st.Walk(
		GetRoundRecordNodePrefix(node),
		option,
		func(key, value []byte) (bool, error) {
			var rr RoundRecord
			if err := json.Unmarshal(value, &rr); err != nil {
				return false, err
			}
			records = append(records, rr)
			return true, nil
		},
	)

	return
}
