package consensus

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"boscoin.io/benor/lib/errors"
)

// Message is a round vote, or a decision announcement when `Final` is set.
type Message struct {
	X     Value  `json:"x" msgpack:"x"`
	K     uint64 `json:"k" msgpack:"k"`
	Final bool   `json:"final,omitempty" msgpack:"final,omitempty"`
}

func NewMessage(x Value, k uint64) Message {
	return Message{X: x, K: k}
}

func NewFinalMessage(x Value, k uint64) Message {
	return Message{X: x, K: k, Final: true}
}

func (m Message) Serialize() ([]byte, error) {
	return json.Marshal(m)
}

func (m Message) String() string {
	if m.Final {
		return fmt.Sprintf("final(x=%d k=%d)", m.X, m.K)
	}

	return fmt.Sprintf("vote(x=%d k=%d)", m.X, m.K)
}

// RawMessage is a message as decoded from the wire, before its fields are
// checked.
type RawMessage struct {
	X     interface{} `json:"x" msgpack:"x"`
	K     interface{} `json:"k" msgpack:"k"`
	Final interface{} `json:"final" msgpack:"final"`
}

// Message checks that `x` and `k` are numbers, `x` is 0 or 1 and `k` is a
// non-negative integer. Only a boolean true `final` marks a decision.
func (r RawMessage) Message() (m Message, err error) {
	var x, k float64
	var ok bool

	if x, ok = toNumber(r.X); !ok {
		err = errors.MessageMalformed.Clone().SetData("field", "x")
		return
	}
	if k, ok = toNumber(r.K); !ok {
		err = errors.MessageMalformed.Clone().SetData("field", "k")
		return
	}

	if x != 0 && x != 1 {
		err = errors.MessageMalformed.Clone().SetData("field", "x")
		return
	}
	if k < 0 || k != math.Trunc(k) || k > math.MaxInt64 {
		err = errors.MessageMalformed.Clone().SetData("field", "k")
		return
	}

	m.X = Value(x)
	m.K = uint64(k)
	m.Final, _ = r.Final.(bool)

	return
}

func NewMessageFromJSON(b []byte) (m Message, err error) {
	var raw RawMessage
	if err = json.Unmarshal(b, &raw); err != nil {
		err = errors.MessageMalformed.Clone().SetData("error", err.Error())
		return
	}

	return raw.Message()
}

func toNumber(i interface{}) (float64, bool) {
	if i == nil {
		return 0, false
	}

	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
