package consensus

import (
	"strconv"

	"boscoin.io/benor/lib/errors"
)

// Value is the binary domain of the agreement.
type Value uint8

const (
	Zero Value = 0
	One  Value = 1
)

func NewValue(i int) (Value, error) {
	switch i {
	case 0:
		return Zero, nil
	case 1:
		return One, nil
	default:
		return Zero, errors.InvalidValue.Clone().SetData("value", i)
	}
}

func MustNewValue(i int) Value {
	v, err := NewValue(i)
	if err != nil {
		panic(err)
	}

	return v
}

func (v Value) IsValid() bool {
	return v == Zero || v == One
}

func (v Value) String() string {
	return strconv.Itoa(int(v))
}

func (v Value) Pointer() *Value {
	return &v
}
