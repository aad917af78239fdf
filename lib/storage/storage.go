package storage

type Item struct {
	Key   string
	Value interface{}
}

type (
	// WalkFunc receives the raw key and value, which are only valid during
	// the call. Returning false stops the walk.
	WalkFunc func(key, value []byte) (bool, error)

	// WalkOption limits a walk. With `Cursor`, the walk starts right after
	// the cursor key in the walking direction; the cursor itself is skipped.
	WalkOption struct {
		Cursor  string
		Limit   uint64
		Reverse bool
	}
)

func NewWalkOption(limit uint64, reverse bool) *WalkOption {
	return &WalkOption{
		Limit:   limit,
		Reverse: reverse,
	}
}

func (o *WalkOption) From(cursor string) *WalkOption {
	o.Cursor = cursor
	return o
}
