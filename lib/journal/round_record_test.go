package journal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/benor/lib/consensus"
	"boscoin.io/benor/lib/errors"
	"boscoin.io/benor/lib/storage"
)

func TestRoundRecordSave(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	rr := NewRoundRecord(3, consensus.RoundResult{Round: 2, Count0: 1, Count1: 2, X: consensus.One, Coin: true})
	require.NoError(t, rr.Save(st))
	require.NotEmpty(t, rr.Time)

	exists, err := ExistsRoundRecord(st, 3, 2)
	require.NoError(t, err)
	require.True(t, exists)

	fetched, err := GetRoundRecord(st, 3, 2)
	require.NoError(t, err)
	require.Equal(t, rr, fetched)

	// saving again overwrites
	rr.Decided = true
	require.NoError(t, rr.Save(st))
	fetched, err = GetRoundRecord(st, 3, 2)
	require.NoError(t, err)
	require.True(t, fetched.Decided)

	_, err = GetRoundRecord(st, 3, 3)
	require.Equal(t, errors.StorageRecordNotFound, err)
}

func TestGetRoundRecords(t *testing.T) {
	st, _ := storage.NewTestMemoryLevelDBBackend()
	defer st.Close()

	// rounds beyond 9 must still be ordered numerically
	for _, round := range []uint64{11, 0, 2, 10, 1} {
		rr := NewRoundRecord(1, consensus.RoundResult{Round: round, X: consensus.Zero})
		require.NoError(t, rr.Save(st))
	}
	other := NewRoundRecord(10, consensus.RoundResult{Round: 0, X: consensus.One})
	require.NoError(t, other.Save(st))

	rounds := func(records []RoundRecord) (r []uint64) {
		for _, rr := range records {
			require.Equal(t, 1, rr.Node)
			r = append(r, rr.Round)
		}
		return
	}

	records, err := GetRoundRecords(st, 1, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 2, 10, 11}, rounds(records))

	records, err = GetRoundRecords(st, 1, storage.NewWalkOption(2, true))
	require.NoError(t, err)
	require.Equal(t, []uint64{11, 10}, rounds(records))

	records, err = GetRoundRecords(st, 2, nil)
	require.NoError(t, err)
	require.Empty(t, records)
}
