package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInbox(t *testing.T) {
	inbox := NewInbox()
	inbox.Add(NewMessage(Zero, 0))
	inbox.Add(NewMessage(One, 0))
	inbox.Add(NewMessage(One, 1))

	require.Equal(t, 3, inbox.Len())
	require.Equal(t, 2, len(inbox.Round(0)))
	require.Equal(t, 1, len(inbox.Round(1)))

	_, found := inbox.Final()
	require.False(t, found)

	require.Equal(t, 2, inbox.Prune(0))
	require.Equal(t, 1, inbox.Len())
	require.Equal(t, []Message{NewMessage(One, 1)}, inbox.Messages())

	require.Equal(t, 0, inbox.Prune(0))
}

func TestInboxFinal(t *testing.T) {
	inbox := NewInbox()
	inbox.Add(NewMessage(Zero, 2))
	inbox.Add(NewFinalMessage(One, 2))
	inbox.Add(NewFinalMessage(Zero, 3))

	m, found := inbox.Final()
	require.True(t, found)
	require.Equal(t, NewFinalMessage(One, 2), m)

	// decision announcements are not votes
	require.Equal(t, 1, len(inbox.Round(2)))
	require.Equal(t, 1, inbox.Prune(2))
	require.Equal(t, 2, inbox.Len())
}
