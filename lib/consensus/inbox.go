package consensus

// Inbox keeps the messages received by a node until their round is
// evaluated.
type Inbox struct {
	messages []Message
}

func NewInbox() *Inbox {
	return &Inbox{}
}

func (i *Inbox) Add(m Message) {
	i.messages = append(i.messages, m)
}

func (i *Inbox) Len() int {
	return len(i.messages)
}

// Final returns the first decision announcement in the inbox.
func (i *Inbox) Final() (Message, bool) {
	for _, m := range i.messages {
		if m.Final {
			return m, true
		}
	}

	return Message{}, false
}

// Round returns the votes of round `k`.
func (i *Inbox) Round(k uint64) []Message {
	var votes []Message
	for _, m := range i.messages {
		if !m.Final && m.K == k {
			votes = append(votes, m)
		}
	}

	return votes
}

// Prune removes the votes of round `k` and returns how many were removed.
func (i *Inbox) Prune(k uint64) int {
	kept := i.messages[:0]
	for _, m := range i.messages {
		if !m.Final && m.K == k {
			continue
		}
		kept = append(kept, m)
	}

	removed := len(i.messages) - len(kept)
	for j := len(kept); j < len(i.messages); j++ {
		i.messages[j] = Message{}
	}
	i.messages = kept

	return removed
}

func (i *Inbox) Messages() []Message {
	messages := make([]Message, len(i.messages))
	copy(messages, i.messages)

	return messages
}
