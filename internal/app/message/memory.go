package message

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-process Repository used by tests. It reproduces
// the ordering semantics of the Postgres implementation: ascending
// timestamp, insertion sequence breaking ties.
type MemoryRepository struct {
	mu       sync.Mutex
	messages []Message
	nextSeq  int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextSeq: 1}
}

func (r *MemoryRepository) Append(_ context.Context, m *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.Seq = r.nextSeq
	r.nextSeq++
	r.messages = append(r.messages, *m)

	return nil
}

func (r *MemoryRepository) HistoryBetween(_ context.Context, userA, userB string) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := []Message{}
	for _, m := range r.messages {
		if (m.Sender == userA && m.Recipient == userB) || (m.Sender == userB && m.Recipient == userA) {
			history = append(history, m)
		}
	}

	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].Timestamp.Equal(history[j].Timestamp) {
			return history[i].Timestamp.Before(history[j].Timestamp)
		}
		return history[i].Seq < history[j].Seq
	})

	return history, nil
}
