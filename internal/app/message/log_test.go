package message

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistAssignsIdentity(t *testing.T) {
	t.Parallel()

	log := NewLog(NewMemoryRepository())
	pinned := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	log.now = func() time.Time { return pinned }

	m, err := log.Persist(context.Background(), "alice", "bob", "ciphertext")
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "alice", m.Sender)
	assert.Equal(t, "bob", m.Recipient)
	assert.Equal(t, "ciphertext", m.Content)
	assert.True(t, m.Timestamp.Equal(pinned))
}

func TestPersistRejectsInvalid(t *testing.T) {
	t.Parallel()

	log := NewLog(NewMemoryRepository())
	ctx := context.Background()

	cases := []struct {
		name      string
		sender    string
		recipient string
	}{
		{"empty sender", "", "bob"},
		{"empty recipient", "alice", ""},
		{"self message", "alice", "alice"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := log.Persist(ctx, tc.sender, tc.recipient, "x")
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}

func TestHistoryAscendingByTimestamp(t *testing.T) {
	t.Parallel()

	log := NewLog(NewMemoryRepository())
	ctx := context.Background()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	// persist out of chronological order; history must still come back sorted
	for _, offset := range []time.Duration{2 * time.Minute, 0, time.Minute} {
		at := base.Add(offset)
		log.now = func() time.Time { return at }
		_, err := log.Persist(ctx, "alice", "bob", at.Format(time.RFC3339))
		require.NoError(t, err)
	}

	history, err := log.History(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp),
			"history must ascend by timestamp")
	}
}

func TestHistoryTieBrokenByInsertionOrder(t *testing.T) {
	t.Parallel()

	log := NewLog(NewMemoryRepository())
	ctx := context.Background()

	pinned := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return pinned }

	for _, content := range []string{"first", "second", "third"} {
		_, err := log.Persist(ctx, "alice", "bob", content)
		require.NoError(t, err)
	}

	history, err := log.History(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)
}

func TestHistoryScopedToPair(t *testing.T) {
	t.Parallel()

	log := NewLog(NewMemoryRepository())
	ctx := context.Background()

	_, err := log.Persist(ctx, "alice", "bob", "to bob")
	require.NoError(t, err)
	_, err = log.Persist(ctx, "bob", "alice", "to alice")
	require.NoError(t, err)
	_, err = log.Persist(ctx, "alice", "carol", "to carol")
	require.NoError(t, err)
	_, err = log.Persist(ctx, "carol", "bob", "carol to bob")
	require.NoError(t, err)

	history, err := log.History(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, history, 2, "only the alice/bob pair, both directions")
	assert.Equal(t, "to bob", history[0].Content)
	assert.Equal(t, "to alice", history[1].Content)
}

func TestHistoryEmptyPair(t *testing.T) {
	t.Parallel()

	log := NewLog(NewMemoryRepository())

	history, err := log.History(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NotNil(t, history, "empty history marshals as [], not null")
}
