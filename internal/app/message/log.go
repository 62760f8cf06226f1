package message

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dmchat/internal/pkg/logx"
)

// Log assigns identity and timestamps to messages and appends them to a
// Repository. It is safe for concurrent use; each Persist call is
// independent and the repository provides the insertion ordering.
type Log struct {
	repo   Repository
	logger zerolog.Logger

	// now is replaceable so tests can pin timestamps.
	now func() time.Time
}

func NewLog(repo Repository) *Log {
	return &Log{
		repo:   repo,
		logger: logx.Logger().With().Str("component", "MessageLog").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Persist validates, stamps, and appends one message. The returned Message
// carries the server-assigned id and timestamp. A repository failure
// propagates to the caller so fan-out can be suppressed.
func (l *Log) Persist(ctx context.Context, sender, recipient, ciphertext string) (*Message, error) {
	if sender == "" || recipient == "" || sender == recipient {
		return nil, ErrInvalidMessage
	}

	m := &Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Recipient: recipient,
		Content:   ciphertext,
		Timestamp: l.now(),
	}

	if err := l.repo.Append(ctx, m); err != nil {
		l.logger.Error().Err(err).
			Str("sender", sender).
			Str("recipient", recipient).
			Msg("Failed to append message")
		return nil, err
	}

	return m, nil
}

// History returns the full conversation between userA and userB, ascending
// by timestamp.
func (l *Log) History(ctx context.Context, userA, userB string) ([]Message, error) {
	return l.repo.HistoryBetween(ctx, userA, userB)
}
