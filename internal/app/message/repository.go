package message

import (
	"context"
	"errors"
)

// ErrInvalidMessage reports a persist call with an empty sender or
// recipient, or a sender equal to the recipient.
var ErrInvalidMessage = errors.New("message: sender and recipient must be non-empty and distinct")

// Repository is the persistence boundary for the message log.
type Repository interface {
	// Append stores m and assigns its insertion sequence. Append failures
	// propagate to the caller so delivery can be suppressed; they are never
	// swallowed.
	Append(ctx context.Context, m *Message) error

	// HistoryBetween returns every message exchanged between userA and
	// userB, in either direction, ascending by timestamp with insertion
	// order breaking ties. No messages yields an empty slice, not an error.
	HistoryBetween(ctx context.Context, userA, userB string) ([]Message, error)
}
