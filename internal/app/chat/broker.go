/*
Package chat contains the core logic for live direct-message delivery.

This file defines the Broker, the central coordinator of the realtime layer.
It verifies join announcements, owns the map of per-user rooms, and drives
the persist-then-fan-out path for every send event.
*/
package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"dmchat/internal/app/message"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
)

// MessageStore is the slice of the message log the broker depends on.
type MessageStore interface {
	Persist(ctx context.Context, sender, recipient, ciphertext string) (*message.Message, error)
}

// Broker coordinates all live connections. Rooms are created on first join
// and removed when their last member leaves; nothing about them is persisted.
type Broker struct {
	// store persists every message before fan-out is attempted.
	store MessageStore

	// jwtSecret verifies the bearer token carried by join announcements.
	jwtSecret string

	// mu protects the rooms map.
	mu sync.RWMutex

	// rooms maps a user name to that user's live room.
	rooms map[string]*Room

	// structured logger with broker context.
	logger zerolog.Logger
}

// NewBroker constructs a Broker backed by the given message store.
func NewBroker(store MessageStore, jwtSecret string) *Broker {
	return &Broker{
		store:     store,
		jwtSecret: jwtSecret,
		rooms:     make(map[string]*Room),
		logger:    logx.Logger().With().Str("component", "Broker").Logger(),
	}
}

// Join verifies the bearer token and attaches the connection to the room of
// the token's subject. The room name is always derived from the verified
// token, never from a client-supplied string. A connection that was already
// joined moves rooms; membership is overwritten, not accumulated.
func (b *Broker) Join(c *Client, token string) *errs.CustomError {
	payload, err := jwt.ParseToken(token, b.jwtSecret)
	if err != nil {
		b.logger.Warn().Err(err).Msg("Join rejected: token verification failed")
		return errs.NewError(errs.ErrInvalidToken)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if previous := c.membership(); previous != nil {
		if previous.Name == payload.Name {
			return nil
		}
		b.detachLocked(c, previous)
	}

	room, ok := b.rooms[payload.Name]
	if !ok {
		room = NewRoom(payload.Name)
		b.rooms[payload.Name] = room
		b.logger.Info().Str("room", payload.Name).Msg("Room created")
	}

	room.add(c)
	c.setMembership(payload.Name, room)

	return nil
}

// Leave removes the connection from whatever room it belongs to. Other
// memberships of the same user are unaffected and no message is generated.
func (b *Broker) Leave(c *Client) {
	room := c.membership()
	if room == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.detachLocked(c, room)
	c.setMembership("", nil)
}

// detachLocked removes c from room and drops the room once empty.
// Caller holds b.mu.
func (b *Broker) detachLocked(c *Client, room *Room) {
	if room.remove(c) == 0 {
		delete(b.rooms, room.Name)
		b.logger.Info().Str("room", room.Name).Msg("Room removed")
	}
}

// Dispatch persists one send and fans it out to the recipient's room.
// Persistence failure suppresses fan-out and surfaces to the sender; a
// recipient with no live room still gets the durable record and nothing else.
func (b *Broker) Dispatch(ctx context.Context, c *Client, send SendPayload) *errs.CustomError {
	sender := c.Identity()
	if sender == "" {
		return errs.NewError(errs.ErrNotIdentified)
	}

	stored, err := b.store.Persist(ctx, sender, send.Recipient, send.Content)
	if err != nil {
		if errors.Is(err, message.ErrInvalidMessage) {
			return errs.NewError(errs.ErrRecipientInvalid)
		}

		b.logger.Error().Err(err).
			Str("sender", sender).
			Str("recipient", send.Recipient).
			Msg("Persist failed, fan-out suppressed")
		return errs.NewError(errs.ErrStorageUnavailable)
	}

	b.mu.RLock()
	room := b.rooms[send.Recipient]
	b.mu.RUnlock()

	if room != nil {
		room.Deliver(stored)
	}

	return nil
}

// GetRoom returns the live room for a user name, or nil when the user has
// no connected sessions.
func (b *Broker) GetRoom(name string) *Room {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rooms[name]
}

// Shutdown closes the send queue of every connected client, which unwinds
// their write pumps and closes the underlying connections.
func (b *Broker) Shutdown() {
	b.mu.Lock()
	rooms := make([]*Room, 0, len(b.rooms))
	for _, room := range b.rooms {
		rooms = append(rooms, room)
	}
	b.rooms = make(map[string]*Room)
	b.mu.Unlock()

	for _, room := range rooms {
		room.mu.Lock()
		for member := range room.members {
			member.closeSend()
		}
		room.mu.Unlock()
	}

	b.logger.Info().Msg("Broker shutdown complete")
}
