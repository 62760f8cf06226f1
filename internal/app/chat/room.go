/*
Package chat contains the core logic for live direct-message delivery.

This file defines the Room struct: the broadcast group for one user name.
Membership is transient connection state, never persisted. A user with
several open connections (multiple devices) holds several memberships in
the same room.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"dmchat/internal/app/message"
	"dmchat/internal/pkg/logx"
)

// Room is the set of live connections belonging to one user name.
type Room struct {
	// Name is the user name this room fans out to.
	Name string

	// mu protects members and serializes Deliver calls, so every member
	// observes pushes in the order the broker processed them.
	mu sync.RWMutex

	// members holds the currently joined connections.
	members map[*Client]struct{}

	// structured logger with room context.
	logger zerolog.Logger
}

// NewRoom creates an empty room for the given user name.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[*Client]struct{}),
		logger:  logx.Logger().With().Str("component", "Room").Str("room", name).Logger(),
	}
}

// add joins a connection to the room.
func (r *Room) add(c *Client) {
	r.mu.Lock()
	r.members[c] = struct{}{}
	total := len(r.members)
	r.mu.Unlock()

	r.logger.Info().Int("members", total).Msg("Connection joined room")
}

// remove detaches a connection and reports the remaining member count.
func (r *Room) remove(c *Client) int {
	r.mu.Lock()
	delete(r.members, c)
	total := len(r.members)
	r.mu.Unlock()

	r.logger.Info().Int("members", total).Msg("Connection left room")
	return total
}

// Size returns the current number of member connections.
func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Deliver pushes one persisted message to every member connection. Delivery
// is at-most-once per member: a member whose send queue is full misses the
// push and recovers it from history on its next fetch. The write lock keeps
// concurrent Deliver calls from interleaving, preserving per-room order.
func (r *Room) Deliver(m *message.Message) {
	frame, err := NewEnvelope(EventReceiveMessage, m)
	if err != nil {
		r.logger.Error().Err(err).Str("message_id", m.ID).Msg("Failed to marshal push frame")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for member := range r.members {
		if !member.enqueue(frame) {
			r.logger.Warn().Str("message_id", m.ID).Msg("Dropped push for slow member")
		}
	}
}
