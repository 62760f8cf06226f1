/*
Package chat contains the core logic for live direct-message delivery:
per-user rooms, connection lifecycles, and fan-out of persisted messages.

This file defines the wire protocol spoken over the realtime connection.
Every frame is a JSON envelope with an event name and an event-specific
payload.
*/
package chat

import (
	"encoding/json"
	"time"

	"dmchat/internal/app/message"
)

// EventType names a realtime protocol event.
type EventType string

const (
	// EventJoinRoom is sent by a client to announce its identity. The
	// payload carries the bearer token; the room name is derived from the
	// verified token subject, never from a client-supplied string.
	EventJoinRoom EventType = "joinRoom"

	// EventSendMessage is sent by an identified client to deliver one
	// direct message. Content is ciphertext; the server stores and forwards
	// it without inspection.
	EventSendMessage EventType = "sendMessage"

	// EventReceiveMessage is pushed by the server to every member of the
	// recipient's room after the message is persisted.
	EventReceiveMessage EventType = "receiveMessage"

	// EventError is pushed by the server when an inbound event fails.
	EventError EventType = "error"
)

// Envelope is the outer frame of every realtime message.
type Envelope struct {
	Event   EventType       `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload carries the bearer token proving the joining identity.
type JoinPayload struct {
	Token string `json:"token"`
}

// SendPayload is the client's request to deliver one message. The timestamp
// is a client-side hint only; the authoritative timestamp is assigned by the
// message log at persist time.
type SendPayload struct {
	Recipient string    `json:"recipient"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ReceivePayload is the pushed form of a stored message.
type ReceivePayload = message.Message

// ErrorPayload mirrors the REST error body so clients handle both surfaces uniformly.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewEnvelope marshals payload and wraps it with the event name.
func NewEnvelope(event EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{Event: event, Payload: raw})
}
