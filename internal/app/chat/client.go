/*
Package chat contains the core logic for live direct-message delivery.

This file defines the Client struct, representing one active WebSocket
connection. It manages the connection lifecycle, the read and write pumps,
and the transition from an anonymous connection to an identified room member.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// MaxContentBytes caps the ciphertext length of a single message.
	MaxContentBytes = 5000

	// persistTimeout bounds the message log write triggered by one send event.
	persistTimeout = 5 * time.Second
)

// Client represents one active WebSocket connection. A connection starts
// anonymous and becomes identified after a verified join; only identified
// connections may send messages.
type Client struct {
	// broker owning this connection.
	broker *Broker

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// mu guards name and room, which change on join and disconnect.
	mu sync.RWMutex

	// name is the verified identity, empty while anonymous.
	name string

	// room is the membership the connection currently holds, nil while anonymous.
	room *Room

	// closeOnce makes the send-channel close idempotent between pump exits.
	closeOnce sync.Once

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for a freshly upgraded connection.
func NewClient(broker *Broker, conn *websocket.Conn) *Client {
	return &Client{
		broker: broker,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: logx.Logger().With().Str("component", "ChatClient").Logger(),
	}
}

// Identity returns the verified user name, or "" while the connection is anonymous.
func (c *Client) Identity() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// setMembership records the room the connection belongs to. Called by the
// broker with its own lock held; the client mutex only orders this against
// concurrent Identity reads.
func (c *Client) setMembership(name string, room *Room) {
	c.mu.Lock()
	c.name = name
	c.room = room

	// rebuilt from the base so a rejoin does not stack user fields
	logger := logx.Logger().With().Str("component", "ChatClient").Logger()
	if name != "" {
		logger = logger.With().Str("user", name).Logger()
	}
	c.logger = logger
	c.mu.Unlock()
}

// membership returns the current room, nil while anonymous.
func (c *Client) membership() *Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

// ReadPump reads frames from the connection until it closes. It maintains
// the pong heartbeat deadline and dispatches each inbound envelope. On exit
// the connection is removed from its room and closed.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			break
		}

		c.processInbound(frame)
	}
}

// cleanupOnDisconnect detaches the connection from its room and closes the transport.
func (c *Client) cleanupOnDisconnect() {
	c.broker.Leave(c)

	c.closeSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// closeSend closes the send channel exactly once, ending the write pump.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// processInbound parses one raw frame and routes it by event type.
func (c *Client) processInbound(frame []byte) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON frame")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	switch envelope.Event {
	case EventJoinRoom:
		c.handleJoin(envelope.Payload)

	case EventSendMessage:
		c.handleSend(envelope.Payload)

	default:
		c.logger.Warn().Str("event", string(envelope.Event)).Msg("Client sent unsupported event type")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
	}
}

// handleJoin verifies the carried token and attaches the connection to the
// subject's room. A failed verification leaves the connection anonymous.
func (c *Client) handleJoin(payload json.RawMessage) {
	var join JoinPayload
	if err := json.Unmarshal(payload, &join); err != nil || join.Token == "" {
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if customErr := c.broker.Join(c, join.Token); customErr != nil {
		c.SendError(customErr)
		return
	}
}

// handleSend validates an identified send and passes it to the broker for
// persistence and fan-out.
func (c *Client) handleSend(payload json.RawMessage) {
	if c.Identity() == "" {
		c.SendError(errs.NewError(errs.ErrNotIdentified))
		return
	}

	var send SendPayload
	if err := json.Unmarshal(payload, &send); err != nil {
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if len(send.Content) > MaxContentBytes {
		c.SendError(errs.NewError(errs.ErrMessageContentTooLong))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if customErr := c.broker.Dispatch(ctx, c, send); customErr != nil {
		c.SendError(customErr)
	}
}

// WritePump writes queued frames to the connection and keeps the ping
// heartbeat alive. It exits when the send channel closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in write pump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns false when the write pump should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePing sends a heartbeat ping. Returns false when the write pump should terminate.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue places a marshaled frame on the send queue. A full queue drops the
// frame rather than blocking the broker.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping frame")
		return false
	}
}

// SendError pushes an error event to the client.
func (c *Client) SendError(customErr *errs.CustomError) {
	frame, err := NewEnvelope(EventError, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build error envelope")
		return
	}

	c.enqueue(frame)
}
