/*
Package ws implements the client side of the realtime channel: one long-lived
WebSocket connection acquired after login and explicitly released on logout,
with pushed messages surfaced through a channel in arrival order.
*/
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"dmchat/internal/app/chat"
	"dmchat/internal/app/message"
)

// Conn is a live connection to the server's realtime endpoint.
type Conn struct {
	conn *websocket.Conn

	// writeMu serializes outbound frames; gorilla allows one concurrent writer.
	writeMu sync.Mutex

	pushes chan message.Message
	errors chan chat.ErrorPayload

	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens the realtime connection against the server base URL
// (http/https, translated to ws/wss) and starts the read loop.
func Dial(ctx context.Context, baseURL string) (*Conn, error) {
	wsURL := strings.TrimRight(baseURL, "/") + "/ws"
	wsURL = strings.Replace(wsURL, "http", "ws", 1)

	conn, res, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime endpoint: %w", err)
	}
	if res != nil && res.Body != nil {
		res.Body.Close()
	}

	c := &Conn{
		conn:   conn,
		pushes: make(chan message.Message, 64),
		errors: make(chan chat.ErrorPayload, 8),
		done:   make(chan struct{}),
	}

	go c.readLoop()

	return c, nil
}

// Join announces the caller's identity by sending the bearer token. The
// server derives the room name from the verified token subject.
func (c *Conn) Join(token string) error {
	return c.writeEvent(chat.EventJoinRoom, chat.JoinPayload{Token: token})
}

// Send emits one message carrying already-encrypted content.
func (c *Conn) Send(recipient, ciphertext string) error {
	return c.writeEvent(chat.EventSendMessage, chat.SendPayload{
		Recipient: recipient,
		Content:   ciphertext,
	})
}

// Pushes returns the channel of live-pushed messages, in arrival order.
// The channel closes when the connection ends.
func (c *Conn) Pushes() <-chan message.Message {
	return c.pushes
}

// Errors returns the channel of server-side error events.
func (c *Conn) Errors() <-chan chat.ErrorPayload {
	return c.errors
}

// Done closes when the connection has ended, whether by Close or by the server.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close releases the connection. Safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

func (c *Conn) writeEvent(event chat.EventType, payload any) error {
	frame, err := chat.NewEnvelope(event, payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// readLoop dispatches inbound envelopes until the connection ends, then
// closes the push and error channels so consumers can drain and stop.
func (c *Conn) readLoop() {
	defer func() {
		close(c.pushes)
		close(c.errors)
		close(c.done)
		c.conn.Close()
	}()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope chat.Envelope
		if err := json.Unmarshal(frame, &envelope); err != nil {
			continue
		}

		switch envelope.Event {
		case chat.EventReceiveMessage:
			var m message.Message
			if err := json.Unmarshal(envelope.Payload, &m); err != nil {
				continue
			}
			// Blocking here preserves arrival order for the reconciler.
			c.pushes <- m

		case chat.EventError:
			var errPayload chat.ErrorPayload
			if err := json.Unmarshal(envelope.Payload, &errPayload); err != nil {
				continue
			}
			select {
			case c.errors <- errPayload:
			default:
			}
		}
	}
}
