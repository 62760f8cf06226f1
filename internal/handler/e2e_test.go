package handler

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/client/api"
	"dmchat/internal/client/session"
	"dmchat/internal/client/ws"
	"dmchat/internal/pkg/cipher"
)

// waitForRoom polls until name has a live room, so a test can order a send
// after the recipient's join has been processed.
func (e *testEnv) waitForRoom(t *testing.T, name string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if e.deps.Broker.GetRoom(name) != nil {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("room for %q never appeared", name)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestEndToEndDirectMessage(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.handler)
	defer server.Close()
	defer env.deps.Broker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	transit, err := cipher.New(cipher.DeriveKey("shared-passphrase"))
	require.NoError(t, err)

	// both parties register and log in over the real HTTP surface
	alice := api.New(server.URL)
	bob := api.New(server.URL)
	require.NoError(t, alice.Register(ctx, "alice", "alice-secret"))
	require.NoError(t, bob.Register(ctx, "bob", "bob-secret"))

	aliceToken, err := alice.Login(ctx, "alice", "alice-secret")
	require.NoError(t, err)
	bobToken, err := bob.Login(ctx, "bob", "bob-secret")
	require.NoError(t, err)

	// bob sees alice in his contact list, and not himself
	contacts, err := bob.Contacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "alice", contacts[0].Name)

	// both open realtime connections and announce themselves
	aliceConn, err := ws.Dial(ctx, server.URL)
	require.NoError(t, err)
	defer aliceConn.Close()
	require.NoError(t, aliceConn.Join(aliceToken))

	bobConn, err := ws.Dial(ctx, server.URL)
	require.NoError(t, err)
	defer bobConn.Close()
	require.NoError(t, bobConn.Join(bobToken))

	env.waitForRoom(t, "alice")
	env.waitForRoom(t, "bob")

	// alice sends one encrypted message through her reconciler
	aliceSession := session.New("alice", alice, aliceConn, transit)
	require.NoError(t, aliceSession.SelectContact(ctx, "bob"))
	require.NoError(t, aliceSession.Send("hi"))

	// bob's connection receives the push with readable metadata
	var pushedID string
	select {
	case pushed := <-bobConn.Pushes():
		assert.Equal(t, "alice", pushed.Sender)
		assert.Equal(t, "bob", pushed.Recipient)
		assert.NotEqual(t, "hi", pushed.Content, "the server must only ever see ciphertext")

		text, err := transit.Decrypt(pushed.Content)
		require.NoError(t, err)
		assert.Equal(t, "hi", text)
		pushedID = pushed.ID

	case errPayload := <-bobConn.Errors():
		t.Fatalf("server pushed error %d: %s", errPayload.Code, errPayload.Message)

	case <-time.After(5 * time.Second):
		t.Fatal("bob never received the pushed message")
	}

	// the durable record is visible to both sides, ascending
	history, err := bob.History(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, pushedID, history[0].ID)
	assert.Equal(t, "alice", history[0].Sender)

	mirrored, err := alice.History(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, mirrored, 1)
	assert.Equal(t, pushedID, mirrored[0].ID)
}

func TestEndToEndAnonymousSendRejected(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.handler)
	defer server.Close()
	defer env.deps.Broker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := ws.Dial(ctx, server.URL)
	require.NoError(t, err)
	defer conn.Close()

	// no join first; the connection is still anonymous
	require.NoError(t, conn.Send("bob", "ciphertext"))

	select {
	case errPayload := <-conn.Errors():
		assert.NotZero(t, errPayload.Code)
	case <-conn.Pushes():
		t.Fatal("an anonymous connection must not trigger delivery")
	case <-time.After(3 * time.Second):
		t.Fatal("expected an error event for the anonymous send")
	}
}

func TestEndToEndJoinWithForgedToken(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.handler)
	defer server.Close()
	defer env.deps.Broker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := ws.Dial(ctx, server.URL)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Join("not-a-valid-token"))

	select {
	case errPayload := <-conn.Errors():
		assert.NotZero(t, errPayload.Code)
	case <-time.After(3 * time.Second):
		t.Fatal("expected an error event for the forged join")
	}

	assert.Nil(t, env.deps.Broker.GetRoom(""), "a failed join creates no room")
}
