// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionplay/pkg/utils"
)

type failingTransport struct{ err error }

func (f failingTransport) Send(any) error { return f.err }
func (f failingTransport) Close() error   { return f.err }

func TestMultiFansOut(t *testing.T) {
	a, b := &utils.MockTransport{}, &utils.MockTransport{}
	m := Multi{a, b}

	msg := NewMessage(KindRegion, map[string]float64{"start": 1})
	require.NoError(t, m.Send(msg))
	require.NoError(t, m.Close())

	assert.Equal(t, []any{msg}, a.Messages())
	assert.Equal(t, []any{msg}, b.Messages())
	assert.True(t, a.Closed && b.Closed)
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &utils.MockTransport{}
	m := Multi{failingTransport{boom}, ok}

	assert.ErrorIs(t, m.Send("x"), boom)
	assert.Len(t, ok.Messages(), 1, "a failing transport does not starve the others")
	assert.ErrorIs(t, m.Close(), boom)
}

func TestLoggingTransport(t *testing.T) {
	lt := NewLoggingTransport()
	assert.NoError(t, lt.Send(NewMessage(KindSnapshot, struct{ A int }{1})))
	assert.NoError(t, lt.Send(func() {})) // not JSON encodable
	assert.NoError(t, lt.Close())
}

func dial(t *testing.T, wst *WebSocketTransport) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+wst.Addr()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketBroadcast(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer wst.Close()

	conn := dial(t, wst)
	require.Eventually(t, func() bool { return wst.Clients() == 1 }, 2*time.Second, time.Millisecond)

	require.NoError(t, wst.Send(NewMessage(KindRegion, map[string]float64{"start": 5, "end": 15})))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got struct {
		Kind    Kind               `json:"kind"`
		Payload map[string]float64 `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, KindRegion, got.Kind)
	assert.Equal(t, 15.0, got.Payload["end"])
}

func TestWebSocketReplaysLastMessage(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer wst.Close()

	first := dial(t, wst)
	require.Eventually(t, func() bool { return wst.Clients() == 1 }, 2*time.Second, time.Millisecond)
	require.NoError(t, wst.Send(NewMessage(KindSource, "track-1")))

	// Once the first client has it, the broadcast loop has recorded it.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, first.ReadJSON(&m))

	late := dial(t, wst)
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	var replay Message
	require.NoError(t, late.ReadJSON(&replay))
	assert.Equal(t, KindSource, replay.Kind)
	assert.Equal(t, "track-1", replay.Payload)
}

func TestWebSocketClientDisconnect(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer wst.Close()

	conn := dial(t, wst)
	require.Eventually(t, func() bool { return wst.Clients() == 1 }, 2*time.Second, time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return wst.Clients() == 0 }, 2*time.Second, time.Millisecond)
}

func TestWebSocketClose(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	require.NoError(t, err)

	require.NoError(t, wst.Close())
	require.NoError(t, wst.Close())
	assert.Error(t, wst.Send("late"))
}

func TestWebSocketListenError(t *testing.T) {
	_, err := NewWebSocketTransport("256.0.0.1:bad")
	assert.Error(t, err)
}
