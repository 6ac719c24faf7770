// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package revolt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alexispurslane/bloc/lib/clock"
	"github.com/alexispurslane/bloc/lib/testutil"
)

// wsTestServer upgrades incoming connections and hands them to serve
// on a goroutine. Frames read from the client are delivered on the
// frames channel as raw JSON.
type wsTestServer struct {
	server *httptest.Server
	frames chan map[string]any

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newWSTestServer(t *testing.T) *wsTestServer {
	t.Helper()
	ws := &wsTestServer{frames: make(chan map[string]any, 16)}
	upgrader := websocket.Upgrader{}
	ws.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ws.mu.Lock()
		ws.conns = append(ws.conns, conn)
		ws.mu.Unlock()
		for {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			ws.frames <- frame
		}
	}))
	t.Cleanup(func() {
		ws.mu.Lock()
		for _, conn := range ws.conns {
			conn.Close()
		}
		ws.mu.Unlock()
		ws.server.Close()
	})
	return ws
}

func (ws *wsTestServer) url() string {
	return "ws" + strings.TrimPrefix(ws.server.URL, "http")
}

// send writes a frame to the most recent connection.
func (ws *wsTestServer) send(t *testing.T, frame any) {
	t.Helper()
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if len(ws.conns) == 0 {
		t.Fatal("no websocket connection")
	}
	if err := ws.conns[len(ws.conns)-1].WriteJSON(frame); err != nil {
		t.Fatalf("writing frame: %v", err)
	}
}

func startSocket(t *testing.T, ws *wsTestServer, clk clock.Clock) (*Socket, context.CancelFunc, chan error) {
	t.Helper()
	socket, err := NewSocket(SocketConfig{
		URL:    ws.url(),
		Token:  mustSecret(t, "tok-abc"),
		Logger: testLogger(),
		Clock:  clk,
	})
	if err != nil {
		t.Fatalf("NewSocket: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- socket.Run(ctx) }()
	t.Cleanup(cancel)
	return socket, cancel, done
}

func TestSocketAuthenticatesAndDeliversEvents(t *testing.T) {
	ws := newWSTestServer(t)
	socket, _, _ := startSocket(t, ws, clock.Real())

	// First frame the server sees must be Authenticate with the
	// session token.
	frame := testutil.RequireReceive(t, ws.frames, 5*time.Second, "authenticate frame")
	if frame["type"] != "Authenticate" || frame["token"] != "tok-abc" {
		t.Fatalf("first frame = %v", frame)
	}

	ws.send(t, map[string]any{"type": "Authenticated"})
	ws.send(t, map[string]any{
		"type": "Message", "_id": "m1", "channel": "chan1", "author": "U1", "content": "hi",
	})

	event := testutil.RequireReceive(t, socket.Events(), 5*time.Second, "authenticated event")
	if _, ok := event.(*AuthenticatedEvent); !ok {
		t.Fatalf("event = %T, want *AuthenticatedEvent", event)
	}

	event = testutil.RequireReceive(t, socket.Events(), 5*time.Second, "message event")
	message, ok := event.(*MessageEvent)
	if !ok {
		t.Fatalf("event = %T, want *MessageEvent", event)
	}
	if message.Content != "hi" {
		t.Errorf("message = %+v", message.Message)
	}
}

func TestSocketSkipsUnknownAndMalformedFrames(t *testing.T) {
	ws := newWSTestServer(t)
	socket, _, _ := startSocket(t, ws, clock.Real())
	testutil.RequireReceive(t, ws.frames, 5*time.Second, "authenticate frame")

	ws.send(t, map[string]any{"type": "ChannelStartTyping", "id": "chan1"})
	ws.send(t, json.RawMessage(`{"type":"MessageDelete","id":"m1","channel":"chan1"}`))

	// Only the known event comes through.
	event := testutil.RequireReceive(t, socket.Events(), 5*time.Second, "delete event")
	if _, ok := event.(*MessageDeleteEvent); !ok {
		t.Fatalf("event = %T, want *MessageDeleteEvent", event)
	}
}

func TestSocketHeartbeat(t *testing.T) {
	ws := newWSTestServer(t)
	fakeClock := clock.Fake(time.Unix(1700000000, 0))
	_, _, _ = startSocket(t, ws, fakeClock)
	testutil.RequireReceive(t, ws.frames, 5*time.Second, "authenticate frame")

	// The heartbeat goroutine registers its ticker asynchronously;
	// poll Advance until the ping arrives.
	deadline := time.After(5 * time.Second)
	for {
		fakeClock.Advance(heartbeatInterval)
		select {
		case frame := <-ws.frames:
			if frame["type"] != "Ping" {
				t.Fatalf("frame = %v, want Ping", frame)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for heartbeat")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSocketReconnects(t *testing.T) {
	ws := newWSTestServer(t)
	socket, _, _ := startSocket(t, ws, clock.Real())
	testutil.RequireReceive(t, ws.frames, 5*time.Second, "authenticate frame")

	// Drop the connection server-side; the socket must dial again and
	// re-authenticate.
	ws.mu.Lock()
	ws.conns[0].Close()
	ws.mu.Unlock()

	frame := testutil.RequireReceive(t, ws.frames, 10*time.Second, "re-authenticate frame")
	if frame["type"] != "Authenticate" {
		t.Fatalf("frame = %v, want Authenticate", frame)
	}

	ws.send(t, map[string]any{
		"type": "Message", "_id": "m2", "channel": "chan1", "author": "U1", "content": "back",
	})
	event := testutil.RequireReceive(t, socket.Events(), 5*time.Second, "event after reconnect")
	if message, ok := event.(*MessageEvent); !ok || message.Content != "back" {
		t.Fatalf("event = %+v", event)
	}
}

func TestSocketStopsOnCancel(t *testing.T) {
	ws := newWSTestServer(t)
	socket, cancel, done := startSocket(t, ws, clock.Real())
	testutil.RequireReceive(t, ws.frames, 5*time.Second, "authenticate frame")

	cancel()

	if err := testutil.RequireReceive(t, done, 5*time.Second, "Run return"); err != nil {
		t.Errorf("Run returned %v, want nil on cancellation", err)
	}

	// Events channel closes once Run returns.
	for {
		select {
		case _, ok := <-socket.Events():
			if !ok {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Events channel not closed")
		}
	}
}
