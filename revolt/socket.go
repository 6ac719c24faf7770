// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package revolt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alexispurslane/bloc/lib/clock"
	"github.com/alexispurslane/bloc/lib/secret"
)

const (
	// heartbeatInterval is how often a Ping frame is sent to keep the
	// connection alive. Revolt instances drop connections that go
	// quiet for much longer than this.
	heartbeatInterval = 30 * time.Second

	// reconnectBaseDelay and reconnectMaxDelay bound the exponential
	// backoff between reconnection attempts.
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second

	// eventBuffer is the capacity of the Events channel. A slow
	// consumer stalls the read loop rather than dropping events.
	eventBuffer = 64
)

// SocketConfig carries the dependencies for a Socket.
type SocketConfig struct {
	// URL is the websocket endpoint, e.g. "wss://ws.revolt.chat".
	URL string

	// Token is the session token used for the Authenticate frame.
	// The Socket does not take ownership; the caller closes it.
	Token *secret.Buffer

	// Logger receives connection lifecycle logs. Required.
	Logger *slog.Logger

	// Clock drives the heartbeat and reconnect backoff. Defaults to
	// the real clock.
	Clock clock.Clock

	// Dialer performs the websocket handshake. Defaults to
	// websocket.DefaultDialer. Tests substitute a dialer pointed at a
	// local server.
	Dialer *websocket.Dialer
}

// Socket maintains a websocket connection to a Revolt instance's event
// stream, authenticating, heartbeating, and reconnecting as needed.
// Decoded events are delivered on the Events channel in arrival order.
//
// Create with NewSocket, then call Run to drive the connection. The
// Events channel is closed when Run returns.
type Socket struct {
	url    string
	token  *secret.Buffer
	logger *slog.Logger
	clock  clock.Clock
	dialer *websocket.Dialer

	events chan Event

	// writeMutex serializes writes to the current connection; the
	// heartbeat and Authenticate frame race otherwise.
	writeMutex sync.Mutex
	conn       *websocket.Conn
}

// NewSocket creates a Socket. It does not connect; call Run.
func NewSocket(config SocketConfig) (*Socket, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("revolt: socket URL is required")
	}
	if config.Token == nil {
		return nil, fmt.Errorf("revolt: socket token is required")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("revolt: socket logger is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Dialer == nil {
		config.Dialer = websocket.DefaultDialer
	}
	return &Socket{
		url:    config.URL,
		token:  config.Token,
		logger: config.Logger,
		clock:  config.Clock,
		dialer: config.Dialer,
		events: make(chan Event, eventBuffer),
	}, nil
}

// Events returns the channel on which decoded events are delivered.
// Closed when Run returns.
func (s *Socket) Events() <-chan Event {
	return s.events
}

// Run connects to the event stream and delivers events until ctx is
// cancelled. Connection failures trigger reconnection with exponential
// backoff; Run only returns on cancellation, always nil.
func (s *Socket) Run(ctx context.Context) error {
	defer close(s.events)

	delay := reconnectBaseDelay
	for {
		connectedAt := s.clock.Now()
		err := s.runConnection(ctx)
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Warn("event stream disconnected",
			"url", s.url,
			"error", err,
			"retry_in", delay)

		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(delay):
		}

		// A connection that held for a while resets the backoff.
		if s.clock.Now().Sub(connectedAt) > reconnectMaxDelay {
			delay = reconnectBaseDelay
		} else if delay *= 2; delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

// runConnection dials, authenticates, and pumps one connection until
// it fails or ctx is cancelled.
func (s *Socket) runConnection(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}

	s.writeMutex.Lock()
	s.conn = conn
	s.writeMutex.Unlock()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Closing the conn unblocks the blocked ReadMessage below.
	go func() {
		<-connCtx.Done()
		conn.Close()
	}()

	authenticate := struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}{Type: "Authenticate", Token: s.token.String()}
	if err := s.writeJSON(authenticate); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)
		s.heartbeat(connCtx)
	}()
	defer func() { cancel(); <-heartbeatDone }()

	s.logger.Info("event stream connected", "url", s.url)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		event, err := decodeEvent(data)
		if err != nil {
			s.logger.Warn("dropping malformed event", "error", err)
			continue
		}
		if event == nil {
			continue
		}
		if errorEvent, ok := event.(*ErrorEvent); ok {
			s.logger.Error("event stream error", "error", errorEvent.Error)
		}
		select {
		case s.events <- event:
		case <-connCtx.Done():
			return connCtx.Err()
		}
	}
}

// heartbeat sends Ping frames until ctx is cancelled.
func (s *Socket) heartbeat(ctx context.Context) {
	ticker := s.clock.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping := struct {
				Type string `json:"type"`
				Data int64  `json:"data"`
			}{Type: "Ping", Data: s.clock.Now().UnixMilli()}
			if err := s.writeJSON(ping); err != nil {
				s.logger.Warn("heartbeat failed", "error", err)
				return
			}
		}
	}
}

func (s *Socket) writeJSON(value any) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	if s.conn == nil {
		return fmt.Errorf("not connected")
	}
	return s.conn.WriteJSON(value)
}
