// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package revolt

import (
	"encoding/json"
	"fmt"

	"github.com/alexispurslane/bloc/lib/ref"
)

// Event is a message received over the websocket event stream. The
// concrete type depends on the wire "type" field; callers switch on
// the Go type rather than the string.
type Event interface {
	EventType() string
}

// AuthenticatedEvent confirms the Authenticate frame was accepted.
type AuthenticatedEvent struct{}

func (AuthenticatedEvent) EventType() string { return "Authenticated" }

// PongEvent is the server's reply to a Ping frame. Data echoes the
// ping payload.
type PongEvent struct {
	Data int64 `json:"data"`
}

func (PongEvent) EventType() string { return "Pong" }

// ErrorEvent reports a protocol-level error from the server, most
// commonly an invalid session token during authentication.
type ErrorEvent struct {
	Error string `json:"error"`
}

func (ErrorEvent) EventType() string { return "Error" }

// ReadyEvent is the initial state snapshot sent after authentication.
// It carries the users, channels, and custom emoji the session can see.
type ReadyEvent struct {
	Users    []User    `json:"users"`
	Channels []Channel `json:"channels"`
	Emojis   []Emoji   `json:"emojis"`
}

func (ReadyEvent) EventType() string { return "Ready" }

// MessageEvent announces a newly sent message.
type MessageEvent struct {
	Message
}

func (MessageEvent) EventType() string { return "Message" }

// MessageUpdateEvent announces an edit. Data carries only the fields
// that changed; absent fields keep their current value.
type MessageUpdateEvent struct {
	ID      ref.MessageID  `json:"id"`
	Channel ref.ChannelID  `json:"channel"`
	Data    PartialMessage `json:"data"`
}

func (MessageUpdateEvent) EventType() string { return "MessageUpdate" }

// MessageDeleteEvent announces a deletion.
type MessageDeleteEvent struct {
	ID      ref.MessageID `json:"id"`
	Channel ref.ChannelID `json:"channel"`
}

func (MessageDeleteEvent) EventType() string { return "MessageDelete" }

// MessageReactEvent announces a reaction added to a message. EmojiID
// is either a custom emoji ID or a unicode emoji.
type MessageReactEvent struct {
	ID        ref.MessageID `json:"id"`
	ChannelID ref.ChannelID `json:"channel_id"`
	UserID    ref.UserID    `json:"user_id"`
	EmojiID   string        `json:"emoji_id"`
}

func (MessageReactEvent) EventType() string { return "MessageReact" }

// MessageUnreactEvent announces a reaction removed from a message.
type MessageUnreactEvent struct {
	ID        ref.MessageID `json:"id"`
	ChannelID ref.ChannelID `json:"channel_id"`
	UserID    ref.UserID    `json:"user_id"`
	EmojiID   string        `json:"emoji_id"`
}

func (MessageUnreactEvent) EventType() string { return "MessageUnreact" }

// decodeEvent parses a raw websocket frame into a typed event. Frames
// with an unrecognized type decode to (nil, nil): the protocol adds
// event types over time and unknown ones must not break the stream.
func decodeEvent(data []byte) (Event, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("revolt: malformed event frame: %w", err)
	}

	var event Event
	switch header.Type {
	case "Authenticated":
		event = &AuthenticatedEvent{}
	case "Pong":
		event = &PongEvent{}
	case "Error":
		event = &ErrorEvent{}
	case "Ready":
		event = &ReadyEvent{}
	case "Message":
		event = &MessageEvent{}
	case "MessageUpdate":
		event = &MessageUpdateEvent{}
	case "MessageDelete":
		event = &MessageDeleteEvent{}
	case "MessageReact":
		event = &MessageReactEvent{}
	case "MessageUnreact":
		event = &MessageUnreactEvent{}
	default:
		return nil, nil
	}
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("revolt: malformed %s event: %w", header.Type, err)
	}
	return event, nil
}
