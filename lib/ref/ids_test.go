// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/json"
	"testing"
)

func TestParseChannelID(t *testing.T) {
	t.Run("valid ULID", func(t *testing.T) {
		id, err := ParseChannelID("01H4X2K9QZJ3W8R5T6Y7V0B1N2")
		if err != nil {
			t.Fatalf("ParseChannelID failed: %v", err)
		}
		if id.String() != "01H4X2K9QZJ3W8R5T6Y7V0B1N2" {
			t.Errorf("unexpected string form: %s", id)
		}
		if id.IsZero() {
			t.Error("parsed ID should not be zero")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := ParseChannelID(""); err == nil {
			t.Fatal("expected error for empty ID")
		}
	})

	t.Run("invalid characters", func(t *testing.T) {
		for _, raw := range []string{"abc def", "id-with-dash", "<@mention>", "a:b"} {
			if _, err := ParseChannelID(raw); err == nil {
				t.Errorf("expected error for %q", raw)
			}
		}
	})
}

func TestZeroValues(t *testing.T) {
	var channel ChannelID
	var message MessageID
	var user UserID

	if !channel.IsZero() || !message.IsZero() || !user.IsZero() {
		t.Error("zero values should report IsZero")
	}
	if _, err := channel.MarshalText(); err == nil {
		t.Error("marshaling zero ChannelID should fail")
	}
	if _, err := message.MarshalText(); err == nil {
		t.Error("marshaling zero MessageID should fail")
	}
	if _, err := user.MarshalText(); err == nil {
		t.Error("marshaling zero UserID should fail")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Channel  ChannelID `json:"channel"`
		Author   UserID    `json:"author"`
		Mentions []UserID  `json:"mentions"`
	}

	original := `{"channel":"chan1","author":"U1","mentions":["U1","U2"]}`
	var decoded payload
	if err := json.Unmarshal([]byte(original), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Channel.String() != "chan1" {
		t.Errorf("unexpected channel: %s", decoded.Channel)
	}
	if len(decoded.Mentions) != 2 || decoded.Mentions[1].String() != "U2" {
		t.Errorf("unexpected mentions: %v", decoded.Mentions)
	}

	encoded, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(encoded) != original {
		t.Errorf("round trip mismatch:\n got: %s\nwant: %s", encoded, original)
	}
}

func TestUnmarshalRejectsInvalid(t *testing.T) {
	var user UserID
	if err := json.Unmarshal([]byte(`"not valid!"`), &user); err == nil {
		t.Fatal("expected error for invalid user ID")
	}
}
