// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// validateID checks that raw is a plausible Revolt identifier. Revolt
// issues ULIDs (26-character Crockford base32), but the validation here
// is deliberately loose — non-empty alphanumeric — because the same
// grammar appears in mention tokens (<@ID>) and some deployments issue
// shorter identifiers for system accounts.
func validateID(kind, raw string) error {
	if raw == "" {
		return fmt.Errorf("ref: empty %s ID", kind)
	}
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return fmt.Errorf("ref: invalid character %q in %s ID %q", r, kind, raw)
		}
	}
	return nil
}

// ChannelID is a validated Revolt channel identifier.
//
// ChannelID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type ChannelID struct {
	id string
}

// ParseChannelID validates and wraps a raw channel ID string.
func ParseChannelID(raw string) (ChannelID, error) {
	if err := validateID("channel", raw); err != nil {
		return ChannelID{}, err
	}
	return ChannelID{id: raw}, nil
}

// String returns the raw channel ID string.
func (c ChannelID) String() string { return c.id }

// IsZero reports whether the ChannelID is the zero value (uninitialized).
func (c ChannelID) IsZero() bool { return c.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (c ChannelID) MarshalText() ([]byte, error) {
	if c.id == "" {
		return nil, fmt.Errorf("ref: cannot marshal zero ChannelID")
	}
	return []byte(c.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (c *ChannelID) UnmarshalText(text []byte) error {
	parsed, err := ParseChannelID(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MessageID is a validated Revolt message identifier.
//
// MessageID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type MessageID struct {
	id string
}

// ParseMessageID validates and wraps a raw message ID string.
func ParseMessageID(raw string) (MessageID, error) {
	if err := validateID("message", raw); err != nil {
		return MessageID{}, err
	}
	return MessageID{id: raw}, nil
}

// String returns the raw message ID string.
func (m MessageID) String() string { return m.id }

// IsZero reports whether the MessageID is the zero value (uninitialized).
func (m MessageID) IsZero() bool { return m.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (m MessageID) MarshalText() ([]byte, error) {
	if m.id == "" {
		return nil, fmt.Errorf("ref: cannot marshal zero MessageID")
	}
	return []byte(m.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (m *MessageID) UnmarshalText(text []byte) error {
	parsed, err := ParseMessageID(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UserID is a validated Revolt user identifier.
//
// UserID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type UserID struct {
	id string
}

// ParseUserID validates and wraps a raw user ID string.
func ParseUserID(raw string) (UserID, error) {
	if err := validateID("user", raw); err != nil {
		return UserID{}, err
	}
	return UserID{id: raw}, nil
}

// String returns the raw user ID string.
func (u UserID) String() string { return u.id }

// IsZero reports whether the UserID is the zero value (uninitialized).
func (u UserID) IsZero() bool { return u.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (u UserID) MarshalText() ([]byte, error) {
	if u.id == "" {
		return nil, fmt.Errorf("ref: cannot marshal zero UserID")
	}
	return []byte(u.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (u *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
