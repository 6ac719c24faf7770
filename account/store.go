// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

// Package account persists the logged-in session and caches user
// profiles.
//
// The Store owns a single JSON state file holding the UserSession:
// which instance we are logged into, the session token, and the user's
// preference map. The Repository layers the live API objects on top:
// it performs login against a revolt.Client, builds the authenticated
// revolt.Session, and answers user lookups from an in-memory profile
// cache.
package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexispurslane/bloc/lib/ref"
)

// UserSession is the persisted state of a logged-in account.
type UserSession struct {
	// InstanceAPIURL, WebsocketURL, and AutumnURL locate the instance
	// the session belongs to. Captured from the node query at login so
	// resuming does not depend on the instance being reachable.
	InstanceAPIURL string `json:"instance_api_url"`
	WebsocketURL   string `json:"websocket_url"`
	AutumnURL      string `json:"autumn_url"`

	Email        string     `json:"email"`
	SessionID    string     `json:"session_id"`
	UserID       ref.UserID `json:"user_id"`
	SessionToken string     `json:"session_token"`
	DisplayName  string     `json:"display_name,omitempty"`

	// Preferences is an opaque string map owned by the UI layer.
	Preferences map[string]string `json:"-"`
}

// persistedSession is the on-disk form. Preferences are kept as raw
// JSON so a corrupted preference blob degrades to empty preferences
// instead of discarding the whole session.
type persistedSession struct {
	UserSession
	Preferences json.RawMessage `json:"preferences,omitempty"`
}

// Store persists a UserSession to a JSON state file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store backed by the given file path. The parent
// directory is created on first save.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the persisted session. A missing state file is not an
// error: it returns (nil, nil), meaning no one is logged in. Malformed
// preferences are logged and replaced with an empty map; the session
// itself survives.
func (s *Store) Load() (*UserSession, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("account: reading state file: %w", err)
	}

	var persisted persistedSession
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("account: parsing state file %s: %w", s.path, err)
	}

	session := persisted.UserSession
	session.Preferences = make(map[string]string)
	if len(persisted.Preferences) > 0 {
		if err := json.Unmarshal(persisted.Preferences, &session.Preferences); err != nil {
			s.logger.Warn("discarding malformed preferences",
				"path", s.path,
				"error", err)
			session.Preferences = make(map[string]string)
		}
	}
	return &session, nil
}

// SaveLogin writes the session to the state file. The write is atomic:
// a temp file in the same directory is renamed over the target, so a
// crash mid-write never leaves a truncated state file.
func (s *Store) SaveLogin(session UserSession) error {
	persisted := persistedSession{UserSession: session}
	if len(session.Preferences) > 0 {
		encoded, err := json.Marshal(session.Preferences)
		if err != nil {
			return fmt.Errorf("account: encoding preferences: %w", err)
		}
		persisted.Preferences = encoded
	}

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("account: encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("account: creating state directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("account: creating temp state file: %w", err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("account: writing state: %w", err)
	}
	if err := temp.Chmod(0o600); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("account: setting state file mode: %w", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("account: closing temp state file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("account: replacing state file: %w", err)
	}
	return nil
}

// Clear deletes the state file. Missing is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("account: removing state file: %w", err)
	}
	return nil
}

// SavePreferences merges the given preferences into the persisted
// session: keys present in updates override, all other keys keep their
// stored value. Fails if no session is persisted.
func (s *Store) SavePreferences(updates map[string]string) error {
	session, err := s.Load()
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("account: no session to save preferences for")
	}
	for key, value := range updates {
		session.Preferences[key] = value
	}
	return s.SaveLogin(*session)
}
