// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package revolt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/lib/secret"
)

// Session is an authenticated Revolt session. It wraps a Client with a
// session token for making authenticated API calls. Sessions are
// lightweight and safe to create in large numbers.
//
// The session token is stored in a secret.Buffer (mmap-backed, locked
// against swap, excluded from core dumps). The caller must call Close
// when the Session is no longer needed.
type Session struct {
	client *Client
	token  *secret.Buffer
	userID ref.UserID
}

// UserID returns the user this session is authenticated as.
func (s *Session) UserID() ref.UserID {
	return s.userID
}

// Token returns the session token as a heap string. Use only at API
// boundaries that require a string (the websocket authenticate frame);
// prefer passing the Session itself when possible.
func (s *Session) Token() string {
	return s.token.String()
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool.
func (s *Session) CloseIdleConnections() {
	s.client.CloseIdleConnections()
}

// Close releases the session token memory (zeros, unlocks, unmaps).
// Idempotent — safe to call multiple times.
func (s *Session) Close() error {
	if s.token != nil {
		return s.token.Close()
	}
	return nil
}

// FetchMessages fetches a page of message history from a channel.
// The page arrives in server order: newest first for SortLatest,
// oldest first for SortOldest. When query.IncludeUsers is set the
// server bundles the author user records; otherwise Users is empty.
func (s *Session) FetchMessages(ctx context.Context, channel ref.ChannelID, query MessageQuery) (*FetchMessagesResponse, error) {
	values := url.Values{}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if !query.Before.IsZero() {
		values.Set("before", query.Before.String())
	}
	if !query.After.IsZero() {
		values.Set("after", query.After.String())
	}
	if query.Sort != "" {
		values.Set("sort", query.Sort)
	}
	if !query.Nearby.IsZero() {
		values.Set("nearby", query.Nearby.String())
	}
	if query.IncludeUsers {
		values.Set("include_users", "true")
	}

	path := "/channels/" + url.PathEscape(channel.String()) + "/messages"
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil, values)
	if err != nil {
		return nil, fmt.Errorf("revolt: fetch messages for channel %s failed: %w", channel, err)
	}

	// Without include_users the response is a bare array; with it,
	// an object bundling messages and users.
	var response FetchMessagesResponse
	if query.IncludeUsers {
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("revolt: failed to parse messages response: %w", err)
		}
	} else {
		if err := json.Unmarshal(body, &response.Messages); err != nil {
			return nil, fmt.Errorf("revolt: failed to parse messages response: %w", err)
		}
	}
	return &response, nil
}

// SendMessage sends a message to a channel and returns the created
// message as the server recorded it.
func (s *Session) SendMessage(ctx context.Context, channel ref.ChannelID, request SendMessageRequest) (*Message, error) {
	path := "/channels/" + url.PathEscape(channel.String()) + "/messages"
	body, err := s.client.doRequest(ctx, http.MethodPost, path, s.token, request)
	if err != nil {
		return nil, fmt.Errorf("revolt: send message to channel %s failed: %w", channel, err)
	}

	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("revolt: failed to parse send response: %w", err)
	}
	return &message, nil
}

// EditMessage replaces a message's content and embeds. Only the fields
// present in the request change; the server emits a MessageUpdate
// event with the resulting partial.
func (s *Session) EditMessage(ctx context.Context, channel ref.ChannelID, message ref.MessageID, request SendMessageRequest) (*Message, error) {
	path := "/channels/" + url.PathEscape(channel.String()) + "/messages/" + url.PathEscape(message.String())
	body, err := s.client.doRequest(ctx, http.MethodPatch, path, s.token, request)
	if err != nil {
		return nil, fmt.Errorf("revolt: edit message %s failed: %w", message, err)
	}

	var edited Message
	if err := json.Unmarshal(body, &edited); err != nil {
		return nil, fmt.Errorf("revolt: failed to parse edit response: %w", err)
	}
	return &edited, nil
}

// DeleteMessage removes a message.
func (s *Session) DeleteMessage(ctx context.Context, channel ref.ChannelID, message ref.MessageID) error {
	path := "/channels/" + url.PathEscape(channel.String()) + "/messages/" + url.PathEscape(message.String())
	if _, err := s.client.doRequest(ctx, http.MethodDelete, path, s.token, nil); err != nil {
		return fmt.Errorf("revolt: delete message %s failed: %w", message, err)
	}
	return nil
}

// AddReaction reacts to a message with the given emoji (a custom emoji
// ID or a unicode emoji).
func (s *Session) AddReaction(ctx context.Context, channel ref.ChannelID, message ref.MessageID, emojiID string) error {
	path := "/channels/" + url.PathEscape(channel.String()) +
		"/messages/" + url.PathEscape(message.String()) +
		"/reactions/" + url.PathEscape(emojiID)
	if _, err := s.client.doRequest(ctx, http.MethodPut, path, s.token, nil); err != nil {
		return fmt.Errorf("revolt: add reaction to message %s failed: %w", message, err)
	}
	return nil
}

// RemoveReactionOptions narrows what RemoveReaction removes. The zero
// value removes the calling user's own reaction.
type RemoveReactionOptions struct {
	// UserID removes another user's reaction (requires permission).
	UserID ref.UserID
	// RemoveAll removes every user's reaction under the emoji.
	RemoveAll bool
}

// RemoveReaction removes a reaction from a message.
func (s *Session) RemoveReaction(ctx context.Context, channel ref.ChannelID, message ref.MessageID, emojiID string, options RemoveReactionOptions) error {
	values := url.Values{}
	if !options.UserID.IsZero() {
		values.Set("user_id", options.UserID.String())
	}
	if options.RemoveAll {
		values.Set("remove_all", "true")
	}

	path := "/channels/" + url.PathEscape(channel.String()) +
		"/messages/" + url.PathEscape(message.String()) +
		"/reactions/" + url.PathEscape(emojiID)
	if _, err := s.client.doRequest(ctx, http.MethodDelete, path, s.token, nil, values); err != nil {
		return fmt.Errorf("revolt: remove reaction from message %s failed: %w", message, err)
	}
	return nil
}

// FetchUser fetches a user record by ID. Pass "@me" semantics by using
// the session's own user ID.
func (s *Session) FetchUser(ctx context.Context, user ref.UserID) (*User, error) {
	path := "/users/" + url.PathEscape(user.String())
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil)
	if err != nil {
		return nil, fmt.Errorf("revolt: fetch user %s failed: %w", user, err)
	}

	var record User
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("revolt: failed to parse user response: %w", err)
	}
	return &record, nil
}

// FetchUserProfile fetches the extended profile for a user. Some
// instances omit the profile from the user record; this endpoint
// fills it in.
func (s *Session) FetchUserProfile(ctx context.Context, user ref.UserID) (*UserProfile, error) {
	path := "/users/" + url.PathEscape(user.String()) + "/profile"
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil)
	if err != nil {
		return nil, fmt.Errorf("revolt: fetch profile for user %s failed: %w", user, err)
	}

	var profile UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("revolt: failed to parse profile response: %w", err)
	}
	return &profile, nil
}
