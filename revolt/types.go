// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package revolt

import (
	"encoding/json"

	"github.com/alexispurslane/bloc/lib/ref"
)

// Message is a Revolt channel message. Rendered fields (RenderedContent,
// EnrichedAt, System.RenderedMessage) are local-only: they are derived
// by the enrichment engine from the wire fields plus the lookup
// services' state at processing time, and are never sent back to the
// server.
type Message struct {
	ID           ref.MessageID           `json:"_id"`
	Nonce        string                  `json:"nonce,omitempty"`
	Channel      ref.ChannelID           `json:"channel"`
	Author       ref.UserID              `json:"author"`
	Webhook      *MessageWebhook         `json:"webhook,omitempty"`
	Content      string                  `json:"content,omitempty"`
	System       *SystemEvent            `json:"system,omitempty"`
	Attachments  []File                  `json:"attachments,omitempty"`
	Edited       string                  `json:"edited,omitempty"`
	Embeds       []json.RawMessage       `json:"embeds,omitempty"`
	Mentions     []ref.UserID            `json:"mentions,omitempty"`
	Replies      []ref.MessageID         `json:"replies,omitempty"`
	Reactions    map[string][]ref.UserID `json:"reactions,omitempty"`
	Interactions *Interactions           `json:"interactions,omitempty"`
	Masquerade   *Masquerade             `json:"masquerade,omitempty"`

	// RenderedContent is Content with mention tokens and emoji
	// shortcodes resolved into display references. Derived; not
	// authoritative across two enrichment passes (a profile arriving
	// later changes the rendering of subsequent passes, never of past
	// ones).
	RenderedContent string `json:"-"`

	// EnrichedAt records when the enrichment engine processed this
	// message, in RFC 3339 format. Distinct from Edited, which is the
	// server's edit timestamp.
	EnrichedAt string `json:"-"`
}

// PartialMessage carries the fields of a MessageUpdate event. A nil
// pointer (or nil slice/map) means the field was absent from the
// update and the prior value must be retained; field-level, not
// whole-record, replacement.
type PartialMessage struct {
	Nonce       *string                 `json:"nonce,omitempty"`
	Channel     *ref.ChannelID          `json:"channel,omitempty"`
	Author      *ref.UserID             `json:"author,omitempty"`
	Webhook     *MessageWebhook         `json:"webhook,omitempty"`
	Content     *string                 `json:"content,omitempty"`
	System      *SystemEvent            `json:"system,omitempty"`
	Attachments []File                  `json:"attachments,omitempty"`
	Edited      *string                 `json:"edited,omitempty"`
	Embeds      []json.RawMessage       `json:"embeds,omitempty"`
	Mentions    []ref.UserID            `json:"mentions,omitempty"`
	Replies     []ref.MessageID         `json:"replies,omitempty"`
	Reactions   map[string][]ref.UserID `json:"reactions,omitempty"`
	Interactions *Interactions          `json:"interactions,omitempty"`
	Masquerade  *Masquerade             `json:"masquerade,omitempty"`
}

// SystemEvent is the payload of a system message (member joined,
// channel renamed, and so on). Message is the raw text; some event
// types embed mention tokens in it.
type SystemEvent struct {
	Type    string     `json:"type"`
	Message string     `json:"content,omitempty"`
	By      ref.UserID `json:"by,omitempty"`

	// RenderedMessage is Message with mention tokens resolved.
	// Local-only, set by the enrichment engine.
	RenderedMessage string `json:"-"`
}

// MessageWebhook identifies the webhook that authored a message.
type MessageWebhook struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Masquerade overrides the displayed author of a message.
type Masquerade struct {
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Colour string `json:"colour,omitempty"`
}

// Interactions restricts how users may interact with a message.
type Interactions struct {
	Reactions         []string `json:"reactions,omitempty"`
	RestrictReactions bool     `json:"restrict_reactions,omitempty"`
}

// File is an attachment stored on the instance's Autumn file server.
type File struct {
	ID          string `json:"_id"`
	Tag         string `json:"tag"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// FileURL composes the download URL for a file: {autumn}/{tag}/{id}.
func FileURL(autumnURL string, file File) string {
	return autumnURL + "/" + file.Tag + "/" + file.ID
}

// User is a Revolt user record.
type User struct {
	ID            ref.UserID   `json:"_id"`
	Username      string       `json:"username"`
	Discriminator string       `json:"discriminator,omitempty"`
	DisplayName   string       `json:"display_name,omitempty"`
	Avatar        *File        `json:"avatar,omitempty"`
	Badges        int          `json:"badges,omitempty"`
	Online        bool         `json:"online,omitempty"`
	Relationship  string       `json:"relationship,omitempty"`
	Profile       *UserProfile `json:"profile,omitempty"`
}

// Name returns the user's preferred display form: the display name
// when set, else the username handle.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// UserProfile is the extended profile fetched separately from the user
// record.
type UserProfile struct {
	Content    string `json:"content,omitempty"`
	Background *File  `json:"background,omitempty"`
}

// Emoji is a custom emoji registered on a server.
type Emoji struct {
	ID        string      `json:"_id"`
	Parent    EmojiParent `json:"parent"`
	CreatorID ref.UserID  `json:"creator_id"`
	Name      string      `json:"name"`
	Animated  bool        `json:"animated,omitempty"`
	NSFW      bool        `json:"nsfw,omitempty"`
}

// EmojiParent locates the server (or detached state) an emoji belongs to.
type EmojiParent struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Channel is a text channel as seen in the Ready snapshot.
type Channel struct {
	ID          ref.ChannelID `json:"_id"`
	ChannelType string        `json:"channel_type"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Sort orders for message history fetches.
const (
	SortLatest    = "Latest"
	SortOldest    = "Oldest"
	SortRelevance = "Relevance"
)

// MessageQuery controls pagination for FetchMessages. Zero values mean
// "not set" and are omitted from the request.
type MessageQuery struct {
	// Limit caps the number of messages returned; 0 uses the server
	// default.
	Limit int

	// Before and After anchor the page at a message ID cursor.
	Before ref.MessageID
	After  ref.MessageID

	// Sort is SortLatest, SortOldest, or SortRelevance. Empty uses
	// the server default (Latest).
	Sort string

	// Nearby returns messages around the given ID. A nearby page is
	// not linear history and is never merged into the channel store.
	Nearby ref.MessageID

	// IncludeUsers asks the server to bundle the author user records
	// with the page.
	IncludeUsers bool
}

// FetchMessagesResponse is returned by Session.FetchMessages. Users is
// populated only when the query set IncludeUsers.
type FetchMessagesResponse struct {
	Messages []Message `json:"messages"`
	Users    []User    `json:"users,omitempty"`
}

// SendMessageRequest is the body for sending or editing a message.
type SendMessageRequest struct {
	Content     string            `json:"content,omitempty"`
	Attachments []string          `json:"attachments,omitempty"`
	Replies     []ReplyTo         `json:"replies,omitempty"`
	Embeds      []json.RawMessage `json:"embeds,omitempty"`
	Masquerade  *Masquerade       `json:"masquerade,omitempty"`
	Nonce       string            `json:"nonce,omitempty"`
}

// ReplyTo references a message being replied to.
type ReplyTo struct {
	ID      ref.MessageID `json:"id"`
	Mention bool          `json:"mention"`
}

// NodeInfo is returned by Client.QueryNode: the instance's version,
// feature endpoints, and websocket URL.
type NodeInfo struct {
	Revolt       string       `json:"revolt"`
	Features     NodeFeatures `json:"features"`
	WebSocketURL string       `json:"ws"`
	AppURL       string       `json:"app"`
}

// NodeFeatures lists the optional services an instance runs.
type NodeFeatures struct {
	Autumn  FeatureStatus `json:"autumn"`
	January FeatureStatus `json:"january"`
	Voso    FeatureStatus `json:"voso"`
}

// FeatureStatus reports whether a feature is enabled and where it is
// served.
type FeatureStatus struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url,omitempty"`
}

// LoginRequest is the body for password login. FriendlyName labels the
// session in the account's session list.
type LoginRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FriendlyName string `json:"friendly_name,omitempty"`
}

// MFALoginRequest completes a login that required multi-factor
// authentication, using the ticket from the first response.
type MFALoginRequest struct {
	MFATicket    string      `json:"mfa_ticket"`
	MFAResponse  MFAResponse `json:"mfa_response"`
	FriendlyName string      `json:"friendly_name,omitempty"`
}

// MFAResponse carries one completed MFA challenge.
type MFAResponse struct {
	TOTPCode     string `json:"totp_code,omitempty"`
	RecoveryCode string `json:"recovery_code,omitempty"`
}

// LoginResponse is returned by Client.Login and Client.LoginMFA.
// Result is "Success" when a session was created, or "MFA" when the
// caller must complete a challenge via LoginMFA with the Ticket.
type LoginResponse struct {
	Result string `json:"result"`

	// Success fields.
	ID          string     `json:"_id,omitempty"`
	UserID      ref.UserID `json:"user_id,omitempty"`
	Token       string     `json:"token,omitempty"`
	DisplayName string     `json:"name,omitempty"`

	// MFA fields.
	Ticket         string     `json:"ticket,omitempty"`
	AllowedMethods []string   `json:"allowed_methods,omitempty"`
}
