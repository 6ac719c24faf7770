// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package messages

import (
	"fmt"
	"sync"

	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/revolt"
)

// Store is the per-channel message cache. Each channel holds an
// ordered slice, newest message first. A channel's list is created
// lazily by the first fetched page and lives for the process lifetime.
//
// One mutex guards all operations, so a compound read-modify-write
// from the fetch path cannot interleave with a live event mid-update.
type Store struct {
	mu          sync.Mutex
	channels    map[ref.ChannelID][]revolt.Message
	atBeginning map[ref.ChannelID]bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		channels:    make(map[ref.ChannelID][]revolt.Message),
		atBeginning: make(map[ref.ChannelID]bool),
	}
}

// Get returns a copy of the channel's message list, newest first, and
// whether the channel has a list at all.
func (s *Store) Get(channel ref.ChannelID) ([]revolt.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.channels[channel]
	if !ok {
		return nil, false
	}
	return append([]revolt.Message(nil), list...), true
}

// Tracks reports whether the channel has a list, without copying it.
func (s *Store) Tracks(channel ref.ChannelID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.channels[channel]
	return ok
}

// Len reports the number of cached messages for a channel.
func (s *Store) Len(channel ref.ChannelID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channels[channel])
}

// AtBeginning reports whether the channel's history has been paged all
// the way back to its first message.
func (s *Store) AtBeginning(channel ref.ChannelID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atBeginning[channel]
}

// MarkAtBeginning records that a history fetch reached the start of
// the channel (a before-direction page came back short).
func (s *Store) MarkAtBeginning(channel ref.ChannelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atBeginning[channel] = true
}

// InsertLive prepends a freshly created message to the channel's list.
// Channels without a list are skipped: a live create for a channel we
// never fetched means we are not yet interested in it, and queueing it
// would build history out of nothing. A message whose ID is already
// present is skipped too. Reports whether the message was inserted.
func (s *Store) InsertLive(channel ref.ChannelID, message revolt.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.channels[channel]
	if !ok {
		return false
	}
	for i := range list {
		if list[i].ID == message.ID {
			return false
		}
	}
	s.channels[channel] = append([]revolt.Message{message}, list...)
	return true
}

// MergePage integrates a fetched history page into the channel's list
// and returns a copy of the full updated list.
//
// A channel with no list yet adopts the page verbatim in server order.
// For an existing list, a nearby search, a relevance sort, or an empty
// page is display-only: the page is returned unchanged and the list is
// not touched (non-linear result sets must not corrupt linear
// history). Otherwise the page is reordered to oldest-of-page-first
// (Latest pages arrive newest first and are reversed; other sorts keep
// server order), deduplicated against the list, and spliced in at the
// cursor: after the Before message, or at the After message's
// position. Cursors missing from the list fall back to the end and the
// start respectively.
//
// Merging into an existing list with neither cursor set is a caller
// error.
func (s *Store) MergePage(channel ref.ChannelID, page []revolt.Message, query revolt.MessageQuery) ([]revolt.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, exists := s.channels[channel]
	if !exists {
		s.channels[channel] = append([]revolt.Message(nil), page...)
		return append([]revolt.Message(nil), page...), nil
	}

	if !query.Nearby.IsZero() || query.Sort == revolt.SortRelevance || len(page) == 0 {
		return append([]revolt.Message(nil), page...), nil
	}

	if query.Before.IsZero() && query.After.IsZero() {
		return nil, fmt.Errorf("messages: merging a page into channel %s requires a before or after cursor", channel)
	}

	ordered := append([]revolt.Message(nil), page...)
	if query.Sort == revolt.SortLatest {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	// Pages can overlap what live events already inserted.
	present := make(map[ref.MessageID]struct{}, len(list))
	for i := range list {
		present[list[i].ID] = struct{}{}
	}
	fresh := ordered[:0]
	for _, message := range ordered {
		if _, dup := present[message.ID]; !dup {
			fresh = append(fresh, message)
		}
	}

	var insertAt int
	if !query.Before.IsZero() {
		insertAt = len(list)
		if i := indexOf(list, query.Before); i >= 0 {
			insertAt = i + 1
		}
	} else {
		insertAt = 0
		if i := indexOf(list, query.After); i >= 0 {
			insertAt = i
		}
	}

	merged := make([]revolt.Message, 0, len(list)+len(fresh))
	merged = append(merged, list[:insertAt]...)
	merged = append(merged, fresh...)
	merged = append(merged, list[insertAt:]...)
	s.channels[channel] = merged
	return append([]revolt.Message(nil), merged...), nil
}

// ApplyUpdate overwrites the fields present in the partial update on
// the identified message; absent fields keep their prior values.
// Unknown channels and messages are no-ops.
func (s *Store) ApplyUpdate(channel ref.ChannelID, id ref.MessageID, update revolt.PartialMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.channels[channel]
	i := indexOf(list, id)
	if i < 0 {
		return false
	}

	message := &list[i]
	if update.Nonce != nil {
		message.Nonce = *update.Nonce
	}
	if update.Channel != nil {
		message.Channel = *update.Channel
	}
	if update.Author != nil {
		message.Author = *update.Author
	}
	if update.Webhook != nil {
		message.Webhook = update.Webhook
	}
	if update.Content != nil {
		message.Content = *update.Content
	}
	if update.System != nil {
		message.System = update.System
	}
	if update.Attachments != nil {
		message.Attachments = update.Attachments
	}
	if update.Edited != nil {
		message.Edited = *update.Edited
	}
	if update.Embeds != nil {
		message.Embeds = update.Embeds
	}
	if update.Mentions != nil {
		message.Mentions = update.Mentions
	}
	if update.Replies != nil {
		message.Replies = update.Replies
	}
	if update.Reactions != nil {
		message.Reactions = update.Reactions
	}
	if update.Interactions != nil {
		message.Interactions = update.Interactions
	}
	if update.Masquerade != nil {
		message.Masquerade = update.Masquerade
	}
	return true
}

// ApplyDelete removes the identified message. Unknown channels and
// messages are no-ops.
func (s *Store) ApplyDelete(channel ref.ChannelID, id ref.MessageID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.channels[channel]
	i := indexOf(list, id)
	if i < 0 {
		return false
	}
	s.channels[channel] = append(list[:i:i], list[i+1:]...)
	return true
}

// ApplyReact adds user to the reaction key's user set, creating the
// key if absent. The key is the registry-resolved form computed by the
// caller ("location:emojiID", or the raw emoji ID when unresolved).
func (s *Store) ApplyReact(channel ref.ChannelID, id ref.MessageID, key string, user ref.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.channels[channel]
	i := indexOf(list, id)
	if i < 0 {
		return false
	}

	message := &list[i]
	if message.Reactions == nil {
		message.Reactions = make(map[string][]ref.UserID)
	}
	for _, existing := range message.Reactions[key] {
		if existing == user {
			return true
		}
	}
	message.Reactions[key] = append(message.Reactions[key], user)
	return true
}

// ApplyUnreact removes user from the reaction key's user set, deleting
// the key entirely when the set becomes empty.
func (s *Store) ApplyUnreact(channel ref.ChannelID, id ref.MessageID, key string, user ref.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.channels[channel]
	i := indexOf(list, id)
	if i < 0 {
		return false
	}

	message := &list[i]
	users := message.Reactions[key]
	for j, existing := range users {
		if existing == user {
			users = append(users[:j:j], users[j+1:]...)
			if len(users) == 0 {
				delete(message.Reactions, key)
			} else {
				message.Reactions[key] = users
			}
			return true
		}
	}
	return false
}

// indexOf scans for a message ID. Linear; fine at chat-history scale.
func indexOf(list []revolt.Message, id ref.MessageID) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
