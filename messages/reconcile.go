// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package messages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/revolt"
)

// EmojiLoader accepts the bulk emoji payload from the websocket Ready
// event. Implemented by emoji.Registry.
type EmojiLoader interface {
	LoadFromReady(emojis []revolt.Emoji, autumnURL string)
}

// ReconcilerConfig carries the dependencies for a Reconciler.
type ReconcilerConfig struct {
	// Store receives the event transitions. Required.
	Store *Store

	// Enricher processes created messages before insertion. Required.
	Enricher *Enricher

	// Emojis resolves reaction keys. Required.
	Emojis EmojiSource

	// EmojiLoader, when set, is fed the emoji payload of the Ready
	// event along with AutumnURL.
	EmojiLoader EmojiLoader
	AutumnURL   string

	// Logger is required.
	Logger *slog.Logger
}

// Reconciler applies live websocket events to the Store, strictly in
// delivery order. Edits, deletes, and reactions reference prior state
// by message ID, so events are never reordered or batched.
type Reconciler struct {
	store       *Store
	enricher    *Enricher
	emojis      EmojiSource
	emojiLoader EmojiLoader
	autumnURL   string
	logger      *slog.Logger

	// seen de-duplicates create events. Grows for the Reconciler's
	// lifetime; bounded in practice by the messages seen in one run.
	seen map[ref.MessageID]struct{}
}

// NewReconciler creates a Reconciler.
func NewReconciler(config ReconcilerConfig) (*Reconciler, error) {
	if config.Store == nil || config.Enricher == nil || config.Emojis == nil {
		return nil, fmt.Errorf("messages: reconciler requires a store, enricher, and emoji source")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("messages: reconciler requires a logger")
	}
	return &Reconciler{
		store:       config.Store,
		enricher:    config.Enricher,
		emojis:      config.Emojis,
		emojiLoader: config.EmojiLoader,
		autumnURL:   config.AutumnURL,
		logger:      config.Logger,
		seen:        make(map[ref.MessageID]struct{}),
	}, nil
}

// Run consumes events until the channel closes or ctx is cancelled.
// Events are applied serially on the calling goroutine.
func (r *Reconciler) Run(ctx context.Context, events <-chan revolt.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			r.apply(ctx, event)
		}
	}
}

// apply dispatches one event. Unknown event types are no-ops.
func (r *Reconciler) apply(ctx context.Context, event revolt.Event) {
	switch e := event.(type) {
	case *revolt.ReadyEvent:
		if r.emojiLoader != nil {
			r.emojiLoader.LoadFromReady(e.Emojis, r.autumnURL)
			r.logger.Info("emoji registry loaded", "count", len(e.Emojis))
		}

	case *revolt.MessageEvent:
		if _, dup := r.seen[e.ID]; dup {
			return
		}
		if !r.store.Tracks(e.Channel) {
			// Not yet interested in this channel; drop rather than
			// queue.
			return
		}
		enriched, err := r.enricher.Enrich(ctx, e.Message)
		if err != nil {
			r.logger.Warn("dropping live message, enrichment cancelled",
				"message_id", e.ID,
				"error", err)
			return
		}
		if r.store.InsertLive(e.Channel, enriched) {
			r.seen[e.ID] = struct{}{}
		}

	case *revolt.MessageUpdateEvent:
		r.store.ApplyUpdate(e.Channel, e.ID, e.Data)

	case *revolt.MessageDeleteEvent:
		// The ID stays in seen: a create replayed after the delete
		// (reconnect redelivery) must not resurrect the message.
		r.store.ApplyDelete(e.Channel, e.ID)

	case *revolt.MessageReactEvent:
		r.store.ApplyReact(e.ChannelID, e.ID, r.reactionKey(e.EmojiID), e.UserID)

	case *revolt.MessageUnreactEvent:
		r.store.ApplyUnreact(e.ChannelID, e.ID, r.reactionKey(e.EmojiID), e.UserID)
	}
}

// reactionKey annotates a raw emoji ID with its resolved location,
// matching the key form the Enricher gives stored reaction maps.
func (r *Reconciler) reactionKey(emojiID string) string {
	if location, ok := r.emojis.Get(emojiID); ok {
		return location + ":" + emojiID
	}
	return emojiID
}
