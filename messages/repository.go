// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package messages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/revolt"
)

// ErrUnauthenticated is returned by all Repository operations when no
// session is present. Checked before any network I/O.
var ErrUnauthenticated = errors.New("messages: not authenticated")

// SessionSource provides the current authenticated session, or nil
// when logged out. Implemented by account.Repository.
type SessionSource interface {
	Session() *revolt.Session
}

// RepositoryConfig carries the dependencies for a Repository.
type RepositoryConfig struct {
	// Sessions provides the authenticated session. Required.
	Sessions SessionSource

	// Store receives merged pages. Required.
	Store *Store

	// Enricher processes fetched messages. Required.
	Enricher *Enricher

	// Logger is required.
	Logger *slog.Logger
}

// Repository coordinates history fetches and message operations
// against the REST API, enriching and caching what comes back.
type Repository struct {
	sessions SessionSource
	store    *Store
	enricher *Enricher
	logger   *slog.Logger
}

// NewRepository creates a Repository.
func NewRepository(config RepositoryConfig) (*Repository, error) {
	if config.Sessions == nil || config.Store == nil || config.Enricher == nil {
		return nil, fmt.Errorf("messages: repository requires sessions, a store, and an enricher")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("messages: repository requires a logger")
	}
	return &Repository{
		sessions: config.Sessions,
		store:    config.Store,
		enricher: config.Enricher,
		logger:   config.Logger,
	}, nil
}

// Store exposes the message cache for read access (UI rendering).
func (r *Repository) Store() *Store {
	return r.store
}

// FetchChannelMessages fetches a history page, enriches it, merges it
// into the channel's cached list, and returns the full updated list —
// not just the page — so callers need not separately re-read the
// store. Nearby and relevance fetches return the transient page
// without touching the cache.
//
// A short before-direction page marks the channel's history as fully
// paged back.
func (r *Repository) FetchChannelMessages(ctx context.Context, channel ref.ChannelID, query revolt.MessageQuery) ([]revolt.Message, error) {
	session := r.sessions.Session()
	if session == nil {
		return nil, ErrUnauthenticated
	}

	response, err := session.FetchMessages(ctx, channel, query)
	if err != nil {
		return nil, err
	}

	// Enrich the page concurrently. Completion order does not matter;
	// each result lands at its original page index so merge sees
	// server order.
	enriched := make([]revolt.Message, len(response.Messages))
	var wg sync.WaitGroup
	for i, message := range response.Messages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := r.enricher.Enrich(ctx, message)
			if err != nil {
				result = message
			}
			enriched[i] = result
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list, err := r.store.MergePage(channel, enriched, query)
	if err != nil {
		return nil, err
	}

	if !query.Before.IsZero() && query.Limit > 0 && len(response.Messages) < query.Limit {
		r.store.MarkAtBeginning(channel)
	}

	r.logger.Debug("fetched channel page",
		"channel", channel,
		"page_size", len(response.Messages),
		"list_size", len(list))
	return list, nil
}

// SendMessage sends a message to a channel.
func (r *Repository) SendMessage(ctx context.Context, channel ref.ChannelID, request revolt.SendMessageRequest) (*revolt.Message, error) {
	session := r.sessions.Session()
	if session == nil {
		return nil, ErrUnauthenticated
	}
	return session.SendMessage(ctx, channel, request)
}

// EditMessage edits a message's content.
func (r *Repository) EditMessage(ctx context.Context, channel ref.ChannelID, id ref.MessageID, request revolt.SendMessageRequest) (*revolt.Message, error) {
	session := r.sessions.Session()
	if session == nil {
		return nil, ErrUnauthenticated
	}
	return session.EditMessage(ctx, channel, id, request)
}

// DeleteMessage deletes a message.
func (r *Repository) DeleteMessage(ctx context.Context, channel ref.ChannelID, id ref.MessageID) error {
	session := r.sessions.Session()
	if session == nil {
		return ErrUnauthenticated
	}
	return session.DeleteMessage(ctx, channel, id)
}

// AddReaction reacts to a message.
func (r *Repository) AddReaction(ctx context.Context, channel ref.ChannelID, id ref.MessageID, emojiID string) error {
	session := r.sessions.Session()
	if session == nil {
		return ErrUnauthenticated
	}
	return session.AddReaction(ctx, channel, id, emojiID)
}

// RemoveReaction removes the calling user's reaction from a message.
func (r *Repository) RemoveReaction(ctx context.Context, channel ref.ChannelID, id ref.MessageID, emojiID string) error {
	session := r.sessions.Session()
	if session == nil {
		return ErrUnauthenticated
	}
	return session.RemoveReaction(ctx, channel, id, emojiID, revolt.RemoveReactionOptions{})
}
