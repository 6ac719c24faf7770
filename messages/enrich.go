// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package messages

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/alexispurslane/bloc/emoji"
	"github.com/alexispurslane/bloc/lib/clock"
	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/revolt"
)

// Token patterns, compiled once.
var (
	mentionPattern   = regexp.MustCompile(`<@([a-zA-Z0-9]+)>`)
	shortcodePattern = regexp.MustCompile(`:([a-zA-Z0-9_]+):`)
)

// UserResolver answers user lookups during enrichment. Implemented by
// account.Repository.
type UserResolver interface {
	FetchUserInformation(ctx context.Context, id ref.UserID) (*revolt.User, error)
}

// EmojiSource resolves emoji keys and gates on the initial emoji load.
// Implemented by emoji.Registry.
type EmojiSource interface {
	Get(key string) (string, bool)
	Ready() <-chan struct{}
}

// EnricherConfig carries the dependencies for an Enricher.
type EnricherConfig struct {
	// Users resolves mention IDs to user records. Required.
	Users UserResolver

	// Emojis resolves shortcodes and reaction keys. Required.
	Emojis EmojiSource

	// Dictionary is the builtin shortcode fallback. Defaults to
	// emoji.Dictionary.
	Dictionary map[string]string

	// Logger is required.
	Logger *slog.Logger

	// Clock stamps EnrichedAt. Defaults to the real clock.
	Clock clock.Clock
}

// Enricher turns raw message content into displayable content:
// mention tokens become profile links, emoji shortcodes become image
// references or unicode, newlines become paragraph breaks, and
// reaction keys gain their resolved emoji locations.
//
// Enrich does not start work until the emoji source's ready gate has
// opened.
type Enricher struct {
	users      UserResolver
	emojis     EmojiSource
	dictionary map[string]string
	logger     *slog.Logger
	clock      clock.Clock
}

// NewEnricher creates an Enricher.
func NewEnricher(config EnricherConfig) *Enricher {
	dictionary := config.Dictionary
	if dictionary == nil {
		dictionary = emoji.Dictionary
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &Enricher{
		users:      config.Users,
		emojis:     config.Emojis,
		dictionary: dictionary,
		logger:     config.Logger,
		clock:      clk,
	}
}

// Enrich returns a copy of message with its rendered fields populated.
// The input is never mutated. A mention or shortcode that fails to
// resolve renders as its literal token; individual resolution failures
// never fail the whole enrichment. The only error is ctx expiring
// while waiting on the emoji ready gate or mid-resolution.
func (e *Enricher) Enrich(ctx context.Context, message revolt.Message) (revolt.Message, error) {
	select {
	case <-e.emojis.Ready():
	case <-ctx.Done():
		return message, ctx.Err()
	}

	names := e.resolveMentions(ctx, &message)
	if err := ctx.Err(); err != nil {
		return message, err
	}

	message.RenderedContent = e.renderText(message.Content, names)
	if message.System != nil {
		system := *message.System
		system.RenderedMessage = e.renderText(system.Message, names)
		message.System = &system
	}

	if len(message.Reactions) > 0 {
		rekeyed := make(map[string][]ref.UserID, len(message.Reactions))
		for key, users := range message.Reactions {
			if location, ok := e.emojis.Get(key); ok {
				rekeyed[location+":"+key] = users
			} else {
				rekeyed[key] = users
			}
		}
		message.Reactions = rekeyed
	}

	message.EnrichedAt = e.clock.Now().UTC().Format(time.RFC3339)
	return message, nil
}

// resolveMentions collects every mention ID in the message (the
// explicit mention list plus tokens embedded in content and system
// text) and resolves them concurrently. Failed resolutions are dropped
// so their tokens render literally.
func (e *Enricher) resolveMentions(ctx context.Context, message *revolt.Message) map[string]string {
	candidates := make(map[string]struct{})
	for _, id := range message.Mentions {
		candidates[id.String()] = struct{}{}
	}
	for _, match := range mentionPattern.FindAllStringSubmatch(message.Content, -1) {
		candidates[match[1]] = struct{}{}
	}
	if message.System != nil {
		for _, match := range mentionPattern.FindAllStringSubmatch(message.System.Message, -1) {
			candidates[match[1]] = struct{}{}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	names := make(map[string]string, len(candidates))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for raw := range candidates {
		id, err := ref.ParseUserID(raw)
		if err != nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := e.users.FetchUserInformation(ctx, id)
			if err != nil {
				e.logger.Debug("mention resolution failed",
					"user_id", id,
					"error", err)
				return
			}
			mu.Lock()
			names[id.String()] = user.Name()
			mu.Unlock()
		}()
	}
	wg.Wait()
	return names
}

// renderText rewrites mention tokens and emoji shortcodes in text and
// doubles newlines so single line breaks render as paragraph breaks.
func (e *Enricher) renderText(text string, names map[string]string) string {
	if text == "" {
		return ""
	}

	text = mentionPattern.ReplaceAllStringFunc(text, func(token string) string {
		id := mentionPattern.FindStringSubmatch(token)[1]
		name, ok := names[id]
		if !ok {
			return token
		}
		return "[@" + name + "](bloc://profile/" + id + ")"
	})

	text = shortcodePattern.ReplaceAllStringFunc(text, func(token string) string {
		name := shortcodePattern.FindStringSubmatch(token)[1]
		if location, ok := e.emojis.Get(name); ok {
			return "![" + token + "](" + location + ")"
		}
		if unicode, ok := e.dictionary[name]; ok {
			return unicode
		}
		return token
	})

	return strings.ReplaceAll(text, "\n", "\n\n")
}
