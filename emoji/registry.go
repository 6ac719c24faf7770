// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

// Package emoji resolves emoji shortcodes to displayable locations.
//
// Two sources back resolution: the Registry, populated with the
// instance's custom emoji from the websocket Ready event, and the
// builtin Dictionary of standard unicode shortcodes. The Registry
// starts empty and unready; consumers that must not render with a
// half-loaded emoji set block on Ready before their first resolution
// pass.
package emoji

import (
	"sync"

	"github.com/alexispurslane/bloc/revolt"
)

// Registry holds the custom emoji known to the session, indexed by
// both shortcode name and emoji ID. Message content references emoji
// by name (":blobcat:") while reaction keys carry the ID, so lookups
// arrive in both forms.
//
// Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	locations map[string]string

	readyOnce sync.Once
	ready     chan struct{}
}

// NewRegistry creates an empty, not-yet-ready Registry.
func NewRegistry() *Registry {
	return &Registry{
		locations: make(map[string]string),
		ready:     make(chan struct{}),
	}
}

// Add registers an emoji under both its ID and its shortcode name, so
// content lookups (by name) and reaction lookups (by ID) both resolve.
// An empty id or name is skipped.
func (r *Registry) Add(id, name, location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		r.locations[id] = location
	}
	if name != "" {
		r.locations[name] = location
	}
}

// Get looks up an emoji by shortcode name or ID.
func (r *Registry) Get(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	location, ok := r.locations[key]
	return location, ok
}

// Len reports the number of keys registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.locations)
}

// MarkReady signals that the initial emoji load is complete. One-shot;
// later calls are no-ops. Emoji may still be added after readiness
// (servers joined mid-session), but consumers are guaranteed the
// initial set once Ready fires.
func (r *Registry) MarkReady() {
	r.readyOnce.Do(func() { close(r.ready) })
}

// Ready returns a channel that is closed once the initial emoji load
// completes.
func (r *Registry) Ready() <-chan struct{} {
	return r.ready
}

// LoadFromReady populates the registry from the websocket Ready event
// payload and marks it ready. Each emoji is indexed under both its
// name and its ID, pointing at the Autumn emoji location.
func (r *Registry) LoadFromReady(emojis []revolt.Emoji, autumnURL string) {
	for _, e := range emojis {
		r.Add(e.ID, e.Name, autumnURL+"/emojis/"+e.ID)
	}
	r.MarkReady()
}
