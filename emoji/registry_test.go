// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package emoji

import (
	"testing"
	"time"

	"github.com/alexispurslane/bloc/lib/testutil"
	"github.com/alexispurslane/bloc/revolt"
)

func TestRegistryAddGet(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Get("blobcat"); ok {
		t.Fatal("empty registry resolved a key")
	}

	registry.Add("e1", "blobcat", "https://autumn.example.com/emojis/e1")

	location, ok := registry.Get("blobcat")
	if !ok || location != "https://autumn.example.com/emojis/e1" {
		t.Errorf("Get(blobcat) = %q, %v", location, ok)
	}
	if _, ok := registry.Get("e1"); !ok {
		t.Error("ID key did not resolve")
	}
	if registry.Len() != 2 {
		t.Errorf("Len = %d, want 2", registry.Len())
	}
}

func TestRegistryReadyGate(t *testing.T) {
	registry := NewRegistry()

	select {
	case <-registry.Ready():
		t.Fatal("new registry is already ready")
	default:
	}

	registry.MarkReady()
	testutil.RequireClosed(t, registry.Ready(), time.Second, "after MarkReady")

	// One-shot; a second call must not panic on the closed channel.
	registry.MarkReady()
}

func TestLoadFromReady(t *testing.T) {
	registry := NewRegistry()
	registry.LoadFromReady([]revolt.Emoji{
		{ID: "e1", Name: "blobcat"},
		{ID: "e2", Name: "ferris"},
	}, "https://autumn.example.com")

	testutil.RequireClosed(t, registry.Ready(), time.Second, "after LoadFromReady")

	for _, key := range []string{"blobcat", "e1", "ferris", "e2"} {
		if _, ok := registry.Get(key); !ok {
			t.Errorf("key %q did not resolve", key)
		}
	}
	if location, _ := registry.Get("ferris"); location != "https://autumn.example.com/emojis/e2" {
		t.Errorf("location = %q", location)
	}
}

func TestDictionary(t *testing.T) {
	if Dictionary["smile"] != "\U0001F604" {
		t.Errorf("smile = %q", Dictionary["smile"])
	}
	if _, ok := Dictionary["definitely_not_an_emoji"]; ok {
		t.Error("unexpected dictionary hit")
	}
}
