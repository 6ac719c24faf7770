// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package messages

import (
	"testing"

	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/revolt"
)

func chanID(t *testing.T, raw string) ref.ChannelID {
	t.Helper()
	id, err := ref.ParseChannelID(raw)
	if err != nil {
		t.Fatalf("ParseChannelID(%q): %v", raw, err)
	}
	return id
}

func msgID(t *testing.T, raw string) ref.MessageID {
	t.Helper()
	id, err := ref.ParseMessageID(raw)
	if err != nil {
		t.Fatalf("ParseMessageID(%q): %v", raw, err)
	}
	return id
}

func userID(t *testing.T, raw string) ref.UserID {
	t.Helper()
	id, err := ref.ParseUserID(raw)
	if err != nil {
		t.Fatalf("ParseUserID(%q): %v", raw, err)
	}
	return id
}

func message(t *testing.T, channel, id string) revolt.Message {
	t.Helper()
	return revolt.Message{
		ID:      msgID(t, id),
		Channel: chanID(t, channel),
		Author:  userID(t, "U1"),
		Content: "message " + id,
	}
}

func ids(list []revolt.Message) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID.String()
	}
	return out
}

func assertOrder(t *testing.T, list []revolt.Message, want ...string) {
	t.Helper()
	got := ids(list)
	if len(got) != len(want) {
		t.Fatalf("list = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("list = %v, want %v", got, want)
		}
	}
}

// seedChannel creates the channel list via an initial page merge.
func seedChannel(t *testing.T, store *Store, channel string, messageIDs ...string) {
	t.Helper()
	page := make([]revolt.Message, len(messageIDs))
	for i, id := range messageIDs {
		page[i] = message(t, channel, id)
	}
	if _, err := store.MergePage(chanID(t, channel), page, revolt.MessageQuery{}); err != nil {
		t.Fatalf("seeding channel: %v", err)
	}
}

func TestStoreGet(t *testing.T) {
	store := NewStore()

	if _, ok := store.Get(chanID(t, "chan1")); ok {
		t.Fatal("empty store has a channel list")
	}
	if store.Tracks(chanID(t, "chan1")) {
		t.Fatal("empty store tracks a channel")
	}

	seedChannel(t, store, "chan1", "m2", "m1")
	list, ok := store.Get(chanID(t, "chan1"))
	if !ok {
		t.Fatal("channel missing after seed")
	}
	assertOrder(t, list, "m2", "m1")
	if store.Len(chanID(t, "chan1")) != 2 {
		t.Errorf("Len = %d", store.Len(chanID(t, "chan1")))
	}

	// Get returns a copy; mutating it must not affect the store.
	list[0].Content = "mutated"
	fresh, _ := store.Get(chanID(t, "chan1"))
	if fresh[0].Content == "mutated" {
		t.Error("Get exposed internal state")
	}
}

func TestInsertLive(t *testing.T) {
	store := NewStore()

	t.Run("untracked channel is dropped", func(t *testing.T) {
		if store.InsertLive(chanID(t, "chan1"), message(t, "chan1", "m1")) {
			t.Fatal("insert into untracked channel succeeded")
		}
	})

	t.Run("prepends to tracked channel", func(t *testing.T) {
		seedChannel(t, store, "chan1", "m2", "m1")
		if !store.InsertLive(chanID(t, "chan1"), message(t, "chan1", "m3")) {
			t.Fatal("insert failed")
		}
		list, _ := store.Get(chanID(t, "chan1"))
		assertOrder(t, list, "m3", "m2", "m1")
	})

	t.Run("duplicate id is skipped", func(t *testing.T) {
		if store.InsertLive(chanID(t, "chan1"), message(t, "chan1", "m2")) {
			t.Fatal("duplicate insert succeeded")
		}
		list, _ := store.Get(chanID(t, "chan1"))
		assertOrder(t, list, "m3", "m2", "m1")
	})
}

func TestMergePage(t *testing.T) {
	t.Run("first page adopted verbatim", func(t *testing.T) {
		store := NewStore()
		page := []revolt.Message{message(t, "chan1", "m2"), message(t, "chan1", "m1")}
		list, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{Sort: revolt.SortLatest})
		if err != nil {
			t.Fatalf("MergePage: %v", err)
		}
		assertOrder(t, list, "m2", "m1")
	})

	t.Run("latest before cursor reverses and inserts after cursor", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")

		page := []revolt.Message{message(t, "chan1", "m4"), message(t, "chan1", "m3")}
		list, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{
			Before: msgID(t, "m1"),
			Sort:   revolt.SortLatest,
		})
		if err != nil {
			t.Fatalf("MergePage: %v", err)
		}
		assertOrder(t, list, "m2", "m1", "m3", "m4")
	})

	t.Run("unset sort keeps server order", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")

		// Only an explicit Latest sort reverses; a query with no sort
		// splices the page exactly as the server sent it.
		page := []revolt.Message{message(t, "chan1", "m4"), message(t, "chan1", "m3")}
		list, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{
			Before: msgID(t, "m1"),
		})
		if err != nil {
			t.Fatalf("MergePage: %v", err)
		}
		assertOrder(t, list, "m2", "m1", "m4", "m3")
	})

	t.Run("before cursor missing falls back to end", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")

		page := []revolt.Message{message(t, "chan1", "m4"), message(t, "chan1", "m3")}
		list, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{
			Before: msgID(t, "gone"),
			Sort:   revolt.SortLatest,
		})
		if err != nil {
			t.Fatalf("MergePage: %v", err)
		}
		assertOrder(t, list, "m2", "m1", "m3", "m4")
	})

	t.Run("after cursor inserts at cursor position", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")

		// Oldest-sorted after-page arrives oldest first and keeps
		// server order.
		page := []revolt.Message{message(t, "chan1", "m3"), message(t, "chan1", "m4")}
		list, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{
			After: msgID(t, "m2"),
			Sort:  revolt.SortOldest,
		})
		if err != nil {
			t.Fatalf("MergePage: %v", err)
		}
		assertOrder(t, list, "m3", "m4", "m2", "m1")
	})

	t.Run("after cursor missing falls back to front", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")

		page := []revolt.Message{message(t, "chan1", "m3")}
		list, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{
			After: msgID(t, "gone"),
			Sort:  revolt.SortOldest,
		})
		if err != nil {
			t.Fatalf("MergePage: %v", err)
		}
		assertOrder(t, list, "m3", "m2", "m1")
	})

	t.Run("nearby never mutates the list", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")

		page := []revolt.Message{message(t, "chan1", "m9")}
		returned, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{
			Nearby: msgID(t, "m1"),
		})
		if err != nil {
			t.Fatalf("MergePage: %v", err)
		}
		assertOrder(t, returned, "m9")

		list, _ := store.Get(chanID(t, "chan1"))
		assertOrder(t, list, "m2", "m1")
	})

	t.Run("relevance sort is display only", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")

		page := []revolt.Message{message(t, "chan1", "m9")}
		if _, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{
			Before: msgID(t, "m1"),
			Sort:   revolt.SortRelevance,
		}); err != nil {
			t.Fatalf("MergePage: %v", err)
		}
		list, _ := store.Get(chanID(t, "chan1"))
		assertOrder(t, list, "m2", "m1")
	})

	t.Run("empty page is a no-op", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")

		returned, err := store.MergePage(chanID(t, "chan1"), nil, revolt.MessageQuery{
			Before: msgID(t, "m1"),
			Sort:   revolt.SortLatest,
		})
		if err != nil {
			t.Fatalf("MergePage: %v", err)
		}
		if len(returned) != 0 {
			t.Errorf("returned = %v", ids(returned))
		}
	})

	t.Run("no cursor on existing list fails fast", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")

		page := []revolt.Message{message(t, "chan1", "m3")}
		if _, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{Sort: revolt.SortLatest}); err == nil {
			t.Fatal("expected error for cursor-less merge")
		}
	})

	t.Run("page overlapping live inserts stays duplicate free", func(t *testing.T) {
		store := NewStore()
		seedChannel(t, store, "chan1", "m2", "m1")
		store.InsertLive(chanID(t, "chan1"), message(t, "chan1", "m3"))

		// The page includes m3, which a live event already delivered.
		page := []revolt.Message{message(t, "chan1", "m4"), message(t, "chan1", "m3")}
		list, err := store.MergePage(chanID(t, "chan1"), page, revolt.MessageQuery{
			Before: msgID(t, "m1"),
			Sort:   revolt.SortLatest,
		})
		if err != nil {
			t.Fatalf("MergePage: %v", err)
		}

		counts := make(map[string]int)
		for _, id := range ids(list) {
			counts[id]++
		}
		for id, n := range counts {
			if n > 1 {
				t.Errorf("message %s appears %d times", id, n)
			}
		}
	})
}

func TestApplyUpdate(t *testing.T) {
	store := NewStore()
	seedChannel(t, store, "chan1", "m1")
	store.ApplyReact(chanID(t, "chan1"), msgID(t, "m1"), "e1", userID(t, "U1"))

	edited := "edited text"
	stamp := "2026-08-30T10:00:00Z"
	if !store.ApplyUpdate(chanID(t, "chan1"), msgID(t, "m1"), revolt.PartialMessage{
		Content: &edited,
		Edited:  &stamp,
	}) {
		t.Fatal("ApplyUpdate found nothing")
	}

	list, _ := store.Get(chanID(t, "chan1"))
	updated := list[0]
	if updated.Content != "edited text" || updated.Edited != stamp {
		t.Errorf("updated = %+v", updated)
	}
	// Fields absent from the partial keep their prior values.
	if updated.Author.String() != "U1" {
		t.Errorf("Author = %q", updated.Author)
	}
	if len(updated.Reactions["e1"]) != 1 {
		t.Errorf("Reactions = %v, want untouched", updated.Reactions)
	}

	if store.ApplyUpdate(chanID(t, "chan1"), msgID(t, "gone"), revolt.PartialMessage{Content: &edited}) {
		t.Error("update of unknown message reported success")
	}
}

func TestApplyDelete(t *testing.T) {
	store := NewStore()
	seedChannel(t, store, "chan1", "m3", "m2", "m1")

	if !store.ApplyDelete(chanID(t, "chan1"), msgID(t, "m2")) {
		t.Fatal("ApplyDelete found nothing")
	}
	list, _ := store.Get(chanID(t, "chan1"))
	assertOrder(t, list, "m3", "m1")

	if store.ApplyDelete(chanID(t, "chan1"), msgID(t, "m2")) {
		t.Error("double delete reported success")
	}
}

func TestReactionLifecycle(t *testing.T) {
	store := NewStore()
	seedChannel(t, store, "chan1", "m1")
	channel, id := chanID(t, "chan1"), msgID(t, "m1")

	store.ApplyReact(channel, id, "http://x/e1:e1", userID(t, "U1"))
	store.ApplyReact(channel, id, "http://x/e1:e1", userID(t, "U2"))
	// Re-reacting is idempotent.
	store.ApplyReact(channel, id, "http://x/e1:e1", userID(t, "U1"))

	list, _ := store.Get(channel)
	if got := len(list[0].Reactions["http://x/e1:e1"]); got != 2 {
		t.Fatalf("user set size = %d, want 2", got)
	}

	// Unreacting down to an empty set removes the key entirely.
	store.ApplyUnreact(channel, id, "http://x/e1:e1", userID(t, "U1"))
	store.ApplyUnreact(channel, id, "http://x/e1:e1", userID(t, "U2"))
	list, _ = store.Get(channel)
	if _, present := list[0].Reactions["http://x/e1:e1"]; present {
		t.Fatal("empty reaction key not pruned")
	}

	// Re-adding recreates the key.
	store.ApplyReact(channel, id, "http://x/e1:e1", userID(t, "U3"))
	list, _ = store.Get(channel)
	if got := len(list[0].Reactions["http://x/e1:e1"]); got != 1 {
		t.Errorf("user set size = %d, want 1 after recreate", got)
	}
}

func TestAtBeginning(t *testing.T) {
	store := NewStore()
	if store.AtBeginning(chanID(t, "chan1")) {
		t.Fatal("fresh channel reports at-beginning")
	}
	store.MarkAtBeginning(chanID(t, "chan1"))
	if !store.AtBeginning(chanID(t, "chan1")) {
		t.Fatal("MarkAtBeginning not recorded")
	}
}
