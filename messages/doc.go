// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

// Package messages is the client's message cache and reconciliation
// engine.
//
// The Store holds per-channel ordered message lists, newest first.
// Two paths mutate it: the Repository merges fetched history pages
// into place around their pagination cursors, and the Reconciler
// applies live websocket events (creates, edits, deletes, reactions)
// strictly in delivery order. A single lock inside the Store makes
// each compound operation atomic across both paths.
//
// Before a message reaches the Store it passes through the Enricher,
// which resolves mention tokens and emoji shortcodes into displayable
// references. Enrichment blocks until the emoji registry reports its
// initial load complete, so early messages never render without emoji
// substitution.
package messages
