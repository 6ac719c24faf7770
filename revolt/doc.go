// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

// Package revolt wraps the Revolt REST API and the Bonfire websocket
// event stream for bloc's chat needs.
//
// The package provides three core types. [Client] is an unauthenticated
// API client that handles node discovery (QueryNode) and login,
// returning authenticated [Session] values. Client holds the instance
// base URL and HTTP transport, shared across all Sessions derived from
// it.
//
// [Session] wraps a Client with a session token for authenticated
// operations: paginated message history, sending/editing/deleting
// messages, reactions, and user profile lookups. The token lives in
// mmap-backed secret.Buffer memory (locked against swap, excluded from
// core dumps); callers must call Session.Close to release it.
//
// [Socket] is an explicitly owned subscription to the live event
// stream: construct it with NewSocket, call Run to connect and pump
// events (with automatic reconnection and heartbeat), and read typed
// events from Events. Run terminates when its context is cancelled, so
// tests can construct and tear down isolated instances.
//
// All API errors are returned as [*APIError] carrying the error-type
// code from the Revolt error body (e.g. "InvalidCredentials",
// "TooManyRequests") and the HTTP status code. [IsAPIError] tests for
// a specific code. When the error body is not valid JSON, the raw HTTP
// status line is carried instead.
package revolt
