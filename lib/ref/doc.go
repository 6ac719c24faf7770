// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identity references for
// Revolt objects: channels, messages, and users. Each is a validated value
// type wrapping the server-issued ULID.
//
// All constructors validate their inputs and return errors for invalid
// identifiers. Once constructed, a ref is immutable. The zero value is not
// valid; use IsZero to check.
//
// JSON marshaling uses the raw identifier string via encoding.TextMarshaler,
// so map keys and struct fields round-trip through the Revolt wire format
// with validation applied at deserialization.
package ref
