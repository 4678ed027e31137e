// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// A Session is one continuous conversation: a unique id, a start time,
// an append-only ordered transcript of Messages, and environment
// metadata captured at creation. Messages are immutable once appended;
// insertion order is the displayed transcript order.
//
// # Key Types
//
//   - Session: one conversation with its full transcript
//   - Message: a single transcript entry, authored by user or bot
//   - FileRef: attachment metadata (the binary payload is never retained)
//   - Metadata: environment details recorded once per session
//
// All types carry stable JSON tags; the same shape is used for the
// local durability slot, remote sync documents, and exported files.
package model
