// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package remote mirrors session snapshots to a user-configured remote
// document store.
//
// The adapter is optional: the widget works fully without it. Lifecycle
// is Disconnected -> Connecting -> Connected -> Disconnected, driven by
// explicit user action. While connected, every append results in exactly
// one fire-and-forget upsert of the full snapshot keyed by session id;
// a failed upsert is surfaced as a warning and never rolls back the
// local transcript.
//
// The core depends only on the Syncer interface; DocStore is the
// concrete HTTP implementation.
package remote
