// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript owns the live conversation session.
//
// The Store is the only mutation surface for the Session: append adds a
// message, reset replaces the session wholesale. There are no ambient
// globals; everything that needs the session asks the Store for a
// snapshot. A mutex serializes mutation and snapshotting because the Go
// rendition runs appenders, the backup timer, and sync tasks on
// separate goroutines.
package transcript
