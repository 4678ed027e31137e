// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatbot assembles the conversation engine: transcript,
// periodic local backup, optional remote sync, the response pipeline,
// archival of cleared sessions, and export. It is the single entry
// point intended for embedding; the TUI in internal/ui is one consumer.
package chatbot
