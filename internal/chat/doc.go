// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives the request/response pipeline: it validates and
// records the outgoing user message, issues exactly one inference call,
// and delivers the reply through a typewriter-style reveal before
// committing it to the transcript. Failures never surface raw errors to
// the conversation; the user sees a fixed apology instead.
package chat
