// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal chat interface on Bubble Tea.
//
// The layout is a scrollback viewport over a textarea prompt, with a
// header showing sync state and a transient notice line. Replies
// animate through the widget's reveal sink; a spinner appears when the
// model is still thinking after a short grace period.
package ui
