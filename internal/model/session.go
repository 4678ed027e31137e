// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sujithcherukuri72/shift-ai/internal/ident"
)

// =============================================================================
// METADATA
// =============================================================================

// Metadata records environment details once at session creation.
type Metadata struct {
	UserAgent string `json:"user_agent"`
	Locale    string `json:"locale"`
	Timezone  string `json:"timezone"`
}

// CollectMetadata builds Metadata for the current process environment.
func CollectMetadata(version string) Metadata {
	zone, _ := time.Now().Zone()
	return Metadata{
		UserAgent: "shift-ai/" + version + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")",
		Locale:    localeFromEnv(),
		Timezone:  zone,
	}
}

// localeFromEnv resolves the locale the way POSIX tools do.
func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			// Strip the charset suffix: "en_US.UTF-8" -> "en_US"
			if i := strings.IndexByte(v, '.'); i > 0 {
				return v[:i]
			}
			return v
		}
	}
	return "en_US"
}

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is one continuous conversation. It is created once per widget
// start (or restored from a durable backup), mutated only by append, and
// replaced wholesale on reset.
type Session struct {
	ID        string    `json:"session_id"`
	StartTime time.Time `json:"start_time"`
	Messages  []Message `json:"messages"`
	Metadata  Metadata  `json:"metadata"`
}

// NewSession creates a fresh, empty session with a unique id.
func NewSession(meta Metadata) Session {
	return Session{
		ID:        ident.New("chat"),
		StartTime: time.Now().UTC(),
		Messages:  make([]Message, 0),
		Metadata:  meta,
	}
}

// Clone returns a deep copy of the session. Mutating the copy (or the
// original) never affects the other.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.Clone()
	}
	return out
}

// MessageCount returns the number of messages in the transcript.
func (s Session) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty reports whether the transcript has no messages.
func (s Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// LastMessage returns the most recent message and true, or a zero
// message and false when the transcript is empty.
func (s Session) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// FirstUserMessage returns the earliest user-authored message and true,
// or a zero message and false when there is none.
func (s Session) FirstUserMessage() (Message, bool) {
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			return m, true
		}
	}
	return Message{}, false
}

// Preview returns a short single-line summary of the session, taken
// from the first user message.
func (s Session) Preview(maxLen int) string {
	if m, ok := s.FirstUserMessage(); ok {
		return m.Preview(maxLen)
	}
	if m, ok := s.LastMessage(); ok {
		return m.Preview(maxLen)
	}
	return "Empty conversation"
}

// Equal reports whether two sessions carry the same id and transcript.
// Used by tests and the export round-trip check.
func (s Session) Equal(other Session) bool {
	if s.ID != other.ID || !s.StartTime.Equal(other.StartTime) {
		return false
	}
	if len(s.Messages) != len(other.Messages) {
		return false
	}
	for i := range s.Messages {
		a, b := s.Messages[i], other.Messages[i]
		if a.ID != b.ID || a.Role != b.Role || a.Content != b.Content || !a.Timestamp.Equal(b.Timestamp) {
			return false
		}
		if (a.Attachment == nil) != (b.Attachment == nil) {
			return false
		}
		if a.Attachment != nil && *a.Attachment != *b.Attachment {
			return false
		}
	}
	return s.Metadata == other.Metadata
}
