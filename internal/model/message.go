// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/sujithcherukuri72/shift-ai/internal/ident"
	"github.com/sujithcherukuri72/shift-ai/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "ShiftAI"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

// =============================================================================
// FILE REFERENCE
// =============================================================================

// FileRef carries attachment metadata. Only metadata is retained; the
// file contents are never stored in the transcript.
type FileRef struct {
	Name         string    `json:"name"`
	SizeBytes    int64     `json:"size_bytes"`
	MimeType     string    `json:"mime_type"`
	LastModified time.Time `json:"last_modified"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. Messages are immutable once
// appended to a session.
type Message struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Attachment *FileRef  `json:"attachment,omitempty"`
}

// NewMessage creates a message with a fresh id and the current timestamp.
func NewMessage(role Role, content string, attachment *FileRef) Message {
	return Message{
		ID:         ident.New("msg"),
		Role:       role,
		Content:    content,
		Timestamp:  time.Now().UTC(),
		Attachment: attachment,
	}
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.Attachment != nil {
		ref := *m.Attachment
		out.Attachment = &ref
	}
	return out
}

// Preview returns a single-line truncated preview of the content.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Content), maxLen)
}

// IsEmpty reports whether the message has neither content nor attachment.
func (m Message) IsEmpty() bool {
	return m.Content == "" && m.Attachment == nil
}
