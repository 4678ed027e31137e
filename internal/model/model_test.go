// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole(t *testing.T) {
	if RoleUser.String() != "user" || RoleBot.String() != "bot" {
		t.Error("role string values changed")
	}
	if !RoleUser.Valid() || !RoleBot.Valid() {
		t.Error("known roles should be valid")
	}
	if Role("system").Valid() {
		t.Error("unknown role should not be valid")
	}
	if RoleUser.DisplayName() != "You" {
		t.Errorf("RoleUser.DisplayName() = %q, want %q", RoleUser.DisplayName(), "You")
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewMessage(RoleUser, "Hello", nil)

	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("message id = %q, want msg_ prefix", msg.ID)
	}
	if msg.Role != RoleUser {
		t.Errorf("role = %q, want user", msg.Role)
	}
	if msg.Content != "Hello" {
		t.Errorf("content = %q, want Hello", msg.Content)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if msg.Attachment != nil {
		t.Error("attachment should be nil")
	}
}

func TestNewMessage_WithAttachment(t *testing.T) {
	ref := &FileRef{Name: "report.pdf", SizeBytes: 2048, MimeType: "application/pdf"}
	msg := NewMessage(RoleUser, "see attached", ref)

	if msg.Attachment == nil || msg.Attachment.Name != "report.pdf" {
		t.Fatal("attachment not carried on the message")
	}
}

func TestMessage_Clone(t *testing.T) {
	ref := &FileRef{Name: "a.png", SizeBytes: 1}
	msg := NewMessage(RoleUser, "x", ref)

	clone := msg.Clone()
	clone.Attachment.Name = "b.png"

	if msg.Attachment.Name != "a.png" {
		t.Error("mutating the clone's attachment affected the original")
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewMessage(RoleBot, "line one\nline two that is fairly long", nil)

	preview := msg.Preview(20)
	if strings.Contains(preview, "\n") {
		t.Error("preview should be single-line")
	}
	if len([]rune(preview)) > 20 {
		t.Errorf("preview too long: %q", preview)
	}
}

func TestMessage_IsEmpty(t *testing.T) {
	if !(Message{}).IsEmpty() {
		t.Error("zero message should be empty")
	}
	if (Message{Content: "x"}).IsEmpty() {
		t.Error("message with content should not be empty")
	}
	if (Message{Attachment: &FileRef{Name: "f"}}).IsEmpty() {
		t.Error("message with attachment should not be empty")
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestNewSession(t *testing.T) {
	s := NewSession(CollectMetadata("0.1.0"))

	if !strings.HasPrefix(s.ID, "chat_") {
		t.Errorf("session id = %q, want chat_ prefix", s.ID)
	}
	if s.StartTime.IsZero() {
		t.Error("start time should be set")
	}
	if s.Messages == nil || len(s.Messages) != 0 {
		t.Error("new session should have an empty, non-nil transcript")
	}
	if !strings.HasPrefix(s.Metadata.UserAgent, "shift-ai/0.1.0") {
		t.Errorf("user agent = %q", s.Metadata.UserAgent)
	}
	if s.Metadata.Locale == "" {
		t.Error("locale should not be empty")
	}
}

func TestSession_CloneIsolation(t *testing.T) {
	s := NewSession(Metadata{})
	s.Messages = append(s.Messages, NewMessage(RoleUser, "original", nil))

	clone := s.Clone()
	clone.Messages[0].Content = "mutated"
	clone.Messages = append(clone.Messages, NewMessage(RoleBot, "extra", nil))

	if s.Messages[0].Content != "original" {
		t.Error("mutating clone content affected the original session")
	}
	if len(s.Messages) != 1 {
		t.Error("appending to clone affected the original session")
	}
}

func TestSession_LastAndFirst(t *testing.T) {
	s := NewSession(Metadata{})

	if _, ok := s.LastMessage(); ok {
		t.Error("empty session should have no last message")
	}

	s.Messages = append(s.Messages, NewMessage(RoleBot, "greeting", nil))
	s.Messages = append(s.Messages, NewMessage(RoleUser, "question", nil))
	s.Messages = append(s.Messages, NewMessage(RoleBot, "answer", nil))

	last, ok := s.LastMessage()
	if !ok || last.Content != "answer" {
		t.Errorf("last message = %q, want answer", last.Content)
	}

	first, ok := s.FirstUserMessage()
	if !ok || first.Content != "question" {
		t.Errorf("first user message = %q, want question", first.Content)
	}
}

func TestSession_Preview(t *testing.T) {
	s := NewSession(Metadata{})
	if s.Preview(40) != "Empty conversation" {
		t.Errorf("empty preview = %q", s.Preview(40))
	}

	s.Messages = append(s.Messages, NewMessage(RoleUser, "how do I reset my password?", nil))
	if s.Preview(40) != "how do I reset my password?" {
		t.Errorf("preview = %q", s.Preview(40))
	}
}

func TestSession_JSONRoundTrip(t *testing.T) {
	s := NewSession(CollectMetadata("0.1.0"))
	ref := &FileRef{Name: "pic.png", SizeBytes: 9, MimeType: "image/png", LastModified: time.Now().UTC().Truncate(time.Second)}
	s.Messages = append(s.Messages, NewMessage(RoleUser, "hello", ref))
	s.Messages = append(s.Messages, NewMessage(RoleBot, "hi there", nil))

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back Session
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !s.Equal(back) {
		t.Error("session did not survive a JSON round trip")
	}
}

func TestSession_EqualDetectsDifferences(t *testing.T) {
	a := NewSession(Metadata{})
	a.Messages = append(a.Messages, NewMessage(RoleUser, "x", nil))

	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should be equal to original")
	}

	b.Messages[0].Content = "y"
	if a.Equal(b) {
		t.Error("Equal should detect differing content")
	}
}
