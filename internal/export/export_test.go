// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sujithcherukuri72/shift-ai/internal/model"
)

func sampleSession() model.Session {
	s := model.NewSession(model.Metadata{UserAgent: "test", Locale: "en_US", Timezone: "UTC"})
	s.Messages = append(s.Messages, model.NewMessage(model.RoleUser, "Hello", nil))
	s.Messages = append(s.Messages, model.NewMessage(model.RoleBot, "Hi there", nil))
	return s
}

func TestFileName(t *testing.T) {
	got := FileName("chat_123_abc")
	if got != "chat_history_chat_123_abc.json" {
		t.Errorf("FileName = %q", got)
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	session := sampleSession()
	dir := t.TempDir()

	path, err := WriteFile(session, dir)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if filepath.Base(path) != FileName(session.ID) {
		t.Errorf("artifact name = %q, want %q", filepath.Base(path), FileName(session.ID))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var back model.Session
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("exported artifact does not parse: %v", err)
	}
	if !session.Equal(back) {
		t.Error("parsed artifact should reconstruct the exported snapshot")
	}
}

func TestJSON_PrettyPrinted(t *testing.T) {
	data, err := JSON(sampleSession())
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("export should be pretty-printed")
	}
}

func TestMarkdown(t *testing.T) {
	session := sampleSession()
	ref := &model.FileRef{Name: "notes.txt", SizeBytes: 10, MimeType: "text/plain"}
	session.Messages = append(session.Messages, model.NewMessage(model.RoleUser, "see file", ref))

	md := Markdown(session)

	for _, want := range []string{
		"# Session " + session.ID,
		"**You**",
		"**ShiftAI**",
		"Hello",
		"Hi there",
		"*Attachment: notes.txt*",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
