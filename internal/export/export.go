// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export serializes session snapshots to downloadable artifacts.
package export

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/sujithcherukuri72/shift-ai/internal/model"
	"github.com/sujithcherukuri72/shift-ai/internal/util"
)

// FileName returns the exported artifact name for a session id.
func FileName(sessionID string) string {
	return "chat_history_" + sessionID + ".json"
}

// JSON renders the snapshot as pretty-printed JSON. Parsing the output
// reconstructs a session equal to the snapshot.
func JSON(session model.Session) ([]byte, error) {
	return json.MarshalIndent(session, "", "  ")
}

// WriteFile writes the snapshot to dir as chat_history_<sessionId>.json
// and returns the full path. The session itself is not modified.
func WriteFile(session model.Session, dir string) (string, error) {
	data, err := JSON(session)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(session.ID))
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Markdown renders the transcript as a human-readable Markdown document.
func Markdown(session model.Session) string {
	var sb strings.Builder
	sb.WriteString("# Session " + session.ID + "\n\n")
	sb.WriteString("Started: " + session.StartTime.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range session.Messages {
		label := "**" + msg.Role.DisplayName() + "**"
		sb.WriteString(label + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		if msg.Attachment != nil {
			sb.WriteString("\n\n*Attachment: " + msg.Attachment.Name + "*")
		}
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
