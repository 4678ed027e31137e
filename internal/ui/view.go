// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sujithcherukuri72/shift-ai/internal/model"
)

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.viewport.View())
	b.WriteByte('\n')
	b.WriteString(m.renderNotice())
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render(m.keys.HelpLine()))
	return b.String()
}

func (m Model) renderHeader() string {
	title := headerStyle.Render("ShiftAI")

	var sync string
	if m.widget.SyncConnected() {
		sync = syncOnStyle.Render("● sync on")
	} else {
		sync = syncOffStyle.Render("○ sync off")
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(sync) - 1
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + sync
}

func (m Model) renderNotice() string {
	if m.confirmClear {
		return noticeStyles["warning"].Render("Start a new chat? The current chat will be archived. (y/n)")
	}
	if m.notice == "" {
		return ""
	}
	style, ok := noticeStyles[string(m.noticeLevel)]
	if !ok {
		style = noticeStyles["info"]
	}
	return style.Render(m.notice)
}

// renderTranscript renders the session plus any in-flight reply state.
func (m Model) renderTranscript() string {
	session := m.widget.Snapshot()

	var b strings.Builder
	for i, msg := range session.Messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderMessage(msg, m.width))
	}

	if m.revealBuf != "" {
		b.WriteByte('\n')
		b.WriteString(renderPartialReply(m.revealBuf, m.width))
	}
	if m.thinkingShown {
		b.WriteByte('\n')
		b.WriteString(m.spin.View() + timeStyle.Render("ShiftAI is thinking..."))
	}
	return b.String()
}

// renderMessage formats one committed message: a label line and the
// wrapped body.
func renderMessage(msg model.Message, width int) string {
	label := userLabelStyle
	if msg.Role == model.RoleBot {
		label = botLabelStyle
	}

	head := label.Render(msg.Role.DisplayName()) + " " +
		timeStyle.Render(msg.Timestamp.Local().Format("15:04"))

	body := lipgloss.NewStyle().Width(maxInt(width-2, 20)).Render(msg.Content)

	out := head + "\n" + body
	if msg.Attachment != nil {
		out += "\n" + attachStyle.Render(fmt.Sprintf("📎 %s (%d bytes)", msg.Attachment.Name, msg.Attachment.SizeBytes))
	}
	return out + "\n"
}

// renderPartialReply shows the reveal in progress with a cursor.
func renderPartialReply(text string, width int) string {
	head := botLabelStyle.Render(model.RoleBot.DisplayName())
	body := lipgloss.NewStyle().Width(maxInt(width-2, 20)).Render(text + "▋")
	return head + "\n" + body + "\n"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
