// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sujithcherukuri72/shift-ai/internal/chat"
	"github.com/sujithcherukuri72/shift-ai/internal/notify"
	"github.com/sujithcherukuri72/shift-ai/pkg/chatbot"
)

// thinkingDelay is how long a reply must stay pending before the
// spinner appears. Fast replies never flash it.
const thinkingDelay = 500 * time.Millisecond

// noticeTTL is how long a notice stays on screen.
const noticeTTL = 4 * time.Second

// inputHeight is the prompt height in rows.
const inputHeight = 1

// revealBuffer sizes the reveal frame channel. Frames beyond it are
// dropped; the transcript refresh on completion repaints the full
// reply regardless.
const revealBuffer = 1024

// =============================================================================
// MESSAGES
// =============================================================================

type revealMsg struct {
	exchangeID string
	chunk      string
	done       bool
}

type noticeMsg notify.Notification

type noticeExpireMsg struct{ seq int }

type thinkingMsg struct{}

type syncDoneMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	widget    *chatbot.Widget
	keys      KeyMap
	exportDir string

	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model

	width  int
	height int
	ready  bool

	thinking      bool
	thinkingShown bool
	revealBuf     string

	notice      string
	noticeLevel notify.Level
	noticeSeq   int

	confirmClear bool

	reveals chan revealMsg
	notices <-chan notify.Notification
}

// New builds the model and installs the reveal sink on the widget.
func New(widget *chatbot.Widget, exportDir string) Model {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.SetHeight(inputHeight)
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	reveals := make(chan revealMsg, revealBuffer)
	widget.SetRevealSink(func(exchangeID, chunk string, done bool) {
		select {
		case reveals <- revealMsg{exchangeID: exchangeID, chunk: chunk, done: done}:
		default:
		}
	})

	return Model{
		widget:    widget,
		keys:      DefaultKeyMap(),
		exportDir: exportDir,
		input:     input,
		spin:      spin,
		reveals:   reveals,
		notices:   widget.Notifications(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitReveal(), m.waitNotice())
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) waitReveal() tea.Cmd {
	ch := m.reveals
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return r
	}
}

func (m Model) waitNotice() tea.Cmd {
	ch := m.notices
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func thinkingTick() tea.Cmd {
	return tea.Tick(thinkingDelay, func(time.Time) tea.Msg {
		return thinkingMsg{}
	})
}

func noticeExpire(seq int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpireMsg{seq: seq}
	})
}

func (m Model) toggleSync() tea.Cmd {
	w := m.widget
	return func() tea.Msg {
		if w.SyncConnected() {
			w.DisconnectSync()
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			// Outcome lands on the notification stream either way.
			_ = w.ConnectSync(ctx)
		}
		return syncDoneMsg{}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refresh(true)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case revealMsg:
		m.thinkingShown = false
		if msg.done {
			m.thinking = false
			m.revealBuf = ""
			m.refresh(true)
		} else {
			m.revealBuf = msg.chunk
			m.refresh(true)
		}
		return m, m.waitReveal()

	case thinkingMsg:
		if m.thinking && m.revealBuf == "" {
			m.thinkingShown = true
			m.refresh(true)
			return m, m.spin.Tick
		}
		return m, nil

	case spinner.TickMsg:
		if !m.thinkingShown {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refresh(false)
		return m, cmd

	case noticeMsg:
		m.notice = msg.Message
		m.noticeLevel = msg.Level
		m.noticeSeq++
		return m, tea.Batch(m.waitNotice(), noticeExpire(m.noticeSeq))

	case noticeExpireMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case syncDoneMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmClear {
		switch msg.String() {
		case "y", "Y":
			m.confirmClear = false
			m.widget.Clear()
			m.revealBuf = ""
			m.thinking = false
			m.thinkingShown = false
			m.refresh(true)
		case "n", "N", "esc":
			m.confirmClear = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Export):
		if _, err := m.widget.ExportTo(m.exportDir); err != nil {
			m.notice = "export failed: " + err.Error()
			m.noticeLevel = notify.LevelError
			m.noticeSeq++
			return m, noticeExpire(m.noticeSeq)
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.confirmClear = true
		return m, nil

	case key.Matches(msg, m.keys.Sync):
		return m, m.toggleSync()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if _, err := m.widget.Send(text, nil); err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return m, nil
		}
		m.notice = err.Error()
		m.noticeLevel = notify.LevelError
		m.noticeSeq++
		return m, noticeExpire(m.noticeSeq)
	}

	m.input.Reset()
	m.thinking = true
	m.thinkingShown = false
	m.revealBuf = ""
	m.refresh(true)
	return m, thinkingTick()
}

// layout recomputes component sizes from the window dimensions.
func (m *Model) layout() {
	// header + notice + input + help
	chrome := 1 + 1 + inputHeight + 1
	h := m.height - chrome
	if h < 1 {
		h = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, h)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = h
	}
	m.input.SetWidth(m.width - 2)
}

// refresh re-renders the transcript into the viewport. When follow is
// set the view snaps to the newest message.
func (m *Model) refresh(follow bool) {
	if m.width == 0 {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// RUN
// =============================================================================

// Run starts the interface and blocks until the user quits.
func Run(widget *chatbot.Widget, exportDir string) error {
	p := tea.NewProgram(New(widget, exportDir), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
