// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// All colors use AdaptiveColor so the widget reads well on light and
// dark terminals.

var (
	// Indigo - brand accent, header, assistant label
	colIndigo = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}

	// Cyan - user label
	colCyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

	// Emerald - success notices, sync-on indicator
	colEmerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

	// Amber - warnings
	colAmber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	// Rose - errors
	colRose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

	// Muted - timestamps, help line, dividers
	colMuted = lipgloss.AdaptiveColor{Light: "#737373", Dark: "#6B7280"}
)

// =============================================================================
// STYLES
// =============================================================================

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colIndigo).
			Padding(0, 1)

	syncOnStyle  = lipgloss.NewStyle().Foreground(colEmerald)
	syncOffStyle = lipgloss.NewStyle().Foreground(colMuted)

	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colCyan)
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(colIndigo)
	timeStyle      = lipgloss.NewStyle().Foreground(colMuted)
	attachStyle    = lipgloss.NewStyle().Italic(true).Foreground(colMuted)

	helpStyle = lipgloss.NewStyle().Foreground(colMuted)

	noticeStyles = map[string]lipgloss.Style{
		"info":    lipgloss.NewStyle().Foreground(colMuted),
		"success": lipgloss.NewStyle().Foreground(colEmerald),
		"warning": lipgloss.NewStyle().Foreground(colAmber),
		"error":   lipgloss.NewStyle().Foreground(colRose),
	}
)
