package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors tuned for both light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}

	// Status colors
	ColorStatusOpen       = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorStatusInProgress = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorStatusBlocked    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorStatusClosed     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	groupStyle  = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	cursorStyle = lipgloss.NewStyle().Background(ColorBgHighlight)
	statusStyle = lipgloss.NewStyle().Foreground(ColorWarning)
)

// RenderStatusBadge returns a styled four-character status badge.
func RenderStatusBadge(status string) string {
	var fg lipgloss.AdaptiveColor
	var label string
	switch status {
	case "open":
		fg, label = ColorStatusOpen, "OPEN"
	case "in_progress":
		fg, label = ColorStatusInProgress, "PROG"
	case "blocked":
		fg, label = ColorStatusBlocked, "BLKD"
	case "closed":
		fg, label = ColorStatusClosed, "DONE"
	default:
		fg, label = ColorMuted, "????"
	}
	return lipgloss.NewStyle().Foreground(fg).Render(label)
}

// RenderPriorityBadge returns a styled priority badge, P0 hottest.
func RenderPriorityBadge(priority int) string {
	var fg lipgloss.AdaptiveColor
	switch priority {
	case 0:
		fg = ColorDanger
	case 1:
		fg = ColorWarning
	case 2:
		fg = ColorInfo
	default:
		fg = ColorMuted
	}
	label := fmt.Sprintf("P%d", priority)
	if priority < 0 || priority > 9 {
		label = "P?"
	}
	return lipgloss.NewStyle().Foreground(fg).Bold(true).Render(label)
}

// RenderDivider renders a horizontal divider line.
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return mutedStyle.Render(strings.Repeat("─", width))
}

// truncate clips s to max display cells, appending an ellipsis when clipped.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > max-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
