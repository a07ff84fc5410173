package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/quillworks/preflight/internal/hook"
)

var (
	// Status colors, readable on both light and dark terminals
	passedColor  = lipgloss.Color("#10B981") // Green
	failedColor  = lipgloss.Color("#F87171") // Red
	timeoutColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#F87171") // Red
	mutedColor   = lipgloss.Color("#9CA3AF") // Gray

	passedStyle  = lipgloss.NewStyle().Foreground(passedColor)
	failedStyle  = lipgloss.NewStyle().Foreground(failedColor).Bold(true)
	timeoutStyle = lipgloss.NewStyle().Foreground(timeoutColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().Bold(true)
)

// statusBadge renders a colored status marker for one result.
func statusBadge(status hook.Status) string {
	switch status {
	case hook.StatusPassed:
		return passedStyle.Render("✓ passed")
	case hook.StatusFailed:
		return failedStyle.Render("✗ failed")
	case hook.StatusTimeout:
		return timeoutStyle.Render("⏱ timeout")
	case hook.StatusError:
		return errorStyle.Render("! error")
	default:
		return mutedStyle.Render(string(status))
	}
}
