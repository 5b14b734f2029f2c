package main

import (
	"github.com/charmbracelet/lipgloss"

	"splox-go/pkg/splox"
)

var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	colorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}

	styleBold    = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(colorMuted)
	styleLabel   = lipgloss.NewStyle().Foreground(colorInfo)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
)

// statusText renders a run or node status in its color.
func statusText(s splox.Status) string {
	switch s {
	case splox.StatusCompleted:
		return styleSuccess.Render(s.String())
	case splox.StatusFailed:
		return styleError.Render(s.String())
	case splox.StatusStopped:
		return styleWarning.Render(s.String())
	case splox.StatusInProgress:
		return styleLabel.Render(s.String())
	default:
		return styleDim.Render(s.String())
	}
}
