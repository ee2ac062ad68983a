package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Adaptive colours for light and dark terminals. The dark variants follow
// the canvas colour used by SceneColour.
var (
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: canvasColour}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary     = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorDanger      = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Reveal and pin states.
	colorRevealing = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	colorReady     = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	colorPinned    = lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#6699FF"}
	colorPinnedBg  = lipgloss.AdaptiveColor{Light: "#CCE5FF", Dark: "#1A2A44"}
)

var (
	// PanelStyle frames the tree list and the data panel.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle frames the panel that receives keys.
	FocusedPanelStyle = PanelStyle.
				BorderForeground(ColorPrimary)
)

// RenderStateBadge returns the status bar badge: PINNED while a route is
// pinned, REVEALING until the last ring is shown, READY after.
func RenderStateBadge(generated, pinned bool) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch {
	case pinned:
		return style.Foreground(colorPinned).Background(colorPinnedBg).Render("PINNED")
	case generated:
		return style.Foreground(colorReady).Render("READY")
	default:
		return style.Foreground(colorRevealing).Render("REVEALING")
	}
}
