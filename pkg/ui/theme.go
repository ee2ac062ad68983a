package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vanderheijden86/radialtree/pkg/config"
)

// TermProfile is the colour profile of stdout, detected once.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns hex on terminals with at least 256 colours and ANSI white
// on smaller palettes, where blended scene colours would collapse to noise.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// canvasColour is the background the tree is drawn on.
const canvasColour = "#282A36"

var canvas, _ = colorful.Hex(canvasColour)

// SceneColour converts the CSS colour of a scene element at the given
// opacity to a terminal colour by blending toward the canvas. Colours that
// do not parse render as subtext.
func SceneColour(css string, opacity float64) lipgloss.TerminalColor {
	c, err := config.ParseColour(css)
	if err != nil {
		return ColorSubtext
	}
	opacity = min(max(opacity, 0), 1)
	return ThemeFg(canvas.BlendRgb(c, opacity).Clamped().Hex())
}

// Theme holds the styles of the tree view, bound to one renderer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Base        lipgloss.Style
	Selected    lipgloss.Style
	Header      lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	MutedText   lipgloss.Style
	PrimaryBold lipgloss.Style
}

// DefaultTheme builds the adaptive theme for r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Renderer: r,
		Base:     r.NewStyle().Foreground(ColorText),
		Selected: r.NewStyle().Background(ColorBgHighlight).Bold(true),
		Header: r.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorBg).
			Bold(true).
			Padding(0, 1),
		Status:      r.NewStyle().Foreground(ColorSubtext),
		Error:       r.NewStyle().Foreground(ColorDanger).Bold(true),
		MutedText:   r.NewStyle().Foreground(ColorMuted),
		PrimaryBold: r.NewStyle().Foreground(ColorPrimary).Bold(true),
	}
}

// TestTheme returns a theme on a stdout renderer for tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
