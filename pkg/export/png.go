package export

import (
	"image/color"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/radialtree/pkg/config"
	"github.com/vanderheijden86/radialtree/pkg/radial"
	"github.com/vanderheijden86/radialtree/pkg/scene"
)

var colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}

// basicFontHeight is the pixel height of basicfont.Face7x13.
const basicFontHeight = 13.0

// RenderPNG rasterises the visible part of the scene.
func RenderPNG(w io.Writer, sc *scene.Scene) error {
	dc := gg.NewContext(sc.Width, sc.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.Translate(sc.Origin.X, sc.Origin.Y)
	dc.SetFontFace(basicfont.Face7x13)

	for _, e := range sc.Branches {
		if !e.Visible() {
			continue
		}
		setColor(dc, e.Stroke, e.Opacity)
		dc.SetLineWidth(e.StrokeWidth)
		c := e.Curve
		dc.MoveTo(c.Start.X, c.Start.Y)
		dc.CubicTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.End.X, c.End.Y)
		dc.Stroke()
	}

	for _, e := range sc.Shapes {
		if !e.Visible() {
			continue
		}
		setColor(dc, e.Fill, e.Opacity)
		dc.DrawCircle(e.Pos.X, e.Pos.Y, e.Radius)
		dc.Fill()
	}

	for _, e := range sc.Texts {
		if !e.Visible() {
			continue
		}
		drawLabel(dc, e)
	}

	return dc.EncodePNG(w)
}

func drawLabel(dc *gg.Context, e *scene.Element) {
	k := fontPixels(e.FontSize) / basicFontHeight
	ax := 0.0
	if e.Anchor == radial.AnchorEnd {
		ax = 1
	}

	dc.Push()
	dc.Translate(e.Pos.X, e.Pos.Y)
	dc.Rotate(gg.Radians(e.Rotate))
	dc.Translate(e.OffsetX, 0)
	dc.Scale(k, k)
	setColor(dc, e.Fill, e.Opacity)
	dc.DrawStringAnchored(e.Label, 0, 0, ax, 0.35)
	dc.Pop()
}

// setColor sets a CSS colour with opacity. Unparseable colours draw black.
func setColor(dc *gg.Context, css string, opacity float64) {
	c, err := config.ParseColour(css)
	if err != nil {
		dc.SetRGBA(0, 0, 0, opacity)
		return
	}
	dc.SetRGBA(c.R, c.G, c.B, opacity)
}
