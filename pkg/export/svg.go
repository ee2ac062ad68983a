package export

import (
	"fmt"
	"html"
	"io"

	svg "github.com/ajstarks/svgo/float"

	"github.com/vanderheijden86/radialtree/pkg/radial"
	"github.com/vanderheijden86/radialtree/pkg/scene"
)

// attr formats a raw attribute for svgo, which passes any argument
// containing '=' through unchanged.
func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func num(v float64) string { return radial.Format(v) }

// RenderSVG writes the scene as a standalone SVG document. Element ids and
// classes are kept so the document can be scripted.
func RenderSVG(w io.Writer, sc *scene.Scene, title string) error {
	canvas := svg.New(w)
	writeSVG(canvas, sc, title)
	return nil
}

func writeSVG(canvas *svg.SVG, sc *scene.Scene, title string) {
	canvas.Start(float64(sc.Width), float64(sc.Height))
	if title != "" {
		canvas.Title(title)
	}
	canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(sc.Origin.X), num(sc.Origin.Y)))

	canvas.Gid("links")
	for _, e := range sc.Branches {
		canvas.Path(e.Curve.D(),
			attr("id", e.ID),
			attr("class", e.Class),
			attr("fill", "none"),
			attr("stroke", e.Stroke),
			attr("stroke-width", num(e.StrokeWidth)),
			attr("stroke-dasharray", num(e.Length)+" "+num(e.Length)),
			attr("stroke-dashoffset", num(e.DashOffset)),
			attr("opacity", num(e.Opacity)),
		)
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, e := range sc.Shapes {
		attrs := []string{
			attr("id", e.ID),
			attr("class", e.Class),
			attr("opacity", num(e.Opacity)),
			"fill:" + e.Fill,
		}
		if e.Title != "" {
			canvas.Group(attr("class", "tip"))
			canvas.Title(e.Title)
			canvas.Circle(e.Pos.X, e.Pos.Y, e.Radius, attrs...)
			canvas.Gend()
			continue
		}
		canvas.Circle(e.Pos.X, e.Pos.Y, e.Radius, attrs...)
	}
	canvas.Gend()

	canvas.Gid("labels")
	for _, e := range sc.Texts {
		attrs := []string{
			attr("id", e.ID),
			attr("class", e.Class),
			attr("dy", "0.32em"),
			attr("text-anchor", string(e.Anchor)),
			attr("transform", fmt.Sprintf("translate(%s,%s) rotate(%s)", num(e.Pos.X), num(e.Pos.Y), num(e.Rotate))),
			attr("opacity", num(e.Opacity)),
			fmt.Sprintf("fill:%s;font-size:%s;font-family:sans-serif", e.Fill, e.FontSize),
		}
		if e.Title != "" {
			canvas.Group(attr("class", "tip"))
			canvas.Title(e.Title)
			canvas.Text(e.OffsetX, 0, e.Label, attrs...)
			canvas.Gend()
			continue
		}
		canvas.Text(e.OffsetX, 0, e.Label, attrs...)
	}
	canvas.Gend()

	canvas.Gend()
	canvas.End()
}
