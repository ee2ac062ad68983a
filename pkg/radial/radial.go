// Package radial maps tidy-tree coordinates onto a circle.
//
// Angles are in degrees with 0 at twelve o'clock, increasing clockwise in
// screen coordinates (y down). Radii are layout distances scaled by a
// multiplier that spreads or tightens the rings.
package radial

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Project converts (angle, radius) into Cartesian screen coordinates.
func Project(angle, radius, mult float64) r2.Vec {
	rad := (angle - 90) / 180 * math.Pi
	r := radius * mult
	return r2.Vec{X: r * math.Cos(rad), Y: r * math.Sin(rad)}
}

// Unproject is the inverse of Project. The angle is normalised to [0, 360).
func Unproject(p r2.Vec, mult float64) (angle, radius float64) {
	radius = r2.Norm(p) / mult
	angle = math.Atan2(p.Y, p.X)*180/math.Pi + 90
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle, radius
}

// Curve is a cubic Bézier from a child to its parent.
type Curve struct {
	Start, C1, C2, End r2.Vec
}

// Link builds the curve between a child at (angle, radius) and its parent.
// Both control points sit on the ring halfway between the two radii, at the
// child's and the parent's angle respectively, which bends the link radially.
func Link(childAngle, childRadius, parentAngle, parentRadius, mult float64) Curve {
	mid := (childRadius + parentRadius) / 2
	return Curve{
		Start: Project(childAngle, childRadius, mult),
		C1:    Project(childAngle, mid, mult),
		C2:    Project(parentAngle, mid, mult),
		End:   Project(parentAngle, parentRadius, mult),
	}
}

// Point evaluates the curve at t in [0, 1].
func (c Curve) Point(t float64) r2.Vec {
	u := 1 - t
	a := r2.Scale(u*u*u, c.Start)
	b := r2.Scale(3*u*u*t, c.C1)
	d := r2.Scale(3*u*t*t, c.C2)
	e := r2.Scale(t*t*t, c.End)
	return r2.Add(r2.Add(a, b), r2.Add(d, e))
}

// lengthSteps is the number of chords used to approximate arc length.
const lengthSteps = 64

// Length approximates the arc length with straight chords.
func (c Curve) Length() float64 {
	var total float64
	prev := c.Start
	for i := 1; i <= lengthSteps; i++ {
		p := c.Point(float64(i) / lengthSteps)
		total += r2.Norm(r2.Sub(p, prev))
		prev = p
	}
	return total
}

// D returns the SVG path data for the curve.
func (c Curve) D() string {
	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, c.Start)
	b.WriteString("C")
	writePoint(&b, c.C1)
	b.WriteString(" ")
	writePoint(&b, c.C2)
	b.WriteString(" ")
	writePoint(&b, c.End)
	return b.String()
}

func writePoint(b *strings.Builder, p r2.Vec) {
	b.WriteString(Format(p.X))
	b.WriteString(",")
	b.WriteString(Format(p.Y))
}

// Format renders a coordinate with at most three decimals.
func Format(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// Anchor is the text-anchor of a label.
type Anchor string

const (
	AnchorStart Anchor = "start"
	AnchorEnd   Anchor = "end"
)

// LabelAnchor returns the side a label is anchored on. Leaves on the right
// half and internal nodes on the left half anchor at the start; the other
// cases anchor at the end, so text always reads away from the node.
func LabelAnchor(angle float64, leaf bool) Anchor {
	if (angle < 180) == leaf {
		return AnchorStart
	}
	return AnchorEnd
}

// LabelOffset returns the signed x offset of a label from its node.
func LabelOffset(angle float64, leaf bool, offset float64) float64 {
	if LabelAnchor(angle, leaf) == AnchorStart {
		return offset
	}
	return -offset
}

// LabelRotation returns the label rotation in degrees. It flips by 180
// degrees past the bottom of the circle so text is never upside down.
func LabelRotation(angle float64) float64 {
	if angle < 180 {
		return angle - 90
	}
	return angle + 90
}
