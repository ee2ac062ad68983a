package radial

import (
	"math"
	"strings"
	"testing"

	"pgregory.net/rapid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/radialtree/pkg/testutil"
)

func TestProject_Cardinals(t *testing.T) {
	tests := []struct {
		angle float64
		want  r2.Vec
	}{
		{0, r2.Vec{X: 0, Y: -10}},
		{90, r2.Vec{X: 10, Y: 0}},
		{180, r2.Vec{X: 0, Y: 10}},
		{270, r2.Vec{X: -10, Y: 0}},
	}
	for _, tt := range tests {
		got := Project(tt.angle, 5, 2)
		testutil.AssertClose(t, "x", got.X, tt.want.X, 1e-9)
		testutil.AssertClose(t, "y", got.Y, tt.want.Y, 1e-9)
	}
}

func TestProject_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		angle := rapid.Float64Range(-720, 720).Draw(rt, "angle")
		radius := rapid.Float64Range(0.01, 1000).Draw(rt, "radius")
		mult := rapid.Float64Range(0.1, 5).Draw(rt, "mult")

		gotAngle, gotRadius := Unproject(Project(angle, radius, mult), mult)

		wantAngle := math.Mod(angle, 360)
		if wantAngle < 0 {
			wantAngle += 360
		}
		diff := math.Abs(gotAngle - wantAngle)
		if diff > 180 {
			diff = 360 - diff
		}
		if diff > 1e-6 {
			rt.Fatalf("angle %v round-tripped to %v", wantAngle, gotAngle)
		}
		if math.Abs(gotRadius-radius) > 1e-6*radius {
			rt.Fatalf("radius %v round-tripped to %v", radius, gotRadius)
		}
	})
}

func TestLabelAnchor_Boundary(t *testing.T) {
	tests := []struct {
		angle float64
		leaf  bool
		want  Anchor
	}{
		{179.9, true, AnchorStart},
		{180.1, true, AnchorEnd},
		{180, true, AnchorEnd},
		{179.9, false, AnchorEnd},
		{180.1, false, AnchorStart},
	}
	for _, tt := range tests {
		if got := LabelAnchor(tt.angle, tt.leaf); got != tt.want {
			t.Errorf("LabelAnchor(%v, %v) = %s, want %s", tt.angle, tt.leaf, got, tt.want)
		}
	}
}

func TestLabelOffsetAndRotation(t *testing.T) {
	if got := LabelOffset(90, true, 6); got != 6 {
		t.Errorf("right-half leaf offset = %v, want 6", got)
	}
	if got := LabelOffset(270, true, 6); got != -6 {
		t.Errorf("left-half leaf offset = %v, want -6", got)
	}
	if got := LabelRotation(90); got != 0 {
		t.Errorf("rotation(90) = %v, want 0", got)
	}
	if got := LabelRotation(270); got != 360 {
		t.Errorf("rotation(270) = %v, want 360", got)
	}
}

func TestLink_EndpointsAndControlPoints(t *testing.T) {
	c := Link(90, 200, 0, 100, 1)
	testutil.AssertClose(t, "start.x", c.Start.X, 200, 1e-9)
	testutil.AssertClose(t, "c1.x", c.C1.X, 150, 1e-9)
	testutil.AssertClose(t, "c2.y", c.C2.Y, -150, 1e-9)
	testutil.AssertClose(t, "end.y", c.End.Y, -100, 1e-9)

	if p := c.Point(0); r2.Norm(r2.Sub(p, c.Start)) > 1e-9 {
		t.Errorf("Point(0) = %v, want start", p)
	}
	if p := c.Point(1); r2.Norm(r2.Sub(p, c.End)) > 1e-9 {
		t.Errorf("Point(1) = %v, want end", p)
	}
}

func TestCurve_LengthOfStraightLink(t *testing.T) {
	c := Link(45, 300, 45, 100, 1)
	testutil.AssertClose(t, "length", c.Length(), 200, 1e-6)
}

func TestCurve_D(t *testing.T) {
	d := Link(90, 2, 90, 1, 1).D()
	if !strings.HasPrefix(d, "M2,0C1.5,0 1.5,0 1,0") {
		t.Errorf("unexpected path data %q", d)
	}
}

func TestFormat(t *testing.T) {
	cases := map[float64]string{1.5: "1.5", 2: "2", -0.0001: "0", 3.14159: "3.142"}
	for in, want := range cases {
		if got := Format(in); got != want {
			t.Errorf("Format(%v) = %q, want %q", in, got, want)
		}
	}
}
