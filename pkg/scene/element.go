package scene

import (
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/radialtree/pkg/hierarchy"
	"github.com/vanderheijden86/radialtree/pkg/radial"
)

// Role is the kind of a rendered element and the first letter of its id.
type Role byte

const (
	Branch Role = 'b' // link from a node to its parent
	Shape  Role = 's' // node marker
	Text   Role = 't' // node label
)

func (r Role) String() string {
	switch r {
	case Branch:
		return "branch"
	case Shape:
		return "shape"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// ID formats an element id: role, depth index, "i", row index.
func ID(role Role, depthIndex, row int) string {
	return string(role) + strconv.Itoa(depthIndex) + "i" + strconv.Itoa(row)
}

// Class names distinguishing leaves from internal nodes.
const (
	ClassLink     = "link"
	ClassLeaf     = "node node--leaf"
	ClassInternal = "node node--internal"
)

// Transition records the last animated attribute change of an element.
type Transition struct {
	Attr     string
	To       float64
	Duration time.Duration
}

// Element is one addressable item of the scene.
type Element struct {
	ID         string
	Role       Role
	Node       *hierarchy.Node
	DepthIndex int
	Class      string

	// Branch geometry.
	Curve  radial.Curve
	Length float64

	// Node position, shared by a node's shape and text.
	Pos r2.Vec

	// Text layout.
	Label   string
	Anchor  radial.Anchor
	Rotate  float64
	OffsetX float64

	// Title is the tooltip: the readable payload of leaves, empty otherwise.
	Title string

	Stroke      string
	StrokeWidth float64
	DashOffset  float64
	Fill        string
	Opacity     float64
	Radius      float64
	FontSize    string

	Transition *Transition
}

// Visible reports whether the element has been revealed.
func (e *Element) Visible() bool {
	switch e.Role {
	case Branch:
		return e.DashOffset == 0
	case Shape:
		return e.Radius > 0
	case Text:
		return e.Opacity > 0
	}
	return false
}

// IsLeaf reports whether the element belongs to a leaf node.
func (e *Element) IsLeaf() bool {
	return e.Node != nil && e.Node.IsLeaf()
}

func (e *Element) animate(attr string, to float64, d time.Duration) {
	switch attr {
	case "stroke-dashoffset":
		e.DashOffset = to
	case "r":
		e.Radius = to
	case "opacity":
		e.Opacity = to
	}
	e.Transition = &Transition{Attr: attr, To: to, Duration: d}
}
