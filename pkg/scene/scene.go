// Package scene is the retained model of a rendered radial tree.
//
// Build turns a laid-out hierarchy into branch, shape and text elements, each
// tagged with an id of the form {role}{depthIndex}i{row}. The depth index is
// the order in which a depth level was first met while walking the tree
// breadth-first, so it equals the depth for shapes and texts and depth-1 for
// branches. Ids are the only way interaction and reveal code find elements;
// renderers read the same elements to draw SVG, PNG, HTML or terminal output.
package scene

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/radialtree/pkg/config"
	"github.com/vanderheijden86/radialtree/pkg/hierarchy"
	"github.com/vanderheijden86/radialtree/pkg/metrics"
	"github.com/vanderheijden86/radialtree/pkg/radial"
)

// Timing holds the durations of the reveal animation.
type Timing struct {
	Step   time.Duration // delay between rings
	Branch time.Duration // link draw-in
	Ring   time.Duration // node radius grow
	Label  time.Duration // label fade-in
}

// TimingFor scales the stock durations by 1/multiplier.
func TimingFor(multiplier float64) Timing {
	if multiplier <= 0 {
		multiplier = 1
	}
	scale := func(ms float64) time.Duration {
		return time.Duration(ms / multiplier * float64(time.Millisecond))
	}
	return Timing{
		Step:   scale(1500),
		Branch: scale(2000),
		Ring:   scale(500),
		Label:  scale(500),
	}
}

type groupKey struct {
	role       Role
	depthIndex int
}

// Scene is the full set of elements for one render.
type Scene struct {
	Width, Height int
	// Origin is where the tree's centre sits on the canvas.
	Origin r2.Vec
	Tree   *hierarchy.Tree

	Branches []*Element
	Shapes   []*Element
	Texts    []*Element

	opts config.Options

	byID   map[string]*Element
	groups map[groupKey][]*Element

	nodeDepthIndex map[int]int
	linkDepthIndex map[int]int
}

// Build creates the elements of a laid-out tree. With revealed false, every
// element starts hidden and waits for Reveal.
func Build(t *hierarchy.Tree, opts config.Options, revealed bool) *Scene {
	defer metrics.Timer(metrics.SceneBuild)()

	s := &Scene{
		Width:          opts.Width,
		Height:         opts.Height,
		Origin:         r2.Vec{X: float64(opts.Width)/2 + opts.OffsetX, Y: float64(opts.Height) / 2},
		Tree:           t,
		opts:           opts,
		byID:           make(map[string]*Element, 3*t.Len()),
		groups:         make(map[groupKey][]*Element),
		nodeDepthIndex: make(map[int]int),
		linkDepthIndex: make(map[int]int),
	}

	nodes := t.Descendants()
	for _, n := range nodes[1:] {
		s.addBranch(n, revealed)
	}
	for _, n := range nodes {
		s.addShape(n, revealed)
	}
	for _, n := range nodes {
		s.addText(n, revealed)
	}
	return s
}

func firstSeen(m map[int]int, depth int) int {
	if idx, ok := m[depth]; ok {
		return idx
	}
	m[depth] = len(m)
	return m[depth]
}

func (s *Scene) add(e *Element) {
	s.byID[e.ID] = e
	k := groupKey{e.Role, e.DepthIndex}
	s.groups[k] = append(s.groups[k], e)
}

func (s *Scene) addBranch(n *hierarchy.Node, revealed bool) {
	idx := firstSeen(s.linkDepthIndex, n.Depth)
	curve := radial.Link(n.X, n.Y, n.Parent.X, n.Parent.Y, s.opts.RMultiplier)
	length := curve.Length()
	e := &Element{
		ID:          ID(Branch, idx, n.Row()),
		Role:        Branch,
		Node:        n,
		DepthIndex:  idx,
		Class:       ClassLink,
		Curve:       curve,
		Length:      length,
		Pos:         curve.Start,
		Stroke:      s.opts.BranchColour,
		StrokeWidth: s.opts.BranchThickness,
		DashOffset:  -length,
		Opacity:     s.opts.BranchOpacity,
	}
	if revealed {
		e.DashOffset = 0
	}
	s.Branches = append(s.Branches, e)
	s.add(e)
}

func nodeClass(n *hierarchy.Node) string {
	if n.IsLeaf() {
		return ClassLeaf
	}
	return ClassInternal
}

func nodeTitle(n *hierarchy.Node) string {
	if !n.IsLeaf() {
		return ""
	}
	return n.Record.Readable("\n")
}

func (s *Scene) addShape(n *hierarchy.Node, revealed bool) {
	idx := firstSeen(s.nodeDepthIndex, n.Depth)
	e := &Element{
		ID:         ID(Shape, idx, n.Row()),
		Role:       Shape,
		Node:       n,
		DepthIndex: idx,
		Class:      nodeClass(n),
		Pos:        radial.Project(n.X, n.Y, s.opts.RMultiplier),
		Title:      nodeTitle(n),
		Fill:       s.opts.NodeColour,
		Opacity:    1,
	}
	if revealed {
		e.Radius = s.opts.NodeRadius
	}
	s.Shapes = append(s.Shapes, e)
	s.add(e)
}

func (s *Scene) addText(n *hierarchy.Node, revealed bool) {
	idx := s.nodeDepthIndex[n.Depth]
	leaf := n.IsLeaf()
	e := &Element{
		ID:         ID(Text, idx, n.Row()),
		Role:       Text,
		Node:       n,
		DepthIndex: idx,
		Class:      nodeClass(n),
		Pos:        radial.Project(n.X, n.Y, s.opts.RMultiplier),
		Label:      n.Record.Label(),
		Anchor:     radial.LabelAnchor(n.X, leaf),
		Rotate:     radial.LabelRotation(n.X),
		OffsetX:    radial.LabelOffset(n.X, leaf, s.opts.TextDistanceFromNode),
		Title:      nodeTitle(n),
		Fill:       s.opts.NodeColour,
		FontSize:   s.opts.TextSize,
	}
	if revealed {
		e.Opacity = 1
	}
	s.Texts = append(s.Texts, e)
	s.add(e)
}

// Options returns the options the scene was built with.
func (s *Scene) Options() config.Options { return s.opts }

// Select returns the element with the given id, or nil.
func (s *Scene) Select(id string) *Element {
	return s.byID[id]
}

// Group returns the elements of a role at a depth index, in tree order.
func (s *Scene) Group(role Role, depthIndex int) []*Element {
	return s.groups[groupKey{role, depthIndex}]
}

// Len returns the number of elements.
func (s *Scene) Len() int { return len(s.byID) }

// MaxDepthIndex returns the deepest node depth index.
func (s *Scene) MaxDepthIndex() int {
	return len(s.nodeDepthIndex) - 1
}

// BranchID returns the id of the branch into n, or "" for the root.
func (s *Scene) BranchID(n *hierarchy.Node) string {
	idx, ok := s.linkDepthIndex[n.Depth]
	if !ok {
		return ""
	}
	return ID(Branch, idx, n.Row())
}

// ShapeID returns the id of n's marker.
func (s *Scene) ShapeID(n *hierarchy.Node) string {
	return ID(Shape, s.nodeDepthIndex[n.Depth], n.Row())
}

// TextID returns the id of n's label.
func (s *Scene) TextID(n *hierarchy.Node) string {
	return ID(Text, s.nodeDepthIndex[n.Depth], n.Row())
}

// Reveal runs step k of the reveal: shapes and texts at depth index k, and
// the branches at depth index k-1 that lead into them.
func (s *Scene) Reveal(k int, tm Timing) {
	for _, e := range s.Group(Shape, k) {
		e.animate("r", s.opts.NodeRadius, tm.Ring)
	}
	for _, e := range s.Group(Text, k) {
		e.animate("opacity", 1, tm.Label)
	}
	for _, e := range s.Group(Branch, k-1) {
		e.animate("stroke-dashoffset", 0, tm.Branch)
	}
}

// RevealAll shows every element without animation.
func (s *Scene) RevealAll() {
	for _, e := range s.Branches {
		e.DashOffset = 0
	}
	for _, e := range s.Shapes {
		e.Radius = s.opts.NodeRadius
	}
	for _, e := range s.Texts {
		e.Opacity = 1
	}
}

// Each visits every element: branches, then shapes, then texts.
func (s *Scene) Each(fn func(*Element)) {
	for _, e := range s.Branches {
		fn(e)
	}
	for _, e := range s.Shapes {
		fn(e)
	}
	for _, e := range s.Texts {
		fn(e)
	}
}
