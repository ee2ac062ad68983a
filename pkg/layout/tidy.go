// Package layout assigns tidy-tree coordinates to a hierarchy.
//
// The algorithm is the linear-time Reingold-Tilford variant by Buchheim,
// Jünger and Leipert: a post-order walk computes preliminary x positions and
// subtree shifts, a pre-order walk accumulates modifiers into final positions,
// and the result is scaled to fit Size. X is the breadth axis (the angle, for
// radial trees) and Y grows with depth.
package layout

import (
	"github.com/vanderheijden86/radialtree/pkg/hierarchy"
	"github.com/vanderheijden86/radialtree/pkg/metrics"
)

// Separation returns the minimum breadth distance between two adjacent nodes.
type Separation func(a, b *hierarchy.Node) float64

// DefaultSeparation keeps siblings one unit apart and cousins two.
func DefaultSeparation(a, b *hierarchy.Node) float64 {
	if a.Parent == b.Parent {
		return 1
	}
	return 2
}

// RadialSeparation divides DefaultSeparation by depth, so outer rings pack
// tighter in angle where they have more circumference.
func RadialSeparation(a, b *hierarchy.Node) float64 {
	return DefaultSeparation(a, b) / float64(a.Depth)
}

// Tidy is a configured tree layout.
type Tidy struct {
	separation Separation
	dx, dy     float64
}

// NewTidy returns a layout with DefaultSeparation and unit size.
func NewTidy() *Tidy {
	return &Tidy{separation: DefaultSeparation, dx: 1, dy: 1}
}

// NewRadial returns the layout used for radial trees: 360 degrees of breadth,
// depth scaled to radius, RadialSeparation between neighbours.
func NewRadial(radius float64) *Tidy {
	return NewTidy().Size(360, radius).Separation(RadialSeparation)
}

// Size sets the breadth and depth extents of the layout.
func (l *Tidy) Size(dx, dy float64) *Tidy {
	l.dx, l.dy = dx, dy
	return l
}

// Separation sets the neighbour separation rule.
func (l *Tidy) Separation(fn Separation) *Tidy {
	l.separation = fn
	return l
}

// wrapped carries the per-node bookkeeping of the algorithm.
type wrapped struct {
	node     *hierarchy.Node
	parent   *wrapped
	children []*wrapped

	defaultAncestor *wrapped // A
	ancestor        *wrapped // a
	prelim          float64  // z
	mod             float64  // m
	change          float64  // c
	shift           float64  // s
	thread          *wrapped // t
	number          int      // i, index among siblings
}

// Apply lays out the tree rooted at t.Root, writing Node.X and Node.Y.
func (l *Tidy) Apply(t *hierarchy.Tree) {
	defer metrics.Timer(metrics.Layout)()

	root := t.Root
	w := wrap(root)
	l.firstWalkAll(w)
	w.parent.mod = -w.prelim
	secondWalkAll(w)

	left, right, bottom := root, root, root
	root.EachBefore(func(n *hierarchy.Node) {
		if n.X < left.X {
			left = n
		}
		if n.X > right.X {
			right = n
		}
		if n.Depth > bottom.Depth {
			bottom = n
		}
	})

	s := 1.0
	if left != right {
		s = l.separation(left, right) / 2
	}
	tx := s - left.X
	kx := l.dx / (right.X + s + tx)
	depth := float64(bottom.Depth)
	if depth == 0 {
		depth = 1
	}
	ky := l.dy / depth
	root.EachBefore(func(n *hierarchy.Node) {
		n.X = (n.X + tx) * kx
		n.Y = float64(n.Depth) * ky
	})
}

func wrap(root *hierarchy.Node) *wrapped {
	var build func(n *hierarchy.Node, i int) *wrapped
	build = func(n *hierarchy.Node, i int) *wrapped {
		w := &wrapped{node: n, number: i}
		w.ancestor = w
		for ci, c := range n.Children {
			cw := build(c, ci)
			cw.parent = w
			w.children = append(w.children, cw)
		}
		return w
	}
	w := build(root, 0)
	sentinel := &wrapped{children: []*wrapped{w}}
	sentinel.ancestor = sentinel
	w.parent = sentinel
	return w
}

func (l *Tidy) firstWalkAll(v *wrapped) {
	for _, c := range v.children {
		l.firstWalkAll(c)
	}
	l.firstWalk(v)
}

func (l *Tidy) firstWalk(v *wrapped) {
	siblings := v.parent.children
	var w *wrapped
	if v.number > 0 {
		w = siblings[v.number-1]
	}
	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if w != nil {
			v.prelim = w.prelim + l.separation(v.node, w.node)
			v.mod = v.prelim - midpoint
		} else {
			v.prelim = midpoint
		}
	} else if w != nil {
		v.prelim = w.prelim + l.separation(v.node, w.node)
	}
	anc := v.parent.defaultAncestor
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.defaultAncestor = l.apportion(v, w, anc)
}

func secondWalkAll(v *wrapped) {
	v.node.X = v.prelim + v.parent.mod
	v.mod += v.parent.mod
	for _, c := range v.children {
		secondWalkAll(c)
	}
}

func (l *Tidy) apportion(v, w, ancestor *wrapped) *wrapped {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim := w
	vom := vip.parent.children[0]
	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v
		shift := vim.prelim + sim - vip.prelim - sip + l.separation(vim.node, vip.node)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}
	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		ancestor = v
	}
	return ancestor
}

func nextLeft(v *wrapped) *wrapped {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *wrapped) *wrapped {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *wrapped, shift float64) {
	change := shift / float64(wp.number-wm.number)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *wrapped) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, ancestor *wrapped) *wrapped {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return ancestor
}
