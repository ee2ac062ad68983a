// Package hierarchy turns flat records into a single-rooted tree.
//
// A record's parent is the record whose path equals its own path with the
// last dot-segment removed. Parent pointers are resolved once, here; children
// are owned by their parent and Parent is a back-reference.
package hierarchy

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/radialtree/pkg/metrics"
	"github.com/vanderheijden86/radialtree/pkg/record"
)

var (
	// ErrNoRoot is returned when every record has a resolvable parent path.
	ErrNoRoot = errors.New("no root")
	// ErrMultipleRoots is returned when more than one record has no parent path.
	ErrMultipleRoots = errors.New("multiple roots")
	// ErrMissingParent is returned when a parent path matches no record.
	ErrMissingParent = errors.New("missing parent")
	// ErrAmbiguousID is returned when two records share a path.
	ErrAmbiguousID = errors.New("ambiguous id")
)

// StratifyError reports which record failed hierarchy construction.
type StratifyError struct {
	Err error
	ID  string
}

func (e *StratifyError) Error() string {
	return fmt.Sprintf("stratify %q: %v", e.ID, e.Err)
}

func (e *StratifyError) Unwrap() error { return e.Err }

// Node is a record placed in the hierarchy.
type Node struct {
	Record record.Record

	Depth    int
	Parent   *Node
	Children []*Node

	// X is the layout angle in degrees, Y the layout radius. Both are set by
	// the layout package.
	X float64
	Y float64
}

// ID returns the node's hierarchical path.
func (n *Node) ID() string { return n.Record.Path() }

// Row returns the record's row index.
func (n *Node) Row() int { return n.Record.Row }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Ancestors returns the node followed by each ancestor up to the root.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for x := n; x != nil; x = x.Parent {
		out = append(out, x)
	}
	return out
}

// EachBefore visits the subtree in pre-order.
func (n *Node) EachBefore(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.EachBefore(fn)
	}
}

// EachAfter visits the subtree in post-order.
func (n *Node) EachAfter(fn func(*Node)) {
	for _, c := range n.Children {
		c.EachAfter(fn)
	}
	fn(n)
}

// Tree is a stratified hierarchy.
type Tree struct {
	Root     *Node
	MaxDepth int

	byPath map[string]*Node
	nodes  []*Node
}

// Stratify builds a tree from records. Children keep input order.
func Stratify(records []record.Record) (*Tree, error) {
	defer metrics.Timer(metrics.Stratify)()

	t := &Tree{byPath: make(map[string]*Node, len(records))}
	nodes := make([]*Node, len(records))
	for i, r := range records {
		n := &Node{Record: r}
		nodes[i] = n
		p := r.Path()
		if _, dup := t.byPath[p]; dup {
			return nil, &StratifyError{Err: ErrAmbiguousID, ID: p}
		}
		t.byPath[p] = n
	}

	for _, n := range nodes {
		pp := n.Record.ParentPath()
		if pp == "" {
			if t.Root != nil {
				return nil, &StratifyError{Err: ErrMultipleRoots, ID: n.ID()}
			}
			t.Root = n
			continue
		}
		parent, ok := t.byPath[pp]
		if !ok {
			return nil, &StratifyError{Err: ErrMissingParent, ID: pp}
		}
		n.Parent = parent
		parent.Children = append(parent.Children, n)
	}
	if t.Root == nil {
		return nil, &StratifyError{Err: ErrNoRoot}
	}

	// Breadth-first from the root assigns depths and collects reachable nodes.
	t.nodes = make([]*Node, 0, len(nodes))
	queue := []*Node{t.Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.Parent != nil {
			n.Depth = n.Parent.Depth + 1
		}
		if n.Depth > t.MaxDepth {
			t.MaxDepth = n.Depth
		}
		t.nodes = append(t.nodes, n)
		queue = append(queue, n.Children...)
	}
	return t, nil
}

// Descendants returns every node in breadth-first order, root first.
func (t *Tree) Descendants() []*Node {
	return t.nodes
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Find returns the node with the given path.
func (t *Tree) Find(path string) (*Node, bool) {
	n, ok := t.byPath[path]
	return n, ok
}

// Leaves returns the leaf nodes in breadth-first order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	for _, n := range t.nodes {
		if n.IsLeaf() {
			out = append(out, n)
		}
	}
	return out
}
