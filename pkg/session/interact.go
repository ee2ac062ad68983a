package session

import (
	"fmt"

	"github.com/vanderheijden86/radialtree/pkg/hierarchy"
	"github.com/vanderheijden86/radialtree/pkg/metrics"
	"github.com/vanderheijden86/radialtree/pkg/scene"
)

type pointerEvent int

const (
	pointerEnter pointerEvent = iota
	pointerLeave
	pointerClick
)

// Enter handles the pointer entering an element. Hovering a leaf shape or
// label always shows its payload; the route is highlighted only once the
// reveal has finished. The ids of the touched elements are returned.
func (s *Session) Enter(id string) ([]string, error) {
	return s.dispatch(id, pointerEnter)
}

// Leave handles the pointer leaving an element.
func (s *Session) Leave(id string) ([]string, error) {
	return s.dispatch(id, pointerLeave)
}

// Click toggles the pinned state, dimming or restoring the whole tree, and
// marks the route of the clicked shape or label. Clicking a link does nothing.
func (s *Session) Click(id string) ([]string, error) {
	return s.dispatch(id, pointerClick)
}

// EnterNode, LeaveNode and ClickNode address a node through its shape.
func (s *Session) EnterNode(n *hierarchy.Node) ([]string, error) {
	return s.dispatchNode(n, pointerEnter)
}

func (s *Session) LeaveNode(n *hierarchy.Node) ([]string, error) {
	return s.dispatchNode(n, pointerLeave)
}

func (s *Session) ClickNode(n *hierarchy.Node) ([]string, error) {
	return s.dispatchNode(n, pointerClick)
}

func (s *Session) dispatchNode(n *hierarchy.Node, ev pointerEvent) ([]string, error) {
	s.mu.Lock()
	sc := s.scene
	s.mu.Unlock()
	if sc == nil {
		return nil, ErrNotRendered
	}
	return s.dispatch(sc.ShapeID(n), ev)
}

func (s *Session) dispatch(id string, ev pointerEvent) ([]string, error) {
	s.mu.Lock()
	if s.scene == nil {
		s.mu.Unlock()
		return nil, ErrNotRendered
	}
	e := s.scene.Select(id)
	if e == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, id)
	}
	if ev == pointerClick && e.Role == scene.Branch {
		s.mu.Unlock()
		return nil, nil
	}

	var payload string
	showPayload := ev == pointerEnter && e.Role != scene.Branch && e.IsLeaf()
	if showPayload {
		payload = e.Node.Record.Readable(s.sep)
	}
	target, display := s.opts.DataBoxID, s.display

	var touched []string
	if s.generated {
		touched = s.routeToRootLocked(e.Node, ev)
	}
	s.mu.Unlock()

	if showPayload {
		display.SetText(target, payload)
	}
	if touched != nil {
		metrics.Highlights.Inc()
		s.notify(Event{Kind: EventHighlighted})
	}
	return touched, nil
}

// routeToRootLocked restyles n and its ancestors for ev.
func (s *Session) routeToRootLocked(n *hierarchy.Node, ev pointerEvent) []string {
	o := s.opts
	branchColour, nodeColour := o.BranchColour, o.NodeColour
	branchOpacity, nodeOpacity := o.BranchOpacity, o.NodeOpacity

	switch ev {
	case pointerEnter:
		branchColour, nodeColour = o.BranchColourOnHover, o.NodeColourOnHover
		branchOpacity, nodeOpacity = 1, 1
	case pointerLeave:
		if s.pinned {
			branchOpacity, nodeOpacity = o.TreeOpacityOnClick, o.TreeOpacityOnClick
		}
	case pointerClick:
		if s.pinned {
			s.setAllOpacityLocked(o.BranchOpacity, o.NodeOpacity)
		} else {
			s.setAllOpacityLocked(o.TreeOpacityOnClick, o.TreeOpacityOnClick)
		}
		branchColour, nodeColour = o.BranchColourOnHover, o.NodeColourOnHover
		s.pinned = !s.pinned
	}

	var touched []string
	for _, a := range n.Ancestors() {
		if e := s.scene.Select(s.scene.BranchID(a)); e != nil {
			e.Stroke, e.Opacity = branchColour, branchOpacity
			touched = append(touched, e.ID)
		}
		for _, e := range []*scene.Element{s.scene.Select(s.scene.ShapeID(a)), s.scene.Select(s.scene.TextID(a))} {
			if e != nil {
				e.Fill, e.Opacity = nodeColour, nodeOpacity
				touched = append(touched, e.ID)
			}
		}
	}
	return touched
}

func (s *Session) setAllOpacityLocked(branch, node float64) {
	for _, e := range s.scene.Branches {
		e.Opacity = branch
	}
	for _, e := range s.scene.Shapes {
		e.Opacity = node
	}
	for _, e := range s.scene.Texts {
		e.Opacity = node
	}
}
