// Package session owns one interactive radial tree: the current scene, its
// reveal sequence and the hover/pin state of route highlighting.
//
// A Session may be rendered many times. Each Render replaces the scene and
// cancels the previous reveal; callbacks from an older render are ignored.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vanderheijden86/radialtree/pkg/config"
	"github.com/vanderheijden86/radialtree/pkg/debug"
	"github.com/vanderheijden86/radialtree/pkg/hierarchy"
	"github.com/vanderheijden86/radialtree/pkg/layout"
	"github.com/vanderheijden86/radialtree/pkg/metrics"
	"github.com/vanderheijden86/radialtree/pkg/record"
	"github.com/vanderheijden86/radialtree/pkg/scene"
	"github.com/vanderheijden86/radialtree/pkg/sequencer"
)

var (
	// ErrNotRendered is returned by interactions before the first Render.
	ErrNotRendered = errors.New("session: nothing rendered")
	// ErrUnknownElement is returned when an element id is not in the scene.
	ErrUnknownElement = errors.New("session: unknown element")
)

// Display receives the readable payload of hovered leaves.
type Display interface {
	SetText(target, text string)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(target, text string)

// SetText calls f.
func (f DisplayFunc) SetText(target, text string) { f(target, text) }

type nopDisplay struct{}

func (nopDisplay) SetText(string, string) {}

// EventKind identifies a session change.
type EventKind int

const (
	EventRendered EventKind = iota
	EventRevealed
	EventGenerated
	EventHighlighted
)

func (k EventKind) String() string {
	switch k {
	case EventRendered:
		return "rendered"
	case EventRevealed:
		return "revealed"
	case EventGenerated:
		return "generated"
	case EventHighlighted:
		return "highlighted"
	default:
		return "unknown"
	}
}

// Event describes a change to the session's scene.
type Event struct {
	Kind EventKind
	Step int // reveal step, for EventRevealed and EventGenerated
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock driving the reveal sequence.
func WithClock(c sequencer.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithDisplay sets the payload display target.
func WithDisplay(d Display) Option {
	return func(s *Session) { s.display = d }
}

// WithSeparator sets the line separator of displayed payloads.
// Defaults to "<br>".
func WithSeparator(sep string) Option {
	return func(s *Session) { s.sep = sep }
}

// WithOnChange registers a callback run after every scene change.
// It is called without the session lock held.
func WithOnChange(fn func(Event)) Option {
	return func(s *Session) { s.onChange = fn }
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	opts     config.Options
	clock    sequencer.Clock
	display  Display
	sep      string
	onChange func(Event)

	tree      *hierarchy.Tree
	scene     *scene.Scene
	seq       *sequencer.Sequencer
	stopCtx   func() bool
	generated bool
	pinned    bool
}

// New creates a session with the given options.
func New(opts config.Options, options ...Option) *Session {
	s := &Session{
		opts:    opts,
		clock:   sequencer.RealClock{},
		display: nopDisplay{},
		sep:     "<br>",
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Render builds a new scene from records and starts its reveal. Cancelling
// ctx stops the reveal where it is.
func (s *Session) Render(ctx context.Context, records []record.Record) error {
	defer debug.LogEnterExit("session: render")()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	opts := s.opts
	s.mu.Unlock()

	if err := opts.Validate(); err != nil {
		s.clear()
		return err
	}
	tree, err := hierarchy.Stratify(records)
	if err != nil {
		s.clear()
		return fmt.Errorf("building hierarchy: %w", err)
	}

	layout.NewRadial(opts.Radius).Apply(tree)

	sc := scene.Build(tree, opts, !opts.EnableTransitions)

	s.mu.Lock()
	s.stopLocked()
	s.tree = tree
	s.scene = sc
	s.pinned = false
	s.generated = !opts.EnableTransitions
	var seq *sequencer.Sequencer
	if opts.EnableTransitions {
		tm := scene.TimingFor(opts.TransitionMultiplier)
		seq = sequencer.New(s.clock, tm.Step, sc.MaxDepthIndex(), s.stepFunc(sc, tm))
		s.seq = seq
		s.stopCtx = context.AfterFunc(ctx, seq.Cancel)
	}
	s.mu.Unlock()

	debug.Log("session: %d nodes, depth %d, transitions=%v", tree.Len(), tree.MaxDepth, opts.EnableTransitions)
	s.notify(Event{Kind: EventRendered})
	if seq != nil {
		seq.Start()
	} else {
		s.notify(Event{Kind: EventGenerated, Step: sc.MaxDepthIndex()})
	}
	return nil
}

// Load reads records with load and renders them.
func (s *Session) Load(ctx context.Context, load func(context.Context) ([]record.Record, error)) error {
	recs, err := load(ctx)
	if err != nil {
		return err
	}
	return s.Render(ctx, recs)
}

func (s *Session) stopLocked() {
	if s.seq != nil {
		s.seq.Cancel()
		s.seq = nil
	}
	if s.stopCtx != nil {
		s.stopCtx()
		s.stopCtx = nil
	}
}

// clear drops the current scene. Renders are all-or-nothing, so a failed
// render leaves nothing on screen.
func (s *Session) clear() {
	s.mu.Lock()
	s.stopLocked()
	s.tree, s.scene = nil, nil
	s.generated, s.pinned = false, false
	s.mu.Unlock()
}

// Stop cancels a running reveal.
func (s *Session) Stop() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

func (s *Session) stepFunc(sc *scene.Scene, tm scene.Timing) func(sequencer.Step) {
	return func(step sequencer.Step) {
		s.mu.Lock()
		if s.scene != sc {
			s.mu.Unlock()
			return
		}
		sc.Reveal(step.Index, tm)
		kind := EventRevealed
		if step.Final {
			s.generated = true
			kind = EventGenerated
		}
		s.mu.Unlock()

		metrics.RevealSteps.Inc()
		debug.Log("session: reveal step %d final=%v", step.Index, step.Final)
		s.notify(Event{Kind: kind, Step: step.Index})
	}
}

func (s *Session) notify(ev Event) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// Scene returns the current scene, or nil before the first Render.
func (s *Session) Scene() *scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// Tree returns the current hierarchy, or nil before the first Render.
func (s *Session) Tree() *hierarchy.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Generated reports whether the reveal has finished.
func (s *Session) Generated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generated
}

// Pinned reports whether a click has dimmed the tree.
func (s *Session) Pinned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinned
}

// Options returns a copy of the session options.
func (s *Session) Options() config.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// SetOption changes a named option. It takes effect on the next Render.
// Unknown names are logged and ignored.
func (s *Session) SetOption(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Set(name, value)
}

// View runs fn with the scene while holding the session lock, so renderers
// see a consistent set of element styles.
func (s *Session) View(fn func(*scene.Scene)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scene != nil {
		fn(s.scene)
	}
}
