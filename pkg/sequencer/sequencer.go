// Package sequencer drives the ring-by-ring reveal of a rendered tree.
//
// A Sequencer is a finite state machine over depth index. Each step fires
// after a fixed delay; step k reveals depth k (and the links into it), and
// the machine becomes Done only after the step for the deepest ring has run.
// Cancel stops an in-flight sequence so a new render never races stale timers.
package sequencer

import (
	"sync"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer.
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules on the runtime timer heap.
type RealClock struct{}

// AfterFunc implements Clock with time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State is the lifecycle of a Sequencer.
type State int

const (
	Idle State = iota
	Running
	Done
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Step is delivered to the step callback.
type Step struct {
	Index int  // depth index being revealed
	Final bool // true for the last step; the sequencer is Done once it returns
}

// Sequencer reveals depth indexes 0..MaxDepth, one per delay.
type Sequencer struct {
	mu       sync.Mutex
	clock    Clock
	delay    time.Duration
	maxDepth int
	onStep   func(Step)

	state State
	next  int
	gen   uint64
	timer Timer
}

// New returns an idle sequencer. onStep runs on the clock's goroutine,
// without the sequencer's lock held.
func New(clock Clock, delay time.Duration, maxDepth int, onStep func(Step)) *Sequencer {
	if clock == nil {
		clock = RealClock{}
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &Sequencer{
		clock:    clock,
		delay:    delay,
		maxDepth: maxDepth,
		onStep:   onStep,
	}
}

// Start schedules step 0. Starting a running or finished sequencer is a no-op.
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return
	}
	s.state = Running
	s.scheduleLocked()
}

// Cancel stops the sequence. Steps already delivered are not undone.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running && s.state != Idle {
		return
	}
	s.state = Cancelled
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Next returns the depth index the next step will reveal.
func (s *Sequencer) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// MaxDepth returns the final depth index.
func (s *Sequencer) MaxDepth() int { return s.maxDepth }

func (s *Sequencer) scheduleLocked() {
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
}

func (s *Sequencer) fire(gen uint64) {
	s.mu.Lock()
	if s.state != Running || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	step := Step{Index: s.next, Final: s.next >= s.maxDepth}
	s.mu.Unlock()

	if s.onStep != nil {
		s.onStep(step)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running || gen != s.gen {
		return
	}
	if step.Final {
		s.state = Done
		return
	}
	s.next++
	s.scheduleLocked()
}
