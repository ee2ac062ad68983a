// Package metrics records where the time of a render goes and how the drawn
// tree is used afterwards.
//
// Pipeline stages (load, stratify, layout, scene build, export, terminal
// draw) are timed with Stage; reveal steps, route highlights and reloads are
// counted with Counter. Collection is on unless RT_METRICS=0.
//
//	defer metrics.Timer(metrics.Layout)()
package metrics

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("RT_METRICS") != "0")
}

// Enabled reports whether collection is on.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns collection on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// Stage accumulates durations of one pipeline stage.
type Stage struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	min   atomic.Int64 // 0 until the first sample
}

// Record adds one duration.
func (s *Stage) Record(d time.Duration) {
	if !enabled.Load() {
		return
	}
	ns := d.Nanoseconds()
	s.count.Add(1)
	s.total.Add(ns)
	for old := s.max.Load(); ns > old && !s.max.CompareAndSwap(old, ns); old = s.max.Load() {
	}
	for old := s.min.Load(); (old == 0 || ns < old) && !s.min.CompareAndSwap(old, ns); old = s.min.Load() {
	}
}

// Name returns the stage name.
func (s *Stage) Name() string { return s.name }

// Count returns the number of samples.
func (s *Stage) Count() int64 { return s.count.Load() }

// Stats returns a snapshot in milliseconds.
func (s *Stage) Stats() StageStats {
	n := s.count.Load()
	total := s.total.Load()
	st := StageStats{
		Name:    s.name,
		Count:   n,
		TotalMs: ms(total),
		MaxMs:   ms(s.max.Load()),
		MinMs:   ms(s.min.Load()),
	}
	if n > 0 {
		st.AvgMs = ms(total / n)
	}
	return st
}

func (s *Stage) reset() {
	s.count.Store(0)
	s.total.Store(0)
	s.max.Store(0)
	s.min.Store(0)
}

func ms(ns int64) float64 { return float64(ns) / 1e6 }

// StageStats is a snapshot of a Stage.
type StageStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts timing s and returns the function that stops it.
func Timer(s *Stage) func() {
	if !enabled.Load() || s == nil {
		return func() {}
	}
	start := time.Now()
	return func() { s.Record(time.Since(start)) }
}

// Counter counts occurrences of an event.
type Counter struct {
	name string
	n    atomic.Int64
}

// Inc adds one.
func (c *Counter) Inc() {
	if enabled.Load() {
		c.n.Add(1)
	}
}

// Name returns the counter name.
func (c *Counter) Name() string { return c.name }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.n.Load() }

// Pipeline stages.
var (
	DataLoad   = &Stage{name: "data_load"}
	Stratify   = &Stage{name: "stratify"}
	Layout     = &Stage{name: "layout"}
	SceneBuild = &Stage{name: "scene_build"}
	Export     = &Stage{name: "export"}
	UIRender   = &Stage{name: "ui_render"}
)

// Usage counters.
var (
	RevealSteps = &Counter{name: "reveal_steps"}
	Highlights  = &Counter{name: "highlights"}
	Reloads     = &Counter{name: "reloads"}
)

// Stages returns every pipeline stage in pipeline order.
func Stages() []*Stage {
	return []*Stage{DataLoad, Stratify, Layout, SceneBuild, Export, UIRender}
}

// Counters returns every usage counter.
func Counters() []*Counter {
	return []*Counter{RevealSteps, Highlights, Reloads}
}

// ResetAll clears every stage and counter.
func ResetAll() {
	for _, s := range Stages() {
		s.reset()
	}
	for _, c := range Counters() {
		c.n.Store(0)
	}
}

// Report is a snapshot of everything recorded so far.
type Report struct {
	Stages   []StageStats     `json:"stages"`
	Counters map[string]int64 `json:"counters"`
}

// Snapshot returns the stages that have samples and the non-zero counters.
func Snapshot() Report {
	r := Report{Counters: map[string]int64{}}
	for _, s := range Stages() {
		if s.Count() > 0 {
			r.Stages = append(r.Stages, s.Stats())
		}
	}
	for _, c := range Counters() {
		if v := c.Value(); v > 0 {
			r.Counters[c.name] = v
		}
	}
	return r
}

// WriteReport prints the snapshot as an aligned table.
func WriteReport(w io.Writer) error {
	r := Snapshot()
	for _, s := range r.Stages {
		if _, err := fmt.Fprintf(w, "%-12s n=%-4d avg=%.2fms max=%.2fms total=%.2fms\n",
			s.Name, s.Count, s.AvgMs, s.MaxMs, s.TotalMs); err != nil {
			return err
		}
	}
	for _, c := range Counters() {
		if v, ok := r.Counters[c.name]; ok {
			if _, err := fmt.Fprintf(w, "%-12s %d\n", c.name, v); err != nil {
				return err
			}
		}
	}
	return nil
}
