// Package watcher follows a CSV data file on disk so the tree can be redrawn
// after it is edited. Events come from fsnotify on the parent directory, or
// from stat polling on network filesystems and when RT_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/radialtree/pkg/debug"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrPermission     = errors.New("permission denied")
)

// Op tells what happened to the data file.
type Op int

const (
	// Modified means the file was written or replaced.
	Modified Op = iota
	// Removed means the file no longer exists.
	Removed
	// Failed means the watch itself reported an error.
	Failed
)

func (o Op) String() string {
	switch o {
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event describes one settled change of the data file.
type Event struct {
	Op      Op
	Path    string
	Size    int64
	ModTime time.Time
	Err     error
}

// Mode is the mechanism delivering changes.
type Mode int

const (
	ModeNotify Mode = iota
	ModePoll
)

func (m Mode) String() string {
	if m == ModePoll {
		return "poll"
	}
	return "notify"
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithForcePoll selects polling even where fsnotify works.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher reports changes of one data file as Events.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool

	mu        sync.RWMutex
	mode      Mode
	fsType    FilesystemType
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	cancel    context.CancelFunc
	started   bool
	last      fileState

	events chan Event
}

// fileState is the part of a stat result that decides whether the file changed.
type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileState{}, nil
		}
		if os.IsPermission(err) {
			return fileState{}, ErrPermission
		}
		return fileState{}, err
	}
	return fileState{exists: true, size: info.Size(), modTime: info.ModTime()}, nil
}

func (s fileState) differs(o fileState) bool {
	return s.exists != o.exists || s.size != o.size || !s.modTime.Equal(o.modTime)
}

// NewWatcher creates a watcher for the data file at path.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		events:       make(chan Event, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching. A file that does not exist yet is reported once it
// appears.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	st, err := statFile(w.path)
	if err != nil {
		return err
	}
	w.last = st

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.fsType = DetectFilesystemType(w.path)
	w.mode = w.chooseMode()
	debug.Log("watcher: %s on %s filesystem, %s mode", w.path, w.fsType, w.mode)

	if w.mode == ModeNotify {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			// The directory survives editors that save by rename.
			err = fsw.Add(filepath.Dir(w.path))
			if err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify unavailable (%v), polling", err)
			w.mode = ModePoll
		} else {
			w.fsWatcher = fsw
			go w.runNotify(ctx, fsw)
		}
	}
	if w.mode == ModePoll {
		go w.runPoll(ctx)
	}
	w.started = true
	return nil
}

func (w *Watcher) chooseMode() Mode {
	if w.forcePoll || envBool("RT_FORCE_POLL") || isRemoteFilesystem(w.fsType) {
		return ModePoll
	}
	return ModeNotify
}

// Stop ends the watch. Pending events are dropped; Wait keeps honouring its
// context.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// Events returns the channel of settled changes. It holds at most one
// undelivered event; a newer change replaces an older one.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Wait blocks until the next event or until ctx is done.
func (w *Watcher) Wait(ctx context.Context) (Event, error) {
	select {
	case ev := <-w.events:
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string { return w.path }

// Mode returns the active mechanism. It is meaningful after Start.
func (w *Watcher) Mode() Mode {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mode
}

// IsStarted reports whether the watch is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// FilesystemType returns the classification of the watched path.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the stat interval used in polling mode.
func (w *Watcher) PollInterval() time.Duration { return w.pollInterval }

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) runNotify(ctx context.Context, fsw *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.debouncer.Trigger(w.settle)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.emit(Event{Op: Failed, Path: w.path, Err: err})
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st, err := statFile(w.path)
			if err != nil {
				w.emit(Event{Op: Failed, Path: w.path, Err: err})
				continue
			}
			w.mu.RLock()
			changed := st.differs(w.last)
			w.mu.RUnlock()
			if changed {
				w.debouncer.Trigger(w.settle)
			}
		}
	}
}

// settle runs once a burst of raw notifications has gone quiet. It compares
// the file with the last reported state, so a save that leaves the file
// untouched, or a rename-over that restores it, reports nothing.
func (w *Watcher) settle() {
	st, err := statFile(w.path)
	if err != nil {
		w.emit(Event{Op: Failed, Path: w.path, Err: err})
		return
	}

	w.mu.Lock()
	if !w.started || !st.differs(w.last) {
		w.mu.Unlock()
		return
	}
	hadFile := w.last.exists
	w.last = st
	w.mu.Unlock()

	switch {
	case st.exists:
		w.emit(Event{Op: Modified, Path: w.path, Size: st.size, ModTime: st.modTime})
	case hadFile:
		w.emit(Event{Op: Removed, Path: w.path})
	}
}

func (w *Watcher) emit(ev Event) {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if !started {
		return
	}
	debug.Log("watcher: %s %s", w.path, ev.Op)
	for {
		select {
		case w.events <- ev:
			return
		default:
		}
		// Replace the undelivered event.
		select {
		case <-w.events:
		default:
		}
	}
}
