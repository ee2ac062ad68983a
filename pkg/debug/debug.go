// Package debug provides conditional debug logging for rt.
//
// RT_DEBUG=1 logs everything to stderr. A comma separated list logs only
// the named components, matched against the text before the first colon of
// each message:
//
//	RT_DEBUG=watcher,hooks rt -watch animals.csv
//
// With RT_DEBUG unset every function is a no-op.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	mu         sync.RWMutex
	enabled    bool
	components map[string]bool // nil logs every component
	logger     = newLogger(os.Stderr)
)

func init() {
	configure(os.Getenv("RT_DEBUG"))
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[RT_DEBUG] ", log.Ltime|log.Lmicroseconds)
}

// configure applies an RT_DEBUG value.
func configure(v string) {
	mu.Lock()
	defer mu.Unlock()
	v = strings.TrimSpace(v)
	enabled = v != "" && v != "0"
	components = nil
	switch strings.ToLower(v) {
	case "", "0", "1", "true", "all":
		return
	}
	components = map[string]bool{}
	for _, c := range strings.Split(v, ",") {
		if c = strings.TrimSpace(c); c != "" {
			components[strings.ToLower(c)] = true
		}
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled turns logging of every component on or off.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	components = nil
}

// SetOutput redirects debug output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func component(msg string) string {
	if i := strings.IndexByte(msg, ':'); i > 0 && !strings.ContainsAny(msg[:i], " \t") {
		return strings.ToLower(msg[:i])
	}
	return ""
}

func printf(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if components != nil && !components[component(strings.TrimLeft(msg, "-<> "))] {
		return
	}
	logger.Print(msg)
}

// Log writes a printf-style message.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	printf(format, args...)
}

// LogTiming reports how long name took.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	printf("%s took %v", name, d)
}

// LogEnterExit logs entry now and exit with the elapsed time when the
// returned function runs.
//
//	defer debug.LogEnterExit("session: render")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	printf("-> %s", name)
	start := time.Now()
	return func() {
		printf("<- %s (%v)", name, time.Since(start))
	}
}
