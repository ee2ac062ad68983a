package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func capture(t *testing.T, setting string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	configure(setting)
	t.Cleanup(func() {
		configure("")
		SetOutput(&bytes.Buffer{})
	})
	return &buf
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		value   string
		enabled bool
		all     bool
	}{
		{"", false, true},
		{"0", false, true},
		{"1", true, true},
		{"ALL", true, true},
		{"watcher, Hooks", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			capture(t, tt.value)
			if Enabled() != tt.enabled {
				t.Errorf("Enabled() = %v", Enabled())
			}
			if (components == nil) != tt.all {
				t.Errorf("components = %v", components)
			}
		})
	}
}

func TestComponentFilter(t *testing.T) {
	buf := capture(t, "watcher,hooks")
	Log("watcher: %s changed", "a.csv")
	Log("session: %d nodes", 3)
	Log("no component here")
	LogTiming("hooks: pre-export", time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "[RT_DEBUG]") || !strings.Contains(out, "watcher: a.csv changed") {
		t.Errorf("missing watcher line:\n%s", out)
	}
	if !strings.Contains(out, "hooks: pre-export took 1ms") {
		t.Errorf("missing timing line:\n%s", out)
	}
	if strings.Contains(out, "session") || strings.Contains(out, "no component") {
		t.Errorf("filtered lines leaked:\n%s", out)
	}
}

func TestLogEnterExit(t *testing.T) {
	buf := capture(t, "session")
	LogEnterExit("session: render")()
	out := buf.String()
	if !strings.Contains(out, "-> session: render") || !strings.Contains(out, "<- session: render (") {
		t.Errorf("enter/exit lines:\n%s", out)
	}
}

func TestDisabledIsSilent(t *testing.T) {
	buf := capture(t, "")
	Log("watcher: x")
	LogEnterExit("session: y")()
	if buf.Len() != 0 {
		t.Errorf("wrote while disabled: %q", buf.String())
	}

	SetEnabled(true)
	Log("anything")
	if !strings.Contains(buf.String(), "anything") {
		t.Error("SetEnabled(true) should log every component")
	}
}
