// Package hooks runs user commands around tree exports.
//
// Hooks live in .rt/hooks.yaml of the working directory:
//
//	hooks:
//	  pre-export:
//	    - name: lint
//	      command: csvlint data.csv
//	  post-export:
//	    - name: publish
//	      command: rsync "$RT_EXPORT_PATH" web:/srv/trees/
//	      formats: [html, svg]
//	      timeout: 2m
//
// Every export file runs the pre-export hooks before it is written and the
// post-export hooks after, with the export described in RT_* variables.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HookPhase is when a hook runs relative to writing the file.
type HookPhase string

const (
	PreExport  HookPhase = "pre-export"
	PostExport HookPhase = "post-export"
)

// ErrorPolicy decides whether a failing hook fails the export.
type ErrorPolicy string

const (
	// Fail is the pre-export default: the file is not written.
	Fail ErrorPolicy = "fail"
	// Continue is the post-export default: the failure is only recorded.
	Continue ErrorPolicy = "continue"
)

// DefaultTimeout bounds a hook without its own timeout.
const DefaultTimeout = 30 * time.Second

// ConfigDir is the per-project directory holding hooks.yaml.
const ConfigDir = ".rt"

// Hook is one configured command.
type Hook struct {
	Name    string
	Command string
	Timeout time.Duration
	Env     map[string]string
	OnError ErrorPolicy
	// Formats limits the hook to these export formats; empty means all.
	Formats []string
}

// Applies reports whether h runs for an export in format.
func (h Hook) Applies(format string) bool {
	return len(h.Formats) == 0 || slices.Contains(h.Formats, strings.ToLower(format))
}

// UnmarshalYAML accepts timeouts as Go durations ("90s", "2m") or bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout"`
		Env     map[string]string `yaml:"env"`
		OnError string            `yaml:"on_error"`
		Formats []string          `yaml:"formats"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	timeout, err := parseTimeout(raw.Timeout)
	if err != nil {
		return fmt.Errorf("hook %q: %w", raw.Name, err)
	}
	*h = Hook{
		Name:    raw.Name,
		Command: raw.Command,
		Timeout: timeout,
		Env:     raw.Env,
		OnError: ErrorPolicy(strings.ToLower(raw.OnError)),
	}
	for _, f := range raw.Formats {
		h.Formats = append(h.Formats, strings.ToLower(strings.TrimPrefix(f, ".")))
	}
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Config is the content of hooks.yaml.
type Config struct {
	Hooks HooksByPhase `yaml:"hooks"`
}

// HooksByPhase groups hooks by phase, in file order.
type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export"`
	PostExport []Hook `yaml:"post-export"`
}

// ExportContext describes the export to the hook commands.
type ExportContext struct {
	ExportPath   string    // RT_EXPORT_PATH
	ExportFormat string    // RT_EXPORT_FORMAT: svg, png, html, json or sqlite
	NodeCount    int       // RT_NODE_COUNT
	MaxDepth     int       // RT_MAX_DEPTH: deepest depth index
	Timestamp    time.Time // RT_TIMESTAMP, RFC3339
}

// ToEnv returns the RT_* variables for c.
func (c ExportContext) ToEnv() []string {
	return []string{
		"RT_EXPORT_PATH=" + c.ExportPath,
		"RT_EXPORT_FORMAT=" + c.ExportFormat,
		"RT_NODE_COUNT=" + strconv.Itoa(c.NodeCount),
		"RT_MAX_DEPTH=" + strconv.Itoa(c.MaxDepth),
		"RT_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Loader reads hooks.yaml.
type Loader struct {
	projectDir string
	config     *Config
	warnings   []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithProjectDir reads ConfigDir under dir instead of the working directory.
func WithProjectDir(dir string) LoaderOption {
	return func(l *Loader) { l.projectDir = dir }
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.projectDir == "" {
		l.projectDir, _ = os.Getwd()
	}
	return l
}

// Path returns the hooks.yaml location.
func (l *Loader) Path() string {
	return filepath.Join(l.projectDir, ConfigDir, "hooks.yaml")
}

// Load reads the file. A missing file configures no hooks.
func (l *Loader) Load() error {
	l.config, l.warnings = &Config{}, nil
	data, err := os.ReadFile(l.Path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", l.Path(), err)
	}
	cfg.Hooks.PreExport = l.normalize(cfg.Hooks.PreExport, PreExport, Fail)
	cfg.Hooks.PostExport = l.normalize(cfg.Hooks.PostExport, PostExport, Continue)
	l.config = &cfg
	return nil
}

// normalize fills defaults and drops hooks without a command.
func (l *Loader) normalize(hooks []Hook, phase HookPhase, policy ErrorPolicy) []Hook {
	var out []Hook
	for i, h := range hooks {
		if strings.TrimSpace(h.Command) == "" {
			l.warnings = append(l.warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		if h.Timeout <= 0 {
			h.Timeout = DefaultTimeout
		}
		switch h.OnError {
		case "":
			h.OnError = policy
		case Fail, Continue:
		default:
			l.warnings = append(l.warnings, fmt.Sprintf("%s hook %q: unknown on_error %q, using %q", phase, h.Name, h.OnError, policy))
			h.OnError = policy
		}
		out = append(out, h)
	}
	return out
}

// Config returns the loaded configuration, empty before Load.
func (l *Loader) Config() *Config {
	if l.config == nil {
		return &Config{}
	}
	return l.config
}

// HasHooks reports whether any hook is configured.
func (l *Loader) HasHooks() bool {
	c := l.Config()
	return len(c.Hooks.PreExport) > 0 || len(c.Hooks.PostExport) > 0
}

// GetHooks returns the hooks of phase.
func (l *Loader) GetHooks(phase HookPhase) []Hook {
	return l.Config().Hooks.forPhase(phase)
}

func (h HooksByPhase) forPhase(phase HookPhase) []Hook {
	switch phase {
	case PreExport:
		return h.PreExport
	case PostExport:
		return h.PostExport
	}
	return nil
}

// Warnings returns problems found by the last Load.
func (l *Loader) Warnings() []string {
	return l.warnings
}
