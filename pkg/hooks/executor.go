package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/vanderheijden86/radialtree/pkg/debug"
)

// HookResult records one hook run.
type HookResult struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the configured hooks for one export.
type Executor struct {
	config  *Config
	context ExportContext
	results []HookResult
}

// NewExecutor creates an executor for the given export.
func NewExecutor(config *Config, ctx ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, context: ctx}
}

// RunPreExport runs the applicable pre-export hooks in order. The first
// failing hook whose policy is Fail stops the run and cancels the export.
func (e *Executor) RunPreExport() error {
	for _, h := range e.hooks(PreExport) {
		res := e.run(h, PreExport)
		if !res.Success && h.OnError != Continue {
			return fmt.Errorf("pre-export hook %q failed: %w", h.Name, res.Error)
		}
	}
	return nil
}

// RunPostExport runs every applicable post-export hook. The first failure
// of a Fail hook is returned after all of them ran.
func (e *Executor) RunPostExport() error {
	var first error
	for _, h := range e.hooks(PostExport) {
		res := e.run(h, PostExport)
		if !res.Success && h.OnError == Fail && first == nil {
			first = fmt.Errorf("post-export hook %q failed: %w", h.Name, res.Error)
		}
	}
	return first
}

// hooks returns the hooks of phase that apply to the export format.
func (e *Executor) hooks(phase HookPhase) []Hook {
	var out []Hook
	for _, h := range e.config.Hooks.forPhase(phase) {
		if h.Applies(e.context.ExportFormat) {
			out = append(out, h)
		}
	}
	return out
}

// Results returns the hook runs so far.
func (e *Executor) Results() []HookResult {
	return e.results
}

// Summary returns a one-line description of the hook runs.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return "no hooks run"
	}
	var ok, failed int
	var names []string
	for _, r := range e.results {
		if r.Success {
			ok++
		} else {
			failed++
			names = append(names, r.Hook.Name)
		}
	}
	s := fmt.Sprintf("hooks: %d succeeded, %d failed", ok, failed)
	if failed > 0 {
		s += " (" + strings.Join(names, ", ") + ")"
	}
	return s
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

func (e *Executor) run(h Hook, phase HookPhase) HookResult {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := shellCommand(ctx, h.Command)
	cmd.Env = append(os.Environ(), e.context.ToEnv()...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	// Children of the shell may hold the pipes open after a timeout kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := HookResult{
		Hook:     h,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %v: %w", timeout, err)
		}
		res.Error = err
	}
	debug.Log("hooks: %s (%s) ok=%v in %v", h.Name, phase, res.Success, res.Duration)
	e.results = append(e.results, res)
	return res
}

// RunHooks loads .rt/hooks.yaml from projectDir and returns an executor for
// the export, or nil when hooks are disabled or none are configured.
func RunHooks(projectDir string, ctx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	loader := NewLoader(WithProjectDir(projectDir))
	if err := loader.Load(); err != nil {
		return nil, err
	}
	for _, w := range loader.Warnings() {
		debug.Log("hooks: %s", w)
	}
	if !loader.HasHooks() {
		return nil, nil
	}
	return NewExecutor(loader.Config(), ctx), nil
}
