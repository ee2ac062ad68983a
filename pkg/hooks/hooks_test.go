package hooks

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook commands use sh")
	}
}

func writeHooksConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ConfigDir), 0755); err != nil {
		t.Fatalf("failed to create %s dir: %v", ConfigDir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigDir, "hooks.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write hooks.yaml: %v", err)
	}
	return dir
}

func TestExportContextToEnv(t *testing.T) {
	ctx := ExportContext{
		ExportPath:   "/tmp/tree.svg",
		ExportFormat: "svg",
		NodeCount:    42,
		MaxDepth:     3,
		Timestamp:    time.Date(2025, 11, 30, 10, 30, 0, 0, time.UTC),
	}

	want := []string{
		"RT_EXPORT_PATH=/tmp/tree.svg",
		"RT_EXPORT_FORMAT=svg",
		"RT_NODE_COUNT=42",
		"RT_MAX_DEPTH=3",
		"RT_TIMESTAMP=2025-11-30T10:30:00Z",
	}
	got := ctx.ToEnv()
	if len(got) != len(want) {
		t.Fatalf("ToEnv() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("env[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoaderNoConfig(t *testing.T) {
	loader := NewLoader(WithProjectDir(t.TempDir()))
	if err := loader.Load(); err != nil {
		t.Fatalf("expected no error for missing config, got: %v", err)
	}
	if loader.HasHooks() {
		t.Error("expected no hooks when config is missing")
	}
}

func TestLoaderWithValidConfig(t *testing.T) {
	dir := writeHooksConfig(t, `
hooks:
  pre-export:
    - name: validate
      command: echo "validating"
      timeout: 5s
  post-export:
    - name: notify
      command: echo "done"
      timeout: 10
      env:
        TARGET: ${HOME}/out
    - command: "  "
`)

	loader := NewLoader(WithProjectDir(dir))
	if err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loader.HasHooks() {
		t.Fatal("expected hooks")
	}

	pre := loader.GetHooks(PreExport)
	if len(pre) != 1 || pre[0].Timeout != 5*time.Second || pre[0].OnError != Fail {
		t.Errorf("pre-export = %+v", pre)
	}
	post := loader.GetHooks(PostExport)
	if len(post) != 1 {
		t.Fatalf("post-export = %+v", post)
	}
	if post[0].Timeout != 10*time.Second {
		t.Errorf("bare number timeout = %v, want 10s", post[0].Timeout)
	}
	if post[0].OnError != Continue {
		t.Errorf("post on_error = %q, want continue", post[0].OnError)
	}
	if post[0].Env["TARGET"] != "${HOME}/out" {
		t.Errorf("env = %v", post[0].Env)
	}
	if len(loader.Warnings()) != 1 || !strings.Contains(loader.Warnings()[0], "empty command") {
		t.Errorf("warnings = %v", loader.Warnings())
	}
	if loader.GetHooks("unknown") != nil {
		t.Error("unknown phase should have no hooks")
	}
}

func TestLoaderPolicyAndFormats(t *testing.T) {
	dir := writeHooksConfig(t, `
hooks:
  post-export:
    - name: publish
      command: echo hi
      on_error: Sometimes
      formats: [".HTML", svg]
`)
	loader := NewLoader(WithProjectDir(dir))
	if err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := loader.GetHooks(PostExport)[0]
	if h.OnError != Continue {
		t.Errorf("unknown policy should fall back to continue, got %q", h.OnError)
	}
	if len(loader.Warnings()) != 1 || !strings.Contains(loader.Warnings()[0], "on_error") {
		t.Errorf("warnings = %v", loader.Warnings())
	}
	for format, want := range map[string]bool{"html": true, "SVG": true, "png": false} {
		if got := h.Applies(format); got != want {
			t.Errorf("Applies(%q) = %v, want %v", format, got, want)
		}
	}
	if !(Hook{}).Applies("png") {
		t.Error("a hook without formats applies to every format")
	}
}

func TestExecutorSkipsOtherFormats(t *testing.T) {
	skipOnWindows(t)
	cfg := &Config{Hooks: HooksByPhase{
		PreExport: []Hook{
			{Name: "png-only", Command: "exit 1", OnError: Fail, Formats: []string{"png"}},
			{Name: "all", Command: "true", OnError: Fail},
		},
	}}
	exec := NewExecutor(cfg, ExportContext{ExportFormat: "svg"})
	if err := exec.RunPreExport(); err != nil {
		t.Fatalf("png-only hook ran for svg: %v", err)
	}
	if len(exec.Results()) != 1 || exec.Results()[0].Hook.Name != "all" {
		t.Errorf("results = %+v", exec.Results())
	}
}

func TestLoaderDefaults(t *testing.T) {
	dir := writeHooksConfig(t, "hooks:\n  pre-export:\n    - command: \"true\"\n")
	loader := NewLoader(WithProjectDir(dir))
	if err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := loader.GetHooks(PreExport)[0]
	if h.Name != "pre-export-1" {
		t.Errorf("name = %q", h.Name)
	}
	if h.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v", h.Timeout)
	}
}

func TestLoaderInvalidYAML(t *testing.T) {
	dir := writeHooksConfig(t, "hooks: [not: valid")
	if err := NewLoader(WithProjectDir(dir)).Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestHookInvalidTimeout(t *testing.T) {
	var h Hook
	if err := yaml.Unmarshal([]byte("command: x\ntimeout: soon\n"), &h); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestExecutorRunsWithExportEnv(t *testing.T) {
	skipOnWindows(t)
	cfg := &Config{Hooks: HooksByPhase{
		PreExport: []Hook{{
			Name:    "env",
			Command: "echo $RT_EXPORT_PATH $RT_NODE_COUNT $EXTRA",
			Timeout: 5 * time.Second,
			Env:     map[string]string{"EXTRA": "x"},
			OnError: Fail,
		}},
	}}
	exec := NewExecutor(cfg, ExportContext{ExportPath: "/tmp/t.png", NodeCount: 7})
	if err := exec.RunPreExport(); err != nil {
		t.Fatalf("RunPreExport: %v", err)
	}
	res := exec.Results()
	if len(res) != 1 || !res[0].Success {
		t.Fatalf("results = %+v", res)
	}
	if res[0].Stdout != "/tmp/t.png 7 x" {
		t.Errorf("stdout = %q", res[0].Stdout)
	}
	if res[0].Phase != PreExport {
		t.Errorf("phase = %q", res[0].Phase)
	}
}

func TestExecutorPreExportStopsOnFailure(t *testing.T) {
	skipOnWindows(t)
	cfg := &Config{Hooks: HooksByPhase{
		PreExport: []Hook{
			{Name: "tolerated", Command: "exit 1", OnError: Continue},
			{Name: "veto", Command: "echo nope >&2; exit 2", OnError: Fail},
			{Name: "never", Command: "true", OnError: Fail},
		},
	}}
	exec := NewExecutor(cfg, ExportContext{})
	err := exec.RunPreExport()
	if err == nil || !strings.Contains(err.Error(), "veto") {
		t.Fatalf("expected veto failure, got %v", err)
	}
	res := exec.Results()
	if len(res) != 2 {
		t.Fatalf("ran %d hooks, want 2", len(res))
	}
	if res[1].Stderr != "nope" {
		t.Errorf("stderr = %q", res[1].Stderr)
	}
	if got := exec.Summary(); !strings.Contains(got, "0 succeeded") || !strings.Contains(got, "2 failed") {
		t.Errorf("summary = %q", got)
	}
}

func TestExecutorPostExportRunsAll(t *testing.T) {
	skipOnWindows(t)
	cfg := &Config{Hooks: HooksByPhase{
		PostExport: []Hook{
			{Name: "first", Command: "exit 1", OnError: Fail},
			{Name: "second", Command: "true", OnError: Continue},
		},
	}}
	exec := NewExecutor(cfg, ExportContext{})
	err := exec.RunPostExport()
	if err == nil || !strings.Contains(err.Error(), "first") {
		t.Fatalf("expected first failure, got %v", err)
	}
	if len(exec.Results()) != 2 {
		t.Errorf("ran %d hooks, want 2", len(exec.Results()))
	}
	if got := exec.Summary(); !strings.Contains(got, "1 succeeded") || !strings.Contains(got, "1 failed") {
		t.Errorf("summary = %q", got)
	}
}

func TestExecutorTimeout(t *testing.T) {
	skipOnWindows(t)
	cfg := &Config{Hooks: HooksByPhase{
		PostExport: []Hook{{Name: "slow", Command: "sleep 5", Timeout: 100 * time.Millisecond, OnError: Continue}},
	}}
	exec := NewExecutor(cfg, ExportContext{})
	start := time.Now()
	if err := exec.RunPostExport(); err != nil {
		t.Fatalf("continue hook should not fail the export: %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout not enforced")
	}
	res := exec.Results()[0]
	if res.Success || res.Error == nil || !strings.Contains(res.Error.Error(), "timed out") {
		t.Errorf("result = %+v", res)
	}
}

func TestExecutorSummaryEmpty(t *testing.T) {
	if got := NewExecutor(nil, ExportContext{}).Summary(); got != "no hooks run" {
		t.Errorf("summary = %q", got)
	}
}

func TestRunHooks(t *testing.T) {
	dir := writeHooksConfig(t, "hooks:\n  post-export:\n    - command: \"true\"\n")

	exec, err := RunHooks(dir, ExportContext{}, true)
	if err != nil || exec != nil {
		t.Errorf("noHooks: exec=%v err=%v", exec, err)
	}

	exec, err = RunHooks(t.TempDir(), ExportContext{}, false)
	if err != nil || exec != nil {
		t.Errorf("no config: exec=%v err=%v", exec, err)
	}

	exec, err = RunHooks(dir, ExportContext{}, false)
	if err != nil || exec == nil {
		t.Fatalf("configured: exec=%v err=%v", exec, err)
	}
}
