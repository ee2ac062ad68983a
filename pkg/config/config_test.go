package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.EnableTransitions {
		t.Error("expected transitions enabled by default")
	}
	if opts.NodeColour != "#173C82" {
		t.Errorf("expected node colour #173C82, got %q", opts.NodeColour)
	}
	if opts.BranchOpacity != 0.5 {
		t.Errorf("expected branch opacity 0.5, got %v", opts.BranchOpacity)
	}
	if opts.TreeOpacityOnClick != 0.2 {
		t.Errorf("expected click opacity 0.2, got %v", opts.TreeOpacityOnClick)
	}
	if opts.DataBoxID != "node-data" {
		t.Errorf("expected data box node-data, got %q", opts.DataBoxID)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestOptions_GetSet(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name  string
		value string
	}{
		{"enable_transitions", "false"},
		{"transition_multiplier", "2.5"},
		{"text_size", "6px"},
		{"node_colour", "#000000"},
		{"node_radius", "3"},
		{"branch_thickness", "0.5"},
		{"tree_opacity_on_click", "0.1"},
		{"data_box_id", "details"},
		{"width", "800"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := opts.Set(tt.name, tt.value); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, ok := opts.Get(tt.name)
			if !ok {
				t.Fatalf("Get(%q) not found", tt.name)
			}
			if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.name, got, tt.value)
			}
		})
	}

	if opts.EnableTransitions {
		t.Error("struct field not updated through Set")
	}
}

func TestOptions_UnknownNameIsNoop(t *testing.T) {
	opts := DefaultOptions()
	before := opts

	if err := opts.Set("no_such_option", "1"); err != nil {
		t.Errorf("unknown set should not error, got %v", err)
	}
	if opts != before {
		t.Error("unknown set changed options")
	}
	if _, ok := opts.Get("no_such_option"); ok {
		t.Error("unknown get should report not found")
	}
}

func TestOptions_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"transition_multiplier", "0"},
		{"transition_multiplier", "-1"},
		{"node_radius", "big"},
		{"enable_transitions", "maybe"},
		{"width", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			opts := DefaultOptions()
			before := opts
			err := opts.Set(tt.name, tt.value)
			if !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("expected ErrInvalidValue, got %v", err)
			}
			if opts != before {
				t.Error("invalid set changed options")
			}
		})
	}
}

func TestNames_CoverAllFields(t *testing.T) {
	names := Names()
	if len(names) != 19 {
		t.Errorf("expected 19 options, got %d: %v", len(names), names)
	}
	for _, n := range names {
		if !Known(n) {
			t.Errorf("%q listed but not known", n)
		}
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	opts, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if opts != DefaultOptions() {
		t.Error("expected default options")
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
enable_transitions: false
node_colour: "#112233"
r_multiplier: 1.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if opts.EnableTransitions {
		t.Error("expected transitions disabled")
	}
	if opts.NodeColour != "#112233" {
		t.Errorf("node colour = %q", opts.NodeColour)
	}
	if opts.RMultiplier != 1.5 {
		t.Errorf("r_multiplier = %v", opts.RMultiplier)
	}
	if opts.BranchColour != "#5F92F2" {
		t.Errorf("unset key lost its default: %q", opts.BranchColour)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("width: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFrom_InvalidMultiplier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("transition_multiplier: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFrom(path)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	opts := DefaultOptions()
	opts.BranchColour = "green"
	opts.Width = 640
	if err := SaveTo(opts, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded != opts {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, opts)
	}
}

func TestConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigPath(); got != filepath.Join("/tmp/xdg", "radialtree", "config.yaml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}
