// Package config handles the visual options of a radial tree and their
// persistence.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/radialtree/config.yaml
//
// Every option is addressable by its YAML key through Get and Set, which is
// how form controls (the TUI settings form, the -set CLI flag) edit them.
// Changes take effect on the next render.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidValue is returned when a known option receives a malformed value.
var ErrInvalidValue = errors.New("invalid option value")

// Options holds every tunable visual parameter.
type Options struct {
	EnableTransitions    bool    `yaml:"enable_transitions" json:"enable_transitions"`
	TransitionMultiplier float64 `yaml:"transition_multiplier" json:"transition_multiplier"` // >1 is faster

	TextSize             string  `yaml:"text_size" json:"text_size"`                             // CSS font size, e.g. "4px"
	TextDistanceFromNode float64 `yaml:"text_distance_from_node" json:"text_distance_from_node"` // label offset along the node's tangent

	NodeOpacity       float64 `yaml:"node_opacity" json:"node_opacity"`
	NodeColour        string  `yaml:"node_colour" json:"node_colour"`
	NodeColourOnHover string  `yaml:"node_colour_on_hover" json:"node_colour_on_hover"`
	NodeRadius        float64 `yaml:"node_radius" json:"node_radius"`

	BranchOpacity       float64 `yaml:"branch_opacity" json:"branch_opacity"`
	BranchColour        string  `yaml:"branch_colour" json:"branch_colour"`
	BranchColourOnHover string  `yaml:"branch_colour_on_hover" json:"branch_colour_on_hover"`
	BranchThickness     float64 `yaml:"branch_thickness" json:"branch_thickness"`

	TreeOpacityOnClick float64 `yaml:"tree_opacity_on_click" json:"tree_opacity_on_click"`
	DataBoxID          string  `yaml:"data_box_id" json:"data_box_id"`
	RMultiplier        float64 `yaml:"r_multiplier" json:"r_multiplier"`

	Width   int     `yaml:"width" json:"width"`
	Height  int     `yaml:"height" json:"height"`
	OffsetX float64 `yaml:"offset_x" json:"offset_x"`
	Radius  float64 `yaml:"radius" json:"radius"` // layout depth extent before RMultiplier
}

// DefaultOptions returns the stock look of the tree.
func DefaultOptions() Options {
	return Options{
		EnableTransitions:    true,
		TransitionMultiplier: 1,

		TextSize:             "4px",
		TextDistanceFromNode: 6,

		NodeOpacity:       1,
		NodeColour:        "#173C82",
		NodeColourOnHover: "red",
		NodeRadius:        1.3,

		BranchOpacity:       0.5,
		BranchColour:        "#5F92F2",
		BranchColourOnHover: "red",
		BranchThickness:     1,

		TreeOpacityOnClick: 0.2,
		DataBoxID:          "node-data",
		RMultiplier:        1,

		Width:   1000,
		Height:  1000,
		OffsetX: 100,
		Radius:  500,
	}
}

// Validate reports options that cannot produce a render.
func (o Options) Validate() error {
	if o.TransitionMultiplier <= 0 {
		return fmt.Errorf("transition_multiplier must be > 0, got %v: %w", o.TransitionMultiplier, ErrInvalidValue)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("canvas size %dx%d: %w", o.Width, o.Height, ErrInvalidValue)
	}
	if o.Radius <= 0 {
		return fmt.Errorf("radius must be > 0, got %v: %w", o.Radius, ErrInvalidValue)
	}
	return nil
}

// field describes one named option.
type field struct {
	get func(o *Options) string
	set func(o *Options, v string) error
}

func stringField(p func(o *Options) *string) field {
	return field{
		get: func(o *Options) string { return *p(o) },
		set: func(o *Options, v string) error { *p(o) = v; return nil },
	}
}

func floatField(p func(o *Options) *float64, positive bool) field {
	return field{
		get: func(o *Options) string { return strconv.FormatFloat(*p(o), 'f', -1, 64) },
		set: func(o *Options, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%q: %w", v, ErrInvalidValue)
			}
			if positive && f <= 0 {
				return fmt.Errorf("%v must be > 0: %w", f, ErrInvalidValue)
			}
			*p(o) = f
			return nil
		},
	}
}

func intField(p func(o *Options) *int) field {
	return field{
		get: func(o *Options) string { return strconv.Itoa(*p(o)) },
		set: func(o *Options, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n <= 0 {
				return fmt.Errorf("%q: %w", v, ErrInvalidValue)
			}
			*p(o) = n
			return nil
		},
	}
}

func boolField(p func(o *Options) *bool) field {
	return field{
		get: func(o *Options) string { return strconv.FormatBool(*p(o)) },
		set: func(o *Options, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%q: %w", v, ErrInvalidValue)
			}
			*p(o) = b
			return nil
		},
	}
}

var fields = map[string]field{
	"enable_transitions":      boolField(func(o *Options) *bool { return &o.EnableTransitions }),
	"transition_multiplier":   floatField(func(o *Options) *float64 { return &o.TransitionMultiplier }, true),
	"text_size":               stringField(func(o *Options) *string { return &o.TextSize }),
	"text_distance_from_node": floatField(func(o *Options) *float64 { return &o.TextDistanceFromNode }, false),
	"node_opacity":            floatField(func(o *Options) *float64 { return &o.NodeOpacity }, false),
	"node_colour":             stringField(func(o *Options) *string { return &o.NodeColour }),
	"node_colour_on_hover":    stringField(func(o *Options) *string { return &o.NodeColourOnHover }),
	"node_radius":             floatField(func(o *Options) *float64 { return &o.NodeRadius }, false),
	"branch_opacity":          floatField(func(o *Options) *float64 { return &o.BranchOpacity }, false),
	"branch_colour":           stringField(func(o *Options) *string { return &o.BranchColour }),
	"branch_colour_on_hover":  stringField(func(o *Options) *string { return &o.BranchColourOnHover }),
	"branch_thickness":        floatField(func(o *Options) *float64 { return &o.BranchThickness }, false),
	"tree_opacity_on_click":   floatField(func(o *Options) *float64 { return &o.TreeOpacityOnClick }, false),
	"data_box_id":             stringField(func(o *Options) *string { return &o.DataBoxID }),
	"r_multiplier":            floatField(func(o *Options) *float64 { return &o.RMultiplier }, true),
	"width":                   intField(func(o *Options) *int { return &o.Width }),
	"height":                  intField(func(o *Options) *int { return &o.Height }),
	"offset_x":                floatField(func(o *Options) *float64 { return &o.OffsetX }, false),
	"radius":                  floatField(func(o *Options) *float64 { return &o.Radius }, true),
}

// Names returns every option name in sorted order.
func Names() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name is an option.
func Known(name string) bool {
	_, ok := fields[name]
	return ok
}

// Get returns the option's value as a string. Unknown names are logged and
// return ("", false).
func (o *Options) Get(name string) (string, bool) {
	f, ok := fields[name]
	if !ok {
		log.Printf("config: get of unknown option %q ignored", name)
		return "", false
	}
	return f.get(o), true
}

// Set parses value into the named option. Unknown names are logged and
// ignored; malformed values for known names return ErrInvalidValue and leave
// the option unchanged.
func (o *Options) Set(name, value string) error {
	f, ok := fields[name]
	if !ok {
		log.Printf("config: set of unknown option %q ignored", name)
		return nil
	}
	if err := f.set(o, value); err != nil {
		return fmt.Errorf("option %s: %w", name, err)
	}
	return nil
}

// ConfigDir returns the XDG config directory for radialtree.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "radialtree")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "radialtree")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultOptions if the file doesn't exist.
func Load() (Options, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultOptions(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads options from a specific path. Keys missing from the file
// keep their defaults. Returns DefaultOptions if the file doesn't exist.
func LoadFrom(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return DefaultOptions(), fmt.Errorf("parsing config: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return DefaultOptions(), fmt.Errorf("validating config: %w", err)
	}
	return opts, nil
}

// Save writes the options to the XDG config directory.
func Save(opts Options) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(opts, path)
}

// SaveTo writes the options to a specific path.
func SaveTo(opts Options, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
