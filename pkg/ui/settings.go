package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/radialtree/pkg/config"
)

// settingsSection groups option names for the form pages.
type settingsSection struct {
	title  string
	prefix string
}

var settingsSections = []settingsSection{
	{"Nodes", "node_"},
	{"Branches", "branch_"},
	{"Labels", "text_"},
}

// sectionOf returns the form page an option belongs on.
func sectionOf(name string) string {
	for _, s := range settingsSections {
		if strings.HasPrefix(name, s.prefix) {
			return s.title
		}
	}
	return "Tree"
}

// SettingsForm edits every named option. The values are applied through
// Set by name, the same way the -set flag applies them.
type SettingsForm struct {
	form     *huh.Form
	original map[string]string
	values   map[string]*string
}

var errNotColour = errors.New("not a colour")

// validateOption checks a value against a scratch copy of the options.
func validateOption(name string) func(string) error {
	return func(v string) error {
		o := config.DefaultOptions()
		if err := o.Set(name, v); err != nil {
			return errors.Unwrap(err)
		}
		if strings.Contains(name, "colour") {
			if _, err := config.ParseColour(v); err != nil {
				return errNotColour
			}
		}
		return nil
	}
}

// NewSettingsForm builds the form prefilled from opts.
func NewSettingsForm(opts config.Options) *SettingsForm {
	sf := &SettingsForm{
		original: make(map[string]string),
		values:   make(map[string]*string),
	}

	pages := map[string][]huh.Field{}
	for _, name := range config.Names() {
		v, _ := opts.Get(name)
		val := v
		sf.original[name] = v
		sf.values[name] = &val

		var field huh.Field
		if strings.HasPrefix(name, "enable_") {
			field = huh.NewSelect[string]().
				Title(name).
				Options(huh.NewOptions("true", "false")...).
				Value(sf.values[name])
		} else {
			field = huh.NewInput().
				Title(name).
				Value(sf.values[name]).
				Validate(validateOption(name))
		}
		sec := sectionOf(name)
		pages[sec] = append(pages[sec], field)
	}

	groups := []*huh.Group{huh.NewGroup(pages["Tree"]...).Title("Tree")}
	for _, s := range settingsSections {
		if fields := pages[s.title]; len(fields) > 0 {
			groups = append(groups, huh.NewGroup(fields...).Title(s.title))
		}
	}

	sf.form = huh.NewForm(groups...).
		WithTheme(huh.ThemeDracula()).
		WithShowHelp(true)
	return sf
}

// Changed returns the options whose values differ from the prefilled ones.
func (sf *SettingsForm) Changed() map[string]string {
	out := make(map[string]string)
	for name, v := range sf.values {
		if *v != sf.original[name] {
			out[name] = *v
		}
	}
	return out
}

// Set overrides a field value, as if typed.
func (sf *SettingsForm) Set(name, value string) {
	if v, ok := sf.values[name]; ok {
		*v = value
	}
}
