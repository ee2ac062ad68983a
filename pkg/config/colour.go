package config

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// namedColours covers the CSS keywords most likely to appear in options.
var namedColours = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"navy":    "#000080",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"magenta": "#ff00ff",
	"cyan":    "#00ffff",
	"teal":    "#008080",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"maroon":  "#800000",
	"olive":   "#808000",
	"pink":    "#ffc0cb",
	"brown":   "#a52a2a",
}

// ParseColour parses a CSS colour: a keyword from a small named set, #rgb or
// #rrggbb.
func ParseColour(s string) (colorful.Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColours[v]; ok {
		v = hex
	}
	if len(v) == 4 && v[0] == '#' {
		v = string([]byte{'#', v[1], v[1], v[2], v[2], v[3], v[3]})
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("colour %q: %w", s, ErrInvalidValue)
	}
	return c, nil
}

// HexColour normalises a CSS colour to #rrggbb, falling back to fallback
// when s does not parse.
func HexColour(s, fallback string) string {
	c, err := ParseColour(s)
	if err != nil {
		return fallback
	}
	return c.Hex()
}
