// Package export writes a rendered radial tree scene to files: static SVG
// and PNG snapshots, a self-contained interactive HTML page, a JSON tree and
// a SQLite database that the datasource package can read back.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanderheijden86/radialtree/pkg/metrics"
	"github.com/vanderheijden86/radialtree/pkg/scene"
)

// Format is an output file format.
type Format string

const (
	FormatSVG    Format = "svg"
	FormatPNG    Format = "png"
	FormatHTML   Format = "html"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatHTML, FormatJSON, FormatSQLite}

// FormatFor infers the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return FormatSVG, nil
	case ".png":
		return FormatPNG, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".json":
		return FormatJSON, nil
	case ".sqlite3", ".sqlite", ".db":
		return FormatSQLite, nil
	case "":
		return "", fmt.Errorf("cannot infer format of %q: no extension", path)
	default:
		return "", fmt.Errorf("unsupported format %q (want svg, png, html, json or sqlite3)", filepath.Ext(path))
	}
}

// Options controls a file export.
type Options struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format Format
	Title  string // Document title for SVG and HTML
}

// Save writes sc to opts.Path.
func Save(sc *scene.Scene, opts Options) error {
	if sc == nil {
		return fmt.Errorf("no scene to export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	format := Format(strings.ToLower(strings.TrimPrefix(string(opts.Format), ".")))
	if format == "" {
		f, err := FormatFor(opts.Path)
		if err != nil {
			return err
		}
		format = f
	}
	if opts.Title == "" {
		opts.Title = sc.Tree.Root.Record.Label()
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	defer metrics.Timer(metrics.Export)()

	if format == FormatSQLite {
		return SaveSQLite(sc, opts.Path)
	}

	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := Write(file, sc, format, opts.Title); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", opts.Path, err)
	}
	return file.Close()
}

// Write renders sc to w in a stream format. SQLite is file-only.
func Write(w io.Writer, sc *scene.Scene, format Format, title string) error {
	switch format {
	case FormatSVG:
		return RenderSVG(w, sc, title)
	case FormatPNG:
		return RenderPNG(w, sc)
	case FormatHTML:
		return RenderHTML(w, sc, title)
	case FormatJSON:
		return RenderJSON(w, sc)
	case FormatSQLite:
		return fmt.Errorf("sqlite export needs a file path")
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- helpers ---------------------------------------------------------------

// fontPixels converts a CSS font size to pixels. Unknown units fall back to 10.
func fontPixels(size string) float64 {
	s := strings.TrimSpace(strings.ToLower(size))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "pt"):
		s, mult = strings.TrimSuffix(s, "pt"), 4.0/3.0
	case strings.HasSuffix(s, "em"):
		s, mult = strings.TrimSuffix(s, "em"), 16
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 10
	}
	return v * mult
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
