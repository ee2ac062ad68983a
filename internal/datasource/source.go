// Package datasource resolves where radial tree records come from and loads
// them. A location is a local CSV file, an http(s) URL serving CSV, or a
// SQLite database written by the exporter.
package datasource

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeCSV is a local CSV file
	SourceTypeCSV SourceType = "csv"
	// SourceTypeURL is a CSV document fetched over http(s)
	SourceTypeURL SourceType = "url"
	// SourceTypeSQLite is a database produced by the SQLite exporter
	SourceTypeSQLite SourceType = "sqlite"
)

// ErrEmptyLocation is returned by Resolve for an empty location.
var ErrEmptyLocation = errors.New("empty data location")

// sqliteExtensions are the file suffixes read as SQLite databases.
var sqliteExtensions = []string{".sqlite3", ".sqlite", ".db"}

// DataSource is a resolved record location.
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute file path, or the URL for SourceTypeURL
	Path string `json:"path"`
	// ModTime is the last modification time of a local source
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes of a local source
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	if s.Type == SourceTypeURL {
		return fmt.Sprintf("%s (%s)", s.Path, s.Type)
	}
	return fmt.Sprintf("%s (%s, mod=%s, %d bytes)",
		s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.Size)
}

// IsLocal reports whether the source is a file that can be watched.
func (s DataSource) IsLocal() bool {
	return s.Type != SourceTypeURL
}

// Resolve classifies a location. URLs are not contacted; local paths must exist.
func Resolve(location string) (DataSource, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return DataSource{}, ErrEmptyLocation
	}

	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if u.Host == "" {
			return DataSource{}, fmt.Errorf("invalid url %q: missing host", location)
		}
		return DataSource{Type: SourceTypeURL, Path: u.String()}, nil
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return DataSource{}, fmt.Errorf("failed to resolve %s: %w", location, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return DataSource{}, fmt.Errorf("data source %s: %w", location, err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("data source %s is a directory", location)
	}

	src := DataSource{
		Type:    SourceTypeCSV,
		Path:    abs,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
	ext := strings.ToLower(filepath.Ext(abs))
	for _, e := range sqliteExtensions {
		if ext == e {
			src.Type = SourceTypeSQLite
			break
		}
	}
	return src, nil
}
