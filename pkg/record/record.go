// Package record decodes the flat CSV rows that feed the radial tree.
//
// Each row carries a dot-delimited hierarchical identifier, optionally
// followed by ':' and a backslash-delimited payload:
//
//	root.dogs.Labrador.Rex:Rex\DOG\LABRADOR\...
package record

import (
	"strings"
)

const (
	// PathSeparator splits the hierarchical identifier into segments.
	PathSeparator = "."
	// PayloadSeparator splits the identifier from its payload.
	PayloadSeparator = ":"
	// FieldSeparator splits payload fields.
	FieldSeparator = `\`
)

// Headers is the fixed, ordered label schema for payload fields.
var Headers = []string{
	"Name",
	"Type",
	"Breed",
	"Color",
	"Sex",
	"Size",
	"Date Of Birth",
	"Impound Number",
	"Kennel Number",
	"Animal ID",
	"Intake Date",
	"Outcome Date",
	"Days in Shelter",
	"Intake Type",
	"Intake Subtype",
	"Outcome Type",
	"Outcome Subtype",
	"Intake Condition",
	"Outcome Condition",
	"Intake Jurisdiction",
	"Outcome Jurisdiction",
	"Outcome Zip Code",
}

// Record is one CSV row.
type Record struct {
	// ID is the raw identifier column, payload included.
	ID string `json:"id"`
	// Row is the row index, from the optional "i" column or the data row position.
	Row int `json:"i"`
}

// Path returns the hierarchical part of the identifier (payload stripped).
func (r Record) Path() string {
	if i := strings.Index(r.ID, PayloadSeparator); i >= 0 {
		return r.ID[:i]
	}
	return r.ID
}

// ParentPath returns the identifier of the parent, or "" for a root candidate.
func (r Record) ParentPath() string {
	p := r.Path()
	if i := strings.LastIndex(p, PathSeparator); i >= 0 {
		return p[:i]
	}
	return ""
}

// Segments returns the dot-separated path segments.
func (r Record) Segments() []string {
	return strings.Split(r.Path(), PathSeparator)
}

// Name returns the last path segment.
func (r Record) Name() string {
	p := r.Path()
	return p[strings.LastIndex(p, PathSeparator)+1:]
}

// Label returns the display label: last path segment with underscores as spaces.
func (r Record) Label() string {
	return strings.ReplaceAll(r.Name(), "_", " ")
}

// HasPayload reports whether the identifier carries a ':' payload.
func (r Record) HasPayload() bool {
	return strings.Contains(r.ID, PayloadSeparator)
}

// Fields returns the payload fields, or nil when there is no payload.
func (r Record) Fields() []string {
	i := strings.Index(r.ID, PayloadSeparator)
	if i < 0 {
		return nil
	}
	return strings.Split(r.ID[i+1:], FieldSeparator)
}

// Readable zips the payload fields with Headers, one "Header : value" line per
// header, each terminated by sep. Missing fields are rendered empty and
// underscores become spaces.
func (r Record) Readable(sep string) string {
	fields := r.Fields()
	var b strings.Builder
	for i, h := range Headers {
		var v string
		if i < len(fields) {
			v = fields[i]
		}
		b.WriteString(h)
		b.WriteString(" : ")
		b.WriteString(v)
		b.WriteString(sep)
	}
	return strings.ReplaceAll(b.String(), "_", " ")
}
