package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/radialtree/pkg/record"
)

// RecordDiff represents differences between two loads of the same source
type RecordDiff struct {
	// Added contains paths present in the new load only
	Added []string
	// Removed contains paths present in the old load only
	Removed []string
	// Changed contains paths whose payload differs
	Changed []string
	// CountOld is the number of records in the old load
	CountOld int
	// CountNew is the number of records in the new load
	CountNew int
}

// HasChanges returns true if the loads differ
func (d RecordDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// Summary returns a one-line description of the differences
func (d RecordDiff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("no changes (%d records)", d.CountNew)
	}
	var parts []string
	if len(d.Added) > 0 {
		parts = append(parts, fmt.Sprintf("+%d", len(d.Added)))
	}
	if len(d.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("-%d", len(d.Removed)))
	}
	if len(d.Changed) > 0 {
		parts = append(parts, fmt.Sprintf("~%d", len(d.Changed)))
	}
	return fmt.Sprintf("%s (%d -> %d records)", strings.Join(parts, " "), d.CountOld, d.CountNew)
}

// CompareRecords compares two record sets by path. Results are sorted.
func CompareRecords(old, cur []record.Record) RecordDiff {
	d := RecordDiff{CountOld: len(old), CountNew: len(cur)}

	oldByPath := make(map[string]string, len(old))
	for _, r := range old {
		oldByPath[r.Path()] = r.ID
	}
	seen := make(map[string]bool, len(cur))
	for _, r := range cur {
		p := r.Path()
		seen[p] = true
		prev, ok := oldByPath[p]
		switch {
		case !ok:
			d.Added = append(d.Added, p)
		case prev != r.ID:
			d.Changed = append(d.Changed, p)
		}
	}
	for p := range oldByPath {
		if !seen[p] {
			d.Removed = append(d.Removed, p)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)
	return d
}
