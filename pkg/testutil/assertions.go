package testutil

import (
	"math"
	"testing"

	"github.com/vanderheijden86/radialtree/pkg/record"
)

// AssertRecordCount verifies the expected number of records.
func AssertRecordCount(t *testing.T, recs []record.Record, expected int) {
	t.Helper()
	if len(recs) != expected {
		t.Errorf("expected %d records, got %d", expected, len(recs))
	}
}

// AssertUniqueRows verifies all row indices are distinct.
func AssertUniqueRows(t *testing.T, recs []record.Record) {
	t.Helper()
	seen := make(map[int]string)
	for _, r := range recs {
		if prev, ok := seen[r.Row]; ok {
			t.Errorf("row %d shared by %q and %q", r.Row, prev, r.ID)
		}
		seen[r.Row] = r.ID
	}
}

// AssertClose fails when got and want differ by more than eps.
func AssertClose(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, eps)
	}
}
