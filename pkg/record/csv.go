package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column names understood by Decode.
const (
	IDColumn  = "id"
	RowColumn = "i"
)

var (
	// ErrMissingIDColumn is returned when the header has no "id" column.
	ErrMissingIDColumn = errors.New("csv header has no id column")
	// ErrDuplicateRow is returned when two rows share the same row index.
	ErrDuplicateRow = errors.New("duplicate row index")
)

// Decode reads a CSV with a header row into Records, in file order.
//
// The "id" column is required. The optional "i" column supplies the row
// index; without it, rows are numbered from 0 in data order. Blank ids are
// skipped.
func Decode(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty csv: %w", ErrMissingIDColumn)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idCol, rowCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case IDColumn:
			idCol = i
		case RowColumn:
			rowCol = i
		}
	}
	if idCol < 0 {
		return nil, ErrMissingIDColumn
	}

	var records []Record
	seen := make(map[int]bool)
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if idCol >= len(fields) || strings.TrimSpace(fields[idCol]) == "" {
			continue
		}

		row := len(records)
		if rowCol >= 0 && rowCol < len(fields) && strings.TrimSpace(fields[rowCol]) != "" {
			row, err = strconv.Atoi(strings.TrimSpace(fields[rowCol]))
			if err != nil {
				return nil, fmt.Errorf("csv line %d: invalid row index %q: %w", line, fields[rowCol], err)
			}
		}
		if seen[row] {
			return nil, fmt.Errorf("csv line %d: %w %d", line, ErrDuplicateRow, row)
		}
		seen[row] = true

		records = append(records, Record{ID: fields[idCol], Row: row})
	}
	return records, nil
}
