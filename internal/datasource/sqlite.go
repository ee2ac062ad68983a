package datasource

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/radialtree/pkg/record"
)

// SQLiteReader provides read access to a database written by the SQLite exporter
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadRecords reads the raw node rows in row order.
func (r *SQLiteReader) LoadRecords(ctx context.Context) ([]record.Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT row_index, raw_id FROM nodes ORDER BY row_index`)
	if err != nil {
		return nil, fmt.Errorf("querying nodes in %s: %w", r.path, err)
	}
	defer rows.Close()

	var recs []record.Record
	for rows.Next() {
		var rec record.Record
		if err := rows.Scan(&rec.Row, &rec.ID); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return recs, nil
}

// Meta returns the key/value metadata table, if present.
func (r *SQLiteReader) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM export_meta`)
	if err != nil {
		return nil, fmt.Errorf("querying export_meta in %s: %w", r.path, err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}
