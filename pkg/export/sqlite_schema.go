package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createCoreTables creates the nodes and elements tables.
func createCoreTables(db *sql.DB) error {
	// One row per input record, with its layout position
	nodesSQL := `
		CREATE TABLE IF NOT EXISTS nodes (
			row_index INTEGER PRIMARY KEY,
			raw_id TEXT NOT NULL,
			path TEXT NOT NULL UNIQUE,
			parent_path TEXT,
			depth INTEGER NOT NULL,
			angle REAL NOT NULL,
			radius REAL NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			leaf INTEGER NOT NULL,
			label TEXT NOT NULL,
			payload TEXT
		)
	`
	if _, err := db.Exec(nodesSQL); err != nil {
		return fmt.Errorf("create nodes table: %w", err)
	}

	// One row per rendered element
	elementsSQL := `
		CREATE TABLE IF NOT EXISTS elements (
			id TEXT PRIMARY KEY,
			role TEXT NOT NULL,
			node_row INTEGER NOT NULL,
			depth_index INTEGER NOT NULL,
			class TEXT NOT NULL,
			d TEXT,
			length REAL,
			anchor TEXT,
			rotate REAL,
			offset_x REAL,
			stroke TEXT,
			fill TEXT,
			opacity REAL NOT NULL,
			radius REAL,
			FOREIGN KEY (node_row) REFERENCES nodes(row_index)
		)
	`
	if _, err := db.Exec(elementsSQL); err != nil {
		return fmt.Errorf("create elements table: %w", err)
	}

	return nil
}

// createIndexes creates indexes for the per-ring and per-node lookups.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_nodes_depth ON nodes(depth)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_path)`,
		`CREATE INDEX IF NOT EXISTS idx_elements_ring ON elements(role, depth_index)`,
		`CREATE INDEX IF NOT EXISTS idx_elements_node ON elements(node_row)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create export_meta table: %w", err)
	}

	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// OptimizeDatabase compacts the file for distribution.
func OptimizeDatabase(db *sql.DB) {
	for _, stmt := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		// Some pragmas may fail depending on state, continue
		_, _ = db.Exec(stmt)
	}
}
