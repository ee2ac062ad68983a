package export

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/radialtree/pkg/scene"
	"github.com/vanderheijden86/radialtree/pkg/version"
)

// SaveSQLite writes the scene to a fresh SQLite database at path.
func SaveSQLite(sc *scene.Scene, path string) error {
	// Remove existing database if present
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := insertNodes(db, sc); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}
	if err := insertElements(db, sc); err != nil {
		return fmt.Errorf("insert elements: %w", err)
	}
	if err := insertMeta(db, sc); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	OptimizeDatabase(db)

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// insertNodes inserts one row per tree node.
func insertNodes(db *sql.DB, sc *scene.Scene) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (row_index, raw_id, path, parent_path, depth, angle, radius, x, y, leaf, label, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range sc.Tree.Descendants() {
		pos := sc.Select(sc.ShapeID(n)).Pos
		leaf := 0
		if n.IsLeaf() {
			leaf = 1
		}
		payload := strings.Join(n.Record.Fields(), "\t")
		if _, err := stmt.Exec(
			n.Row(), n.Record.ID, n.ID(), nullString(n.Record.ParentPath()),
			n.Depth, n.X, n.Y, pos.X, pos.Y, leaf, n.Record.Label(), nullString(payload),
		); err != nil {
			return fmt.Errorf("node %s: %w", n.ID(), err)
		}
	}
	return tx.Commit()
}

// insertElements inserts one row per scene element.
func insertElements(db *sql.DB, sc *scene.Scene) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO elements (id, role, node_row, depth_index, class, d, length, anchor, rotate, offset_x, stroke, fill, opacity, radius)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var insertErr error
	sc.Each(func(e *scene.Element) {
		if insertErr != nil {
			return
		}
		var (
			d              sql.NullString
			length, rotate sql.NullFloat64
			offset, radius sql.NullFloat64
			anchor         sql.NullString
		)
		switch e.Role {
		case scene.Branch:
			d = nullString(e.Curve.D())
			length = sql.NullFloat64{Float64: e.Length, Valid: true}
		case scene.Shape:
			radius = sql.NullFloat64{Float64: e.Radius, Valid: true}
		case scene.Text:
			anchor = nullString(string(e.Anchor))
			rotate = sql.NullFloat64{Float64: e.Rotate, Valid: true}
			offset = sql.NullFloat64{Float64: e.OffsetX, Valid: true}
		}
		_, err := stmt.Exec(e.ID, e.Role.String(), e.Node.Row(), e.DepthIndex, e.Class,
			d, length, anchor, rotate, offset, nullString(e.Stroke), nullString(e.Fill), e.Opacity, radius)
		if err != nil {
			insertErr = fmt.Errorf("element %s: %w", e.ID, err)
		}
	})
	if insertErr != nil {
		return insertErr
	}
	return tx.Commit()
}

func insertMeta(db *sql.DB, sc *scene.Scene) error {
	optsJSON, err := json.Marshal(sc.Options())
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	meta := map[string]string{
		"version":        version.String(),
		"generated_at":   time.Now().UTC().Format(time.RFC3339),
		"node_count":     fmt.Sprintf("%d", sc.Tree.Len()),
		"element_count":  fmt.Sprintf("%d", sc.Len()),
		"max_depth":      fmt.Sprintf("%d", sc.Tree.MaxDepth),
		"schema_version": fmt.Sprintf("%d", SchemaVersion),
		"options":        string(optsJSON),
	}
	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}
