package datasource

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/radialtree/pkg/record"
	"github.com/vanderheijden86/radialtree/pkg/testutil"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestResolve(t *testing.T) {
	csvPath := writeFile(t, "tree.csv", testutil.SampleCSV)
	dbPath := writeFile(t, "tree.sqlite3", "")

	tests := []struct {
		name     string
		location string
		want     SourceType
		wantErr  bool
	}{
		{"csv file", csvPath, SourceTypeCSV, false},
		{"sqlite file", dbPath, SourceTypeSQLite, false},
		{"http url", "http://example.com/flare.csv", SourceTypeURL, false},
		{"https url", "https://example.com/flare.csv", SourceTypeURL, false},
		{"missing file", filepath.Join(t.TempDir(), "nope.csv"), "", true},
		{"directory", t.TempDir(), "", true},
		{"url without host", "http:///flare.csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Resolve(tt.location)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", src)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if src.Type != tt.want {
				t.Errorf("Type = %s, want %s", src.Type, tt.want)
			}
		})
	}

	if _, err := Resolve("  "); !errors.Is(err, ErrEmptyLocation) {
		t.Errorf("err = %v, want ErrEmptyLocation", err)
	}
	if _, err := Resolve(filepath.Join(t.TempDir(), "x.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file should wrap os.ErrNotExist, got %v", err)
	}
}

func TestDataSourceString(t *testing.T) {
	src := DataSource{Type: SourceTypeURL, Path: "https://example.com/a.csv"}
	if got := src.String(); got != "https://example.com/a.csv (url)" {
		t.Errorf("String = %q", got)
	}
	if src.IsLocal() {
		t.Error("url source should not be local")
	}
}

func TestLoadRecords_CSV(t *testing.T) {
	path := writeFile(t, "tree.csv", testutil.SampleCSV)
	recs, err := LoadRecords(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	testutil.AssertRecordCount(t, recs, 10)
	testutil.AssertUniqueRows(t, recs)
}

func TestLoadRecords_MalformedCSV(t *testing.T) {
	path := writeFile(t, "bad.csv", "name\nfoo\n")
	_, err := LoadRecords(context.Background(), path)
	if !errors.Is(err, record.ErrMissingIDColumn) {
		t.Errorf("err = %v, want ErrMissingIDColumn", err)
	}
}

func TestLoadRecords_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flare.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte(testutil.SampleCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	recs, err := LoadRecords(context.Background(), srv.URL+"/flare.csv")
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	testutil.AssertRecordCount(t, recs, 10)

	_, err = LoadRecords(context.Background(), srv.URL+"/missing.csv")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestLoadRecords_URLCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadRecords(ctx, srv.URL+"/flare.csv"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func createNodesDB(t *testing.T, recs []record.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.sqlite3")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	stmts := []string{
		`CREATE TABLE export_meta (key TEXT PRIMARY KEY, value TEXT)`,
		`CREATE TABLE nodes (row_index INTEGER PRIMARY KEY, raw_id TEXT NOT NULL)`,
		`INSERT INTO export_meta VALUES ('version', 'test')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	// Insert in reverse to check ordering by row.
	for i := len(recs) - 1; i >= 0; i-- {
		if _, err := db.Exec(`INSERT INTO nodes (row_index, raw_id) VALUES (?, ?)`, recs[i].Row, recs[i].ID); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return path
}

func TestLoadRecords_SQLite(t *testing.T) {
	want := testutil.SampleRecords()
	path := createNodesDB(t, want)

	got, err := LoadRecords(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	src, _ := Resolve(path)
	reader, err := NewSQLiteReader(src)
	if err != nil {
		t.Fatalf("NewSQLiteReader: %v", err)
	}
	defer reader.Close()
	meta, err := reader.Meta(context.Background())
	if err != nil || meta["version"] != "test" {
		t.Errorf("Meta = %v, %v", meta, err)
	}
}

func TestNewSQLiteReader_WrongType(t *testing.T) {
	if _, err := NewSQLiteReader(DataSource{Type: SourceTypeCSV}); err == nil {
		t.Error("expected error for non-SQLite source")
	}
}

func TestLoadAsync(t *testing.T) {
	path := writeFile(t, "tree.csv", testutil.SampleCSV)
	src, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	res, ok := <-LoadAsync(context.Background(), src)
	if !ok {
		t.Fatal("channel closed without a result")
	}
	if res.Err != nil {
		t.Fatalf("LoadAsync: %v", res.Err)
	}
	if len(res.Records) != 10 || res.Source.Path != src.Path {
		t.Errorf("result = %d records from %s", len(res.Records), res.Source.Path)
	}

	bad := DataSource{Type: SourceTypeCSV, Path: filepath.Join(t.TempDir(), "gone.csv")}
	ch := LoadAsync(context.Background(), bad)
	if res := <-ch; res.Err == nil {
		t.Error("expected error for missing file")
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after one result")
	}
}

func TestCompareRecords(t *testing.T) {
	old := testutil.Records("r", "r.a", "r.b:x", "r.c")
	cur := testutil.Records("r", "r.b:y", "r.c", "r.d")

	d := CompareRecords(old, cur)
	if !d.HasChanges() {
		t.Fatal("expected changes")
	}
	if strings.Join(d.Added, ",") != "r.d" || strings.Join(d.Removed, ",") != "r.a" || strings.Join(d.Changed, ",") != "r.b" {
		t.Errorf("diff = %+v", d)
	}
	if got := d.Summary(); got != "+1 -1 ~1 (4 -> 4 records)" {
		t.Errorf("Summary = %q", got)
	}

	same := CompareRecords(old, old)
	if same.HasChanges() || same.Summary() != "no changes (4 records)" {
		t.Errorf("same = %+v", same)
	}
}
