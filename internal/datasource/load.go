package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/vanderheijden86/radialtree/pkg/debug"
	"github.com/vanderheijden86/radialtree/pkg/metrics"
	"github.com/vanderheijden86/radialtree/pkg/record"
)

// HTTPClient fetches URL sources. Tests may replace it.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

// Result is the outcome of an asynchronous load.
type Result struct {
	Source  DataSource
	Records []record.Record
	Err     error
}

// LoadRecords resolves location and loads its records.
func LoadRecords(ctx context.Context, location string) ([]record.Record, error) {
	src, err := Resolve(location)
	if err != nil {
		return nil, err
	}
	return LoadFromSource(ctx, src)
}

// LoadAsync loads source in the background. The returned channel receives
// exactly one Result and is then closed.
func LoadAsync(ctx context.Context, source DataSource) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		recs, err := LoadFromSource(ctx, source)
		ch <- Result{Source: source, Records: recs, Err: err}
	}()
	return ch
}

// LoadFromSource loads records from a specific DataSource, dispatching to the
// appropriate reader based on source type.
func LoadFromSource(ctx context.Context, source DataSource) ([]record.Record, error) {
	defer metrics.Timer(metrics.DataLoad)()
	start := time.Now()
	defer func() { debug.LogTiming("datasource: load "+string(source.Type), time.Since(start)) }()

	switch source.Type {
	case SourceTypeCSV:
		f, err := os.Open(source.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", source.Path, err)
		}
		defer f.Close()
		recs, err := record.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", source.Path, err)
		}
		return recs, nil

	case SourceTypeURL:
		return fetch(ctx, source.Path)

	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadRecords(ctx)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

func fetch(ctx context.Context, rawURL string) ([]record.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetching %s: unexpected status %s", rawURL, resp.Status)
	}

	recs, err := record.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", rawURL, err)
	}
	return recs, nil
}
