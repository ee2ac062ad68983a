//go:build ignore

// generate_testdata.go creates standard tree datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	tests/testdata/benchmark/small.csv   (depth 3, up to 4 children)
//	tests/testdata/benchmark/medium.csv  (depth 4, up to 6 children)
//	tests/testdata/benchmark/large.csv   (depth 5, up to 8 children)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/radialtree/pkg/testutil"
)

type datasetSpec struct {
	name        string
	depth       int
	maxChildren int
}

var datasets = []datasetSpec{
	{"small", 3, 4},
	{"medium", 4, 6},
	{"large", 5, 8},
}

func main() {
	outputDir := "tests/testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		recs := testutil.GenerateTree(testutil.TreeConfig{
			Seed:        int64(ds.depth*100 + ds.maxChildren), // Reproducible per-size
			Root:        "bench",
			MaxDepth:    ds.depth,
			MaxChildren: ds.maxChildren,
			Payload:     true,
		})
		fmt.Printf("Generating %s dataset (%d records)...\n", ds.name, len(recs))

		outputPath := filepath.Join(outputDir, ds.name+".csv")
		f, err := os.Create(outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		w := csv.NewWriter(f)
		_ = w.Write([]string{"id"})
		for _, r := range recs {
			_ = w.Write([]string{r.ID})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		f.Close()
		fmt.Printf("  Written %s\n", outputPath)
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}
