// Package testutil provides deterministic record fixtures for tests.
// All generators produce the same output for the same configuration.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vanderheijden86/radialtree/pkg/record"
)

// SampleCSV is a small shelter tree: two animal types, three breeds, four animals.
const SampleCSV = `id
shelter
shelter.DOG
shelter.CAT
shelter.DOG.LABRADOR_RETR
shelter.DOG.PIT_BULL
shelter.CAT.DOMESTIC_SH
shelter.DOG.LABRADOR_RETR.Rex:Rex\DOG\LABRADOR_RETR\BLACK\Male\MED\2015-01-02\K1\DS69\A1\2017-01-01\2017-01-09\8\STRAY\FIELD\ADOPTION\SCHEDULED\HEALTHY\HEALTHY\SANTA_ROSA\SANTA_ROSA\95403
shelter.DOG.LABRADOR_RETR.Bella:Bella\DOG\LABRADOR_RETR\YELLOW\Female\LARGE\2014-03-04\K2\DS70\A2\2017-02-01\2017-02-03\2\STRAY\OTC\RETURN_TO_OWNER\OVER_THE_COUNTER\HEALTHY\HEALTHY\COUNTY\COUNTY\95404
shelter.DOG.PIT_BULL.Max:Max\DOG\PIT_BULL\BRINDLE\Male\LARGE\2016-05-06\K3\DS71\A3\2017-03-01\2017-04-01\31\OWNER_SURRENDER\OVER_THE_COUNTER\TRANSFER\SCHEDULED\TREATABLE\HEALTHY\SANTA_ROSA\OUT_OF_COUNTY\95405
shelter.CAT.DOMESTIC_SH.Tom:Tom\CAT\DOMESTIC_SH\GRAY\Neutered\SMALL\2013-07-08\K4\CS01\A4\2017-05-01\2017-05-20\19\STRAY\FIELD\ADOPTION\OVER_THE_COUNTER\HEALTHY\HEALTHY\WINDSOR\WINDSOR\95492
`

// SampleRecords decodes SampleCSV.
func SampleRecords() []record.Record {
	recs, err := record.Decode(strings.NewReader(SampleCSV))
	if err != nil {
		panic(fmt.Sprintf("testutil: sample csv: %v", err))
	}
	return recs
}

// TreeConfig controls random tree generation.
type TreeConfig struct {
	Seed        int64  // Random seed for determinism
	Root        string // Root identifier (default "root")
	MaxDepth    int    // Deepest level generated (default 3)
	MaxChildren int    // Upper bound on children per internal node (default 4)
	Payload     bool   // Attach a payload to leaves
}

// DefaultTreeConfig returns a config suitable for most tests.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		Seed:        42,
		Root:        "root",
		MaxDepth:    3,
		MaxChildren: 4,
		Payload:     true,
	}
}

// GenerateTree returns records describing a random tree in breadth-first
// order. Every non-root record's parent path resolves.
func GenerateTree(cfg TreeConfig) []record.Record {
	if cfg.Root == "" {
		cfg.Root = "root"
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if cfg.MaxChildren <= 0 {
		cfg.MaxChildren = 4
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	type item struct {
		path  string
		depth int
	}
	var ids []string
	queue := []item{{cfg.Root, 0}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		n := 0
		if it.depth < cfg.MaxDepth {
			n = rng.Intn(cfg.MaxChildren + 1)
			if it.depth == 0 && n == 0 {
				n = 1
			}
		}
		id := it.path
		if n == 0 && cfg.Payload && it.depth > 0 {
			id += record.PayloadSeparator + payloadFor(it.path, rng)
		}
		ids = append(ids, id)
		for c := 0; c < n; c++ {
			queue = append(queue, item{fmt.Sprintf("%s.n%d", it.path, c), it.depth + 1})
		}
	}
	return Records(ids...)
}

// Chain returns a root followed by a single path of depth n.
func Chain(n int) []record.Record {
	ids := []string{"root"}
	path := "root"
	for i := 1; i <= n; i++ {
		path = fmt.Sprintf("%s.c%d", path, i)
		ids = append(ids, path)
	}
	return Records(ids...)
}

// Star returns a root with n leaf children.
func Star(n int) []record.Record {
	ids := []string{"root"}
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("root.s%d", i))
	}
	return Records(ids...)
}

// Records numbers ids by position.
func Records(ids ...string) []record.Record {
	recs := make([]record.Record, len(ids))
	for i, id := range ids {
		recs[i] = record.Record{ID: id, Row: i}
	}
	return recs
}

func payloadFor(path string, rng *rand.Rand) string {
	name := path[strings.LastIndex(path, ".")+1:]
	fields := make([]string, len(record.Headers))
	fields[0] = name
	for i := 1; i < len(fields); i++ {
		fields[i] = fmt.Sprintf("v%d", rng.Intn(100))
	}
	return strings.Join(fields, record.FieldSeparator)
}
