// Command genmock reads a directory of CAAML snow pit exports and generates
// the transformed pit-event JSON fixture used by downstream test suites. It
// runs the actual domain transformation so the fixture always matches real
// pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -caaml-dir internal/caaml/testdata \
//	  -out data/mock/pit_events.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/whiteroomlabs/snowpit-etl/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	caamlDir := flag.String("caaml-dir", "", "directory containing *.caaml.xml files")
	out := flag.String("out", "", "output path for the pit-event JSON fixture")
	flag.Parse()

	if *caamlDir == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -caaml-dir, -out")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.January, 20, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	paths, err := filepath.Glob(filepath.Join(*caamlDir, "*.caaml.xml"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no *.caaml.xml files in %s", *caamlDir)
	}
	sort.Strings(paths)

	var events []domain.PitEvent //nolint:prealloc // unparseable files are skipped
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		event, err := domain.ParseRawDocument(domain.RawDocument{Value: data})
		if err != nil {
			log.Printf("skipping %s: %v", filepath.Base(path), err)
			continue
		}
		events = append(events, event)
		log.Printf("%s: pit %s, %d layers, %d tests, %d diagnostics",
			filepath.Base(path), event.PitID, event.LayerCount, event.TestCount, event.DiagnosticCount)
	}

	if err := writeJSON(*out, events); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d events)", *out, len(events))

	printStats(events)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printStats(events []domain.PitEvent) {
	regions := map[string]int{}
	var propagating int
	for i := range events {
		if events[i].Region != nil {
			regions[*events[i].Region]++
		}
		if events[i].PropagationObserved {
			propagating++
		}
	}

	keys := make([]string, 0, len(regions))
	for k := range regions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	log.Printf("propagation observed in %d/%d pits", propagating, len(events))
	for _, k := range keys {
		log.Printf("  region %s: %d pits", k, regions[k])
	}
}
