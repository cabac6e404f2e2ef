// Command validate runs integrity checks across a directory of CAAML snow
// profile exports. It verifies that every file is well-formed, declares a
// recognized schema namespace, keeps its stratigraphy depths consistent, and
// uses only known observation codes.
//
// Usage:
//
//	go run ./cmd/validate -dir data/snowpits
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/whiteroomlabs/snowpit-etl/internal/caaml"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// parsedFile pairs a file with its parse outcome.
type parsedFile struct {
	path string
	pit  *caaml.SnowPit
	err  error
}

func main() {
	dir := flag.String("dir", "", "directory containing *.caaml.xml files")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Println("=== CAAML Snow Profile Validation ===")
	fmt.Println()

	files, err := loadFiles(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no *.caaml.xml files in %s\n", dir)
		return 1
	}

	phases := []*phase{
		validateWellFormed(files),
		validateNamespaces(files),
		validateProfileIntegrity(files),
		validateCodeCoverage(files),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	parsed, layers, tests, diags := tally(files)
	fmt.Println()
	fmt.Printf("Files: %d total, %d parsed. Layers: %d, stability tests: %d, diagnostics: %d\n",
		len(files), parsed, layers, tests, diags)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// loadFiles parses every *.caaml.xml file in the directory, keeping the
// per-file outcome for the phases to inspect.
func loadFiles(dir string) ([]parsedFile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.caaml.xml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	files := make([]parsedFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		pit, parseErr := caaml.Parse(data)
		files = append(files, parsedFile{path: filepath.Base(path), pit: pit, err: parseErr})
	}
	return files, nil
}

// ── Phase 1: Well-formedness ──
// Every file must be parseable XML with the expected document shape.

func validateWellFormed(files []parsedFile) *phase {
	p := &phase{name: "Phase 1: Well-formedness (XML parse)"}
	for _, f := range files {
		if f.err != nil && !isNamespaceErr(f.err) {
			p.errorf("%s: %v", f.path, f.err)
		}
	}
	return p
}

// ── Phase 2: Namespace recognition ──
// Every file must declare a profile namespace version this pipeline supports.

func validateNamespaces(files []parsedFile) *phase {
	p := &phase{name: "Phase 2: Namespace recognition"}

	versions := map[string]int{}
	for _, f := range files {
		if isNamespaceErr(f.err) {
			p.errorf("%s: %v", f.path, f.err)
			continue
		}
		if f.pit != nil {
			versions[f.pit.SchemaVersion]++
		}
	}

	if len(versions) > 0 {
		var parts []string
		for uri, n := range versions {
			parts = append(parts, fmt.Sprintf("%s (%d)", uri, n))
		}
		sort.Strings(parts)
		fmt.Printf("  Namespaces seen: %s\n", strings.Join(parts, ", "))
	}
	return p
}

// ── Phase 3: Profile integrity ──
// Layer depths must ascend and stay within the recorded profile depth.

func validateProfileIntegrity(files []parsedFile) *phase {
	p := &phase{name: "Phase 3: Profile integrity (depths)"}
	for _, f := range files {
		if f.pit == nil {
			continue
		}
		for _, d := range f.pit.Diagnostics {
			if d.Code == caaml.DiagDepthOrder || d.Code == caaml.DiagDepthCoverage {
				p.errorf("%s: %s", f.path, d)
			}
		}
	}
	return p
}

// ── Phase 4: Code coverage ──
// Observation codes must come from the published vocabularies: hand hardness,
// grain forms, test scores, booleans, numerics, timestamps.

func validateCodeCoverage(files []parsedFile) *phase {
	p := &phase{name: "Phase 4: Code coverage (vocabularies)"}
	for _, f := range files {
		if f.pit == nil {
			continue
		}
		for _, d := range f.pit.Diagnostics {
			switch d.Code {
			case caaml.DiagUnrecognizedCode, caaml.DiagInvalidBoolean,
				caaml.DiagInvalidNumeric, caaml.DiagInvalidTimestamp:
				p.errorf("%s: %s", f.path, d)
			}
		}
		checkGrainForms(p, f)
	}
	return p
}

// checkGrainForms flags grain codes whose prefix is not an ICSSG basic class.
func checkGrainForms(p *phase, f parsedFile) {
	for i, layer := range f.pit.Profile.Layers {
		for _, grain := range []*caaml.Grain{layer.GrainPrimary, layer.GrainSecondary} {
			if grain == nil {
				continue
			}
			if grain.Classification.BasicCode == "" {
				p.errorf("%s: layer %d: grain form %q has no known basic class", f.path, i, grain.Form)
			}
		}
	}
}

// ── Helpers ──

func isNamespaceErr(err error) bool {
	return errors.Is(err, caaml.ErrUnknownNamespace)
}

func tally(files []parsedFile) (parsed, layers, tests, diags int) {
	for _, f := range files {
		if f.pit == nil {
			continue
		}
		parsed++
		layers += len(f.pit.Profile.Layers)
		tests += len(f.pit.StabilityTests.All())
		diags += len(f.pit.Diagnostics)
	}
	return parsed, layers, tests, diags
}
