// Package baseline persists and resolves the path→digest mapping each
// watcher job verifies against.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/integritywatch/internal/digest"
)

// Baseline maps a path key to its accepted content digest. Keys are
// unique within one job; different jobs keep separate namespaces even
// over textually identical paths.
type Baseline map[string]string

// fileName returns the canonical on-disk location for a job's baseline,
// matching the original implementation's naming (baseline_<job>.json in
// the working directory, no schema version recorded).
func fileName(jobName string) string {
	return fmt.Sprintf("baseline_%s.json", jobName)
}

// Load reads an existing baseline file for jobName. The bool return is
// false (with a nil error) when no baseline file exists yet.
func Load(jobName string) (Baseline, bool, error) {
	data, err := os.ReadFile(fileName(jobName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read baseline for job %q: %w", jobName, err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, false, fmt.Errorf("parse baseline for job %q: %w", jobName, err)
	}
	return b, true, nil
}

// Save pretty-prints b as JSON (two-space indent, stable via Go's map
// marshaling which sorts keys) to the canonical location for jobName.
func Save(jobName string, b Baseline) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize baseline for job %q: %w", jobName, err)
	}
	if err := os.WriteFile(fileName(jobName), data, 0o644); err != nil {
		return fmt.Errorf("write baseline for job %q: %w", jobName, err)
	}
	return nil
}

// Generate computes a fresh Baseline by digesting every path in
// watchPaths. A failure digesting any single path aborts the whole
// generation and surfaces that error — partial baselines are never
// returned.
func Generate(watchPaths []string) (Baseline, error) {
	b := make(Baseline, len(watchPaths))
	for _, path := range watchPaths {
		sum, err := digest.Digest(path)
		if err != nil {
			return nil, fmt.Errorf("generate baseline: %w", err)
		}
		b[path] = sum
	}
	return b, nil
}

// LoadOrGenerate resolves the Baseline for jobName: if a persisted
// baseline file already exists it is returned unchanged, otherwise a
// fresh one is generated from watchPaths and persisted before being
// returned. This mirrors the original's load_or_generate_baseline
// (original_source/src/watcher/mod.rs) and spec.md §4.2.
func LoadOrGenerate(jobName string, watchPaths []string) (Baseline, error) {
	existing, ok, err := Load(jobName)
	if err != nil {
		return nil, err
	}
	if ok {
		return existing, nil
	}

	generated, err := Generate(watchPaths)
	if err != nil {
		return nil, fmt.Errorf("load or generate baseline for job %q: %w", jobName, err)
	}
	if err := Save(jobName, generated); err != nil {
		return nil, err
	}
	return generated, nil
}
