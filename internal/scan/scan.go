// Package scan is the public facade: ShallowScan, DeepScan, SearchScan.
//
// Each operation normalizes its root path (expanding "~" and relative paths
// against the home directory) before handing off to the walker or scan
// engine, matching the teacher's habit of keeping path-handling helpers
// small and separate from the pipeline they feed.
package scan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ivoronin/lanfsd/internal/bucket"
	"github.com/ivoronin/lanfsd/internal/config"
	"github.com/ivoronin/lanfsd/internal/scanner"
	"github.com/ivoronin/lanfsd/internal/walker"
)

// outputsDir is where deep-scan JSON dumps land when OutputFileName is set.
const outputsDir = "outputs"

// ShallowScan skims cfg.RootPath only (no recursion, no workers) and returns
// the {path, dirs, files, error?} projection.
func ShallowScan(cfg *config.ScanConfig) (bucket.ShallowProjection, error) {
	root, err := config.NormalizeRootPath(cfg.RootPath)
	if err != nil {
		return bucket.ShallowProjection{}, err
	}
	b := walker.Skim(root, &config.SearchScanConfig{ScanConfig: *cfg})
	return bucket.Project(b), nil
}

// DeepScan runs the full worker-pool traversal and returns the Bucket tree
// plus its Summary. If cfg.OutputFileName is set, the tree is additionally
// dumped to outputs/<name>.json.
func DeepScan(cfg *config.ScanConfig, maxWorkers int, showProgress bool, errCh chan<- error) (*bucket.Bucket, bucket.Summary, error) {
	root, err := config.NormalizeRootPath(cfg.RootPath)
	if err != nil {
		return nil, bucket.Summary{}, err
	}

	tree := scanner.New(&config.SearchScanConfig{ScanConfig: *cfg}, maxWorkers, showProgress, errCh).Run(root)
	summary := bucket.Summarize(tree)

	if cfg.OutputFileName != "" {
		if err := writeOutputFile(cfg.OutputFileName, tree); err != nil {
			return tree, summary, err
		}
	}
	return tree, summary, nil
}

// SearchScan performs a deep scan with cfg's search filters applied, then
// flattens the tree to a mapping of absolute directory path to matched file
// basenames, including only directories with at least one match.
func SearchScan(cfg *config.SearchScanConfig, maxWorkers int, showProgress bool, errCh chan<- error) (map[string][]string, int, error) {
	root, err := config.NormalizeRootPath(cfg.RootPath)
	if err != nil {
		return nil, 0, err
	}

	tree := scanner.New(cfg, maxWorkers, showProgress, errCh).Run(root)
	result, count := Flatten(tree)
	return result, count, nil
}

// Flatten reduces a Bucket tree to dir_path -> [matched file basenames],
// skipping any Bucket that recorded an enumeration error.
func Flatten(root *bucket.Bucket) (map[string][]string, int) {
	result := make(map[string][]string)
	count := 0

	var walk func(b *bucket.Bucket)
	walk = func(b *bucket.Bucket) {
		if b.HasError() {
			return
		}
		if len(b.Files) > 0 {
			result[b.Path] = b.Files
			count += len(b.Files)
		}
		for _, child := range b.Children {
			walk(child)
		}
	}
	walk(root)
	return result, count
}

func writeOutputFile(name string, tree *bucket.Bucket) error {
	path := filepath.Join(outputsDir, name+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create outputs dir: %w", err)
	}

	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan result: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
