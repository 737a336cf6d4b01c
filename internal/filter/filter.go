// Package filter implements the scan's per-entry inclusion predicates.
//
// These are pure functions over config.ScanConfig / config.SearchScanConfig: no
// I/O, no state. The walker (internal/walker) calls them once per directory
// entry it encounters.
package filter

import (
	"strings"

	"github.com/ivoronin/lanfsd/internal/config"
)

// IgnoreDir reports whether a subdirectory should be skipped entirely.
//
// True iff name or path is registered in cfg.IgnoreDirs, OR the directory is
// hidden (basename starts with ".") and hidden directories aren't wanted.
// Directory-name matching is case-sensitive.
func IgnoreDir(cfg *config.ScanConfig, path, name string) bool {
	if cfg.HasIgnoreDir(path, name) {
		return true
	}
	if !cfg.ScanHiddenDirs && isHidden(name) {
		return true
	}
	return false
}

// ConsiderFile reports whether a file should be included in a Bucket's file list.
//
// True iff the file isn't hidden (or hidden files are wanted), AND it matches
// every non-empty search filter configured. Name/extension comparisons are
// case-insensitive; an empty filter set imposes no constraint.
func ConsiderFile(cfg *config.SearchScanConfig, name string) bool {
	if !cfg.ScanHiddenFiles && isHidden(name) {
		return false
	}
	if len(cfg.SearchFileNames) > 0 && !matchesAnyName(cfg.SearchFileNames, name) {
		return false
	}
	if len(cfg.SearchFileExtensions) > 0 && !matchesAnyExtension(cfg.SearchFileExtensions, name) {
		return false
	}
	return true
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

func matchesAnyName(names map[string]struct{}, filename string) bool {
	lower := strings.ToLower(filename)
	for n := range names {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func matchesAnyExtension(exts map[string]struct{}, filename string) bool {
	lower := strings.ToLower(filename)
	for ext := range exts {
		if strings.HasSuffix(lower, "."+strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
