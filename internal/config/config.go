// Package config holds the scan and search configuration types shared by the
// walker, scan engine, and the HTTP transport that accepts them over the wire.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// StringSet is a set of strings that marshals as a JSON array (sorted, for
// deterministic wire output) instead of the map-with-empty-values shape
// Go's default map encoding would otherwise produce.
type StringSet map[string]struct{}

// MarshalJSON encodes the set as a sorted JSON array, or null when empty.
func (s StringSet) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	items := make([]string, 0, len(s))
	for item := range s {
		items = append(items, item)
	}
	sort.Strings(items)
	return json.Marshal(items)
}

// UnmarshalJSON accepts a JSON array of strings.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = StringSet(NewStringSet(items))
	return nil
}

// ScanConfig is the immutable per-request configuration for a shallow or deep scan.
type ScanConfig struct {
	// RootPath is the textual path as given by the caller, before normalization.
	RootPath string `json:"path"`

	// IgnoreDirs holds names OR absolute paths that cause a directory to be
	// skipped entirely.
	IgnoreDirs StringSet `json:"ignore_dirs,omitempty"`

	ScanHiddenDirs  bool `json:"scan_hidden_dirs"`
	ScanHiddenFiles bool `json:"scan_hidden_files"`

	// OutputFileName, when non-empty, names a JSON dump of the deep-scan result
	// under outputs/<name>.json. Side effect only, not part of the core contract,
	// and never sent to LAN peers during fan-out.
	OutputFileName string `json:"-"`
}

// SearchScanConfig extends ScanConfig with the filename/extension filters used
// by SearchScan.
type SearchScanConfig struct {
	ScanConfig

	// SearchFileNames, when non-empty, requires a file's lowercased basename to
	// contain at least one element's lowercase form as a substring.
	SearchFileNames StringSet `json:"search_file_names,omitempty"`

	// SearchFileExtensions, when non-empty, requires a file's lowercased
	// basename to end in "." + at least one element's lowercase form.
	SearchFileExtensions StringSet `json:"search_file_extensions,omitempty"`
}

// HasIgnoreDir reports whether name or path is registered in IgnoreDirs.
func (c *ScanConfig) HasIgnoreDir(path, name string) bool {
	if c == nil || len(c.IgnoreDirs) == 0 {
		return false
	}
	if _, ok := c.IgnoreDirs[name]; ok {
		return true
	}
	_, ok := c.IgnoreDirs[path]
	return ok
}

// NormalizeRootPath expands a leading "~" to the current user's home directory
// and treats any path not starting with "/" or "~" as relative to home.
func NormalizeRootPath(raw string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	switch {
	case raw == "~":
		return home, nil
	case strings.HasPrefix(raw, "~/"):
		return home + raw[1:], nil
	case strings.HasPrefix(raw, "/"):
		return raw, nil
	default:
		return home + "/" + raw, nil
	}
}

// NewStringSet builds a lookup set out of a slice of strings, ignoring empties.
func NewStringSet(items []string) StringSet {
	if len(items) == 0 {
		return nil
	}
	set := make(StringSet, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		set[item] = struct{}{}
	}
	return set
}
