// Package bucket defines the scan result tree and its wire encoding.
//
// The source system this was distilled from encodes a directory's scan result
// as a map with a handful of distinguished keys (__path__, __files__,
// __error__) plus one entry per subdirectory. That's a key-collision hazard
// in a statically typed language, so here it's a tagged struct; the
// distinguished-key shape is produced only at the JSON boundary, via
// MarshalJSON/UnmarshalJSON.
package bucket

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	keyPath  = "__path__"
	keyFiles = "__files__"
	keyError = "__error__"
)

// Bucket is one node in a scan result tree, corresponding to a single
// directory that was visited.
type Bucket struct {
	// Path is the directory's absolute path.
	Path string

	// Files holds the basenames of files matched in this directory. No
	// ordering is guaranteed.
	Files []string

	// Err, when non-empty, records that enumerating this directory failed.
	// When set, Children is always empty.
	Err string

	// Children maps immediate subdirectory basenames to their Bucket.
	Children map[string]*Bucket
}

// New creates an empty Bucket rooted at path.
func New(path string) *Bucket {
	return &Bucket{Path: path, Files: []string{}}
}

// HasError reports whether this Bucket recorded an enumeration failure.
func (b *Bucket) HasError() bool { return b.Err != "" }

// AddChild registers a freshly created child Bucket under name, returning it.
func (b *Bucket) AddChild(name string, child *Bucket) *Bucket {
	if b.Children == nil {
		b.Children = make(map[string]*Bucket)
	}
	b.Children[name] = child
	return child
}

// Summary is the postorder fold over a Bucket tree described in the scan
// engine's summarization step.
type Summary struct {
	Errors int
	Dirs   int
	Files  int
}

// Summarize walks b and its descendants, returning error/dir/file counts.
// The root itself is never counted as a directory.
func Summarize(root *Bucket) Summary {
	var s Summary
	summarizeInto(root, &s, false)
	return s
}

func summarizeInto(b *Bucket, s *Summary, countAsDir bool) {
	if b == nil {
		return
	}
	if countAsDir {
		s.Dirs++
	}
	if b.HasError() {
		s.Errors++
		return
	}
	s.Files += len(b.Files)
	for _, child := range b.Children {
		summarizeInto(child, s, true)
	}
}

// ShallowProjection is the {path, dirs, files, error?} view returned by a
// shallow scan: immediate subdirectory basenames only, contents not recursed.
type ShallowProjection struct {
	Path  string   `json:"path"`
	Dirs  []string `json:"dirs"`
	Files []string `json:"files"`
	Err   string   `json:"__error__,omitempty"`
}

// Project reduces a single-level Bucket (the output of one walker pass) to
// its shallow projection.
func Project(b *Bucket) ShallowProjection {
	p := ShallowProjection{
		Path:  b.Path,
		Files: b.Files,
		Err:   b.Err,
	}
	if p.Files == nil {
		p.Files = []string{}
	}
	dirs := make([]string, 0, len(b.Children))
	for name := range b.Children {
		dirs = append(dirs, name)
	}
	p.Dirs = dirs
	return p
}

// MarshalJSON emits the distinguished-key object shape the wire protocol
// requires: __path__, __files__, optional __error__, and one key per child.
func (b *Bucket) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(b.Children)+3)
	obj[keyPath] = b.Path
	files := b.Files
	if files == nil {
		files = []string{}
	}
	obj[keyFiles] = files
	if b.Err != "" {
		obj[keyError] = b.Err
	}
	for name, child := range b.Children {
		obj[name] = child
	}
	return json.Marshal(obj)
}

// UnmarshalJSON parses the distinguished-key object shape back into a Bucket,
// treating every key other than the three distinguished ones as a child
// Bucket keyed by subdirectory basename.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode bucket: %w", err)
	}

	if pathRaw, ok := raw[keyPath]; ok {
		if err := json.Unmarshal(pathRaw, &b.Path); err != nil {
			return fmt.Errorf("decode %s: %w", keyPath, err)
		}
	}
	if filesRaw, ok := raw[keyFiles]; ok {
		if err := json.Unmarshal(filesRaw, &b.Files); err != nil {
			return fmt.Errorf("decode %s: %w", keyFiles, err)
		}
	}
	if errRaw, ok := raw[keyError]; ok {
		if err := json.Unmarshal(errRaw, &b.Err); err != nil {
			return fmt.Errorf("decode %s: %w", keyError, err)
		}
	}

	for key, val := range raw {
		if key == keyPath || key == keyFiles || key == keyError {
			continue
		}
		child := &Bucket{}
		if err := json.Unmarshal(val, child); err != nil {
			return fmt.Errorf("decode child %q: %w", key, err)
		}
		b.AddChild(key, child)
	}
	return nil
}
