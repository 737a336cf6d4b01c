// Package walker implements a single, non-recursive directory enumeration —
// the "skim" the scan engine drives repeatedly to build a full tree.
package walker

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ivoronin/lanfsd/internal/bucket"
	"github.com/ivoronin/lanfsd/internal/config"
	"github.com/ivoronin/lanfsd/internal/filter"
)

// batchSize bounds how many directory entries are read per ReadDir call, so
// memory use stays flat even for directories with millions of entries.
const batchSize = 1000

// Skim enumerates a single directory and returns a new Bucket.
//
// For each entry: a regular file accepted by filter.ConsiderFile is appended
// to the Bucket's Files; a directory rejected by filter.IgnoreDir becomes a
// child Bucket (not descended into). Symlinks are never followed — neither as
// files nor as directories. If enumeration fails at any point, any partial
// work is discarded and the returned Bucket carries only Err.
func Skim(path string, cfg *config.SearchScanConfig) *bucket.Bucket {
	dir, err := os.Open(path)
	if err != nil {
		return errorBucket(path, err)
	}
	defer func() { _ = dir.Close() }()

	b := bucket.New(path)
	for {
		entries, err := dir.ReadDir(batchSize)
		if len(entries) == 0 {
			if err != nil && err != io.EOF {
				return errorBucket(path, err)
			}
			break
		}

		for _, entry := range entries {
			processEntry(b, path, cfg, entry)
		}
	}
	return b
}

func processEntry(b *bucket.Bucket, dirPath string, cfg *config.SearchScanConfig, entry os.DirEntry) {
	name := entry.Name()
	fullPath := filepath.Join(dirPath, name)

	switch {
	case entry.IsDir():
		if !filter.IgnoreDir(&cfg.ScanConfig, fullPath, name) {
			b.AddChild(name, bucket.New(fullPath))
		}
	case entry.Type().IsRegular():
		if filter.ConsiderFile(cfg, name) {
			b.Files = append(b.Files, name)
		}
	default:
		// symlinks, devices, sockets, etc. are never traversed or matched
	}
}

func errorBucket(path string, err error) *bucket.Bucket {
	b := bucket.New(path)
	if os.IsNotExist(err) {
		b.Err = "path does not exist"
	} else {
		b.Err = err.Error()
	}
	return b
}
