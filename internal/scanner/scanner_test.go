//go:build unix

package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivoronin/lanfsd/internal/bucket"
	"github.com/ivoronin/lanfsd/internal/config"
)

func mkfile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScannerEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	b := New(&config.SearchScanConfig{}, 4, false, nil).Run(root)

	assert.Equal(t, root, b.Path)
	assert.Empty(t, b.Files)
	assert.Empty(t, b.Children)
	s := bucket.Summarize(b)
	assert.Equal(t, bucket.Summary{}, s)
}

func TestScannerNestedTreeAndSummary(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	mkfile(t, filepath.Join(root, "sub", "b.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub", "deeper"), 0o755))
	mkfile(t, filepath.Join(root, "sub", "deeper", "c.txt"))

	b := New(&config.SearchScanConfig{}, 4, false, nil).Run(root)
	s := bucket.Summarize(b)
	assert.Equal(t, 0, s.Errors)
	assert.Equal(t, 2, s.Dirs)
	assert.Equal(t, 3, s.Files)
}

func TestScannerRootNotFoundStartsNoWorkers(t *testing.T) {
	b := New(&config.SearchScanConfig{}, 4, false, nil).Run("/does/not/exist")
	assert.NotEmpty(t, b.Err)
	assert.Empty(t, b.Children)
}

func TestScannerPermissionErrorIsolated(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	root := t.TempDir()
	denied := filepath.Join(root, "denied")
	require.NoError(t, os.Mkdir(denied, 0o000))
	defer func() { _ = os.Chmod(denied, 0o755) }()
	ok := filepath.Join(root, "ok")
	require.NoError(t, os.Mkdir(ok, 0o755))
	mkfile(t, filepath.Join(ok, "f.txt"))

	errCh := make(chan error, 10)
	b := New(&config.SearchScanConfig{}, 4, false, errCh).Run(root)
	close(errCh)

	require.Contains(t, b.Children, "denied")
	require.Contains(t, b.Children, "ok")
	assert.NotEmpty(t, b.Children["denied"].Err)
	assert.Empty(t, b.Children["denied"].Children)
	assert.Equal(t, []string{"f.txt"}, b.Children["ok"].Files)

	s := bucket.Summarize(b)
	assert.Equal(t, 1, s.Errors)

	var errCount int
	for range errCh {
		errCount++
	}
	assert.Equal(t, 1, errCount)
}

func TestScannerSearchFiltersExtensionCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a.PNG"))
	mkfile(t, filepath.Join(root, "b.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	mkfile(t, filepath.Join(root, "sub", "c.png"))

	cfg := &config.SearchScanConfig{SearchFileExtensions: config.NewStringSet([]string{"png"})}
	b := New(cfg, 4, false, nil).Run(root)

	assert.Equal(t, []string{"a.PNG"}, b.Files)
	require.Contains(t, b.Children, "sub")
	assert.Equal(t, []string{"c.png"}, b.Children["sub"].Files)
}

func TestScannerIdempotentUpToOrdering(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	mkfile(t, filepath.Join(root, "sub", "b.txt"))

	cfg := &config.SearchScanConfig{}
	first := New(cfg, 4, false, nil).Run(root)
	second := New(cfg, 4, false, nil).Run(root)

	assert.Equal(t, bucket.Summarize(first), bucket.Summarize(second))
	assert.ElementsMatch(t, first.Files, second.Files)
	assert.ElementsMatch(t, first.Children["sub"].Files, second.Children["sub"].Files)
}

func TestScannerManySubdirectoriesStressesWorkerPool(t *testing.T) {
	root := t.TempDir()
	const n = 120
	for i := 0; i < n; i++ {
		dir := filepath.Join(root, "d"+string(rune('a'+i%26))+string(rune('0'+i/26)))
		require.NoError(t, os.Mkdir(dir, 0o755))
		mkfile(t, filepath.Join(dir, "f.txt"))
	}

	b := New(&config.SearchScanConfig{}, 8, false, nil).Run(root)
	s := bucket.Summarize(b)
	assert.Equal(t, n, s.Dirs)
	assert.Equal(t, n, s.Files)
}
