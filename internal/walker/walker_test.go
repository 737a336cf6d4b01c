//go:build unix

package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivoronin/lanfsd/internal/config"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func defaultConfig() *config.SearchScanConfig {
	return &config.SearchScanConfig{}
}

func TestSkimEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	b := Skim(root, defaultConfig())

	assert.Equal(t, root, b.Path)
	assert.Empty(t, b.Files)
	assert.Empty(t, b.Children)
	assert.Empty(t, b.Err)
}

func TestSkimMixedTreeHiddenFilesExcludedByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"))
	writeFile(t, filepath.Join(root, ".hidden"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	b := Skim(root, defaultConfig())
	assert.Equal(t, []string{"a.txt"}, b.Files)
	assert.Contains(t, b.Children, "sub")
}

func TestSkimScanHiddenFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"))
	writeFile(t, filepath.Join(root, ".hidden"))

	cfg := &config.SearchScanConfig{ScanConfig: config.ScanConfig{ScanHiddenFiles: true}}
	b := Skim(root, cfg)
	assert.ElementsMatch(t, []string{"a.txt", ".hidden"}, b.Files)
}

func TestSkimIgnoredDirectoryByName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "keep"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "skip"), 0o755))

	cfg := &config.SearchScanConfig{ScanConfig: config.ScanConfig{IgnoreDirs: config.NewStringSet([]string{"skip"})}}
	b := Skim(root, cfg)
	assert.Contains(t, b.Children, "keep")
	assert.NotContains(t, b.Children, "skip")
}

func TestSkimDoesNotDescend(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "nested"), 0o755))
	writeFile(t, filepath.Join(root, "sub", "nested", "deep.txt"))

	b := Skim(root, defaultConfig())
	require.Contains(t, b.Children, "sub")
	assert.Empty(t, b.Children["sub"].Files)
	assert.Empty(t, b.Children["sub"].Children)
}

func TestSkimSymlinkNeverTraversed(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link")))

	b := Skim(root, defaultConfig())
	assert.NotContains(t, b.Children, "link")
	assert.NotContains(t, b.Files, "link")
}

func TestSkimRootNotFound(t *testing.T) {
	b := Skim("/does/not/exist/ever", defaultConfig())
	assert.Equal(t, "path does not exist", b.Err)
	assert.Empty(t, b.Files)
	assert.Empty(t, b.Children)
}

func TestSkimPermissionDenied(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	root := t.TempDir()
	denied := filepath.Join(root, "denied")
	require.NoError(t, os.Mkdir(denied, 0o000))
	defer func() { _ = os.Chmod(denied, 0o755) }()

	b := Skim(denied, defaultConfig())
	assert.NotEmpty(t, b.Err)
	assert.Empty(t, b.Files)
	assert.Empty(t, b.Children)
}
