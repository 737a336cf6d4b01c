package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRootPath(t *testing.T) {
	home, err := os.UserHomeDir()
	assert.NoError(t, err)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"absolute", "/tmp/foo", "/tmp/foo"},
		{"home", "~", home},
		{"home subpath", "~/docs", home + "/docs"},
		{"relative", "docs/notes", home + "/docs/notes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeRootPath(tc.in)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHasIgnoreDir(t *testing.T) {
	cfg := &ScanConfig{IgnoreDirs: NewStringSet([]string{"skip", "/abs/path"})}

	assert.True(t, cfg.HasIgnoreDir("/whatever/skip", "skip"))
	assert.True(t, cfg.HasIgnoreDir("/abs/path", "path"))
	assert.False(t, cfg.HasIgnoreDir("/whatever/keep", "keep"))

	var nilCfg *ScanConfig
	assert.False(t, nilCfg.HasIgnoreDir("/x", "x"))
}

func TestNewStringSetSkipsEmpty(t *testing.T) {
	set := NewStringSet([]string{"a", "", "b"})
	assert.Len(t, set, 2)
	_, ok := set[""]
	assert.False(t, ok)

	assert.Nil(t, NewStringSet(nil))
}
