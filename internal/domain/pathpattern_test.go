package domain

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePathPattern_CommonVars(t *testing.T) {
	got := ResolvePathPattern("{common:plugin-data}/notes.db", "abc-uuid", "/data", "/cache")
	assert.Equal(t, filepath.Join("/data", "abc-uuid", "notes.db"), got)

	got = ResolvePathPattern("{common:plugin-cache}/thumb.png", "abc-uuid", "/data", "/cache")
	assert.Equal(t, filepath.Join("/cache", "abc-uuid", "thumb.png"), got)
}

func TestResolvePathPattern_OSScopedVarsAreNoOpsElsewhere(t *testing.T) {
	home, _ := os.UserHomeDir()

	macos := ResolvePathPattern("{macos:user-home}/Documents", "u", "/data", "/cache")
	linux := ResolvePathPattern("{linux:user-home}/Documents", "u", "/data", "/cache")
	windows := ResolvePathPattern("{windows:user-home}/Documents", "u", "/data", "/cache")

	switch runtime.GOOS {
	case "darwin":
		assert.Equal(t, home+"/Documents", macos)
		assert.Equal(t, "", linux)
		assert.Equal(t, "", windows)
	case "linux":
		assert.Equal(t, "", macos)
		assert.Equal(t, home+"/Documents", linux)
		assert.Equal(t, "", windows)
	case "windows":
		assert.Equal(t, "", macos)
		assert.Equal(t, "", linux)
		assert.Equal(t, home+"/Documents", windows)
	}
}
