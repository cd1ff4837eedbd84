package domain

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// pathPatternVar is one {os:name} token a filesystem permission pattern may embed.
type pathPatternVar struct {
	token string
	os    string // "darwin", "linux", "windows" (runtime.GOOS values), or "" for common (all OSes)
}

var pathPatternVars = []pathPatternVar{
	{token: "{macos:user-home}", os: "darwin"},
	{token: "{linux:user-home}", os: "linux"},
	{token: "{windows:user-home}", os: "windows"},
	{token: "{common:plugin-data}", os: ""},
	{token: "{common:plugin-cache}", os: ""},
}

// ResolvePathPattern expands the OS-scoped and common variables in a
// filesystem permission pattern. A pattern containing a variable scoped to a
// different OS than the one running resolves to "" as a whole, which matches
// no path, so the permission is a no-op on that OS.
func ResolvePathPattern(pattern, pluginUUID, dataDir, cacheDir string) string {
	home, _ := os.UserHomeDir()
	out := pattern
	for _, v := range pathPatternVars {
		var replacement string
		switch v.token {
		case "{common:plugin-data}":
			replacement = filepath.Join(dataDir, pluginUUID)
		case "{common:plugin-cache}":
			replacement = filepath.Join(cacheDir, pluginUUID)
		default:
			if v.os != runtime.GOOS {
				if strings.Contains(out, v.token) {
					return ""
				}
				continue
			}
			replacement = home
		}
		out = strings.ReplaceAll(out, v.token, replacement)
	}
	return out
}
