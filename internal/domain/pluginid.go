package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// PluginIDScheme is the closed set of recognized PluginID forms.
type PluginIDScheme string

const (
	PluginIDBundled PluginIDScheme = "bundled"
	PluginIDFile    PluginIDScheme = "file"
	PluginIDGit     PluginIDScheme = "git"
)

var scpLikeRe = regexp.MustCompile(`^[\w.-]+@[\w.-]+:[\w./-]+(\.git)?$`)

// Scheme classifies a PluginID into bundled/file/git. A bare scp-like Git
// remote (git@host:path) is recognized as Git without requiring ssh://.
func (id PluginID) Scheme() (PluginIDScheme, error) {
	s := string(id)
	switch {
	case strings.HasPrefix(s, "bundled://"):
		return PluginIDBundled, nil
	case strings.HasPrefix(s, "file://"):
		return PluginIDFile, nil
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"),
		strings.HasPrefix(s, "ssh://"), strings.HasPrefix(s, "git://"):
		return PluginIDGit, nil
	case scpLikeRe.MatchString(s):
		return PluginIDGit, nil
	default:
		return "", fmt.Errorf("plugin id %q matches no recognized scheme", s)
	}
}

// GitURL normalizes a Git-scheme PluginID to a URL go-git can clone,
// rewriting scp-like remotes (git@host:path) to ssh://git@host/path.
func (id PluginID) GitURL() (string, error) {
	scheme, err := id.Scheme()
	if err != nil {
		return "", err
	}
	if scheme != PluginIDGit {
		return "", fmt.Errorf("plugin id %q is not a git remote", id)
	}
	s := string(id)
	if scpLikeRe.MatchString(s) && !strings.Contains(s, "://") {
		at := strings.Index(s, "@")
		colon := strings.Index(s, ":")
		user, host, path := s[:at], s[at+1:colon], s[colon+1:]
		return fmt.Sprintf("ssh://%s@%s/%s", user, host, path), nil
	}
	return s, nil
}
