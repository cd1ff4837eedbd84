// Copyright 2025 James Ross

// Package plugindownload fetches a plugin bundle from its Git source: a
// shallow clone, selection of the highest plugins/v<N> revision, and a
// read of that revision's manifest and JS sources into memory for
// appmanager to install. Assets stay on disk, referenced by Bundle.AssetRoot.
package plugindownload

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gogithttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gogissh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"go.uber.org/zap"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// Bundle is one fetched plugin revision, ready for appmanager to install.
type Bundle struct {
	Manifest   *domain.Manifest
	Code       domain.PluginCode
	AssetRoot  string // local filesystem path to the bundle's assets/ dir
	SourceDir  string // local filesystem path to the selected plugins/v<N> dir
	CommitHash string
	Version    int
}

// AuthToken configures HTTP basic-auth-over-token for private repos; SSH
// clone URLs instead rely on the local SSH agent, matching go-git's default.
type AuthToken string

// Fetcher clones plugin repos into a scratch directory and selects their
// highest versioned bundle.
type Fetcher struct {
	workDir string
	logger  *zap.Logger
}

// New constructs a Fetcher that clones under workDir (created if absent).
func New(workDir string, logger *zap.Logger) *Fetcher {
	return &Fetcher{workDir: workDir, logger: logger}
}

var versionDirPattern = regexp.MustCompile(`^v(\d+)$`)

// Fetch shallow-clones repoURL and returns the highest plugins/v<N> bundle
// it finds. The clone is left on disk under f.workDir so AssetRoot remains
// valid for the caller to read assets from after Fetch returns.
func (f *Fetcher) Fetch(repoURL string, token AuthToken) (*Bundle, error) {
	if err := os.MkdirAll(f.workDir, 0o755); err != nil {
		return nil, domain.NewDownloadError("", fmt.Errorf("create work dir: %w", err))
	}
	cloneDir, err := os.MkdirTemp(f.workDir, "plugin-*")
	if err != nil {
		return nil, domain.NewDownloadError("", fmt.Errorf("create clone dir: %w", err))
	}

	cloneOpts := &gogit.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		SingleBranch: true,
	}
	if auth := authMethod(repoURL, token); auth != nil {
		cloneOpts.Auth = auth
	}

	f.logger.Info("cloning plugin repository", zap.String("repo_url", repoURL), zap.String("dir", cloneDir))
	repo, err := gogit.PlainClone(cloneDir, false, cloneOpts)
	if err != nil {
		os.RemoveAll(cloneDir)
		return nil, domain.NewDownloadError("", fmt.Errorf("clone %s: %w", repoURL, err))
	}

	head, err := repo.Head()
	commitHash := ""
	if err == nil {
		commitHash = head.Hash().String()
	}

	pluginsDir := filepath.Join(cloneDir, "plugins")
	version, versionDir, err := highestVersionDir(pluginsDir)
	if err != nil {
		os.RemoveAll(cloneDir)
		return nil, domain.NewDownloadError("", err)
	}

	manifest, code, err := readBundle(versionDir)
	if err != nil {
		os.RemoveAll(cloneDir)
		return nil, domain.NewDownloadError(domain.PluginID(manifestIDOrEmpty(manifest)), err)
	}

	return &Bundle{
		Manifest:   manifest,
		Code:       code,
		AssetRoot:  filepath.Join(versionDir, "assets"),
		SourceDir:  versionDir,
		CommitHash: commitHash,
		Version:    version,
	}, nil
}

// LoadLocal reads a plugin bundle already present on disk under root
// (root/plugins/v<N>/...), for bundled or in-development plugins that
// don't go through Fetch's Git clone step.
func (f *Fetcher) LoadLocal(root string) (*Bundle, error) {
	pluginsDir := filepath.Join(root, "plugins")
	version, versionDir, err := highestVersionDir(pluginsDir)
	if err != nil {
		return nil, domain.NewDownloadError("", err)
	}
	manifest, code, err := readBundle(versionDir)
	if err != nil {
		return nil, domain.NewDownloadError(domain.PluginID(manifestIDOrEmpty(manifest)), err)
	}
	return &Bundle{
		Manifest:  manifest,
		Code:      code,
		AssetRoot: filepath.Join(versionDir, "assets"),
		SourceDir: versionDir,
		Version:   version,
	}, nil
}

func manifestIDOrEmpty(m *domain.Manifest) string {
	if m == nil {
		return ""
	}
	return m.Name
}

func authMethod(repoURL string, token AuthToken) transport.AuthMethod {
	switch {
	case token != "" && (strings.HasPrefix(repoURL, "http://") || strings.HasPrefix(repoURL, "https://")):
		return &gogithttp.BasicAuth{Username: "git", Password: string(token)}
	case strings.HasPrefix(repoURL, "ssh://") || strings.Contains(repoURL, "git@"):
		auth, err := gogissh.DefaultAuthBuilder("git")
		if err == nil {
			return auth
		}
	}
	return nil
}

// highestVersionDir picks the plugins/v<N> subdirectory with the greatest N.
func highestVersionDir(pluginsDir string) (int, string, error) {
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		return 0, "", fmt.Errorf("read plugins directory: %w", err)
	}

	best := -1
	var bestName string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := versionDirPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > best {
			best = n
			bestName = e.Name()
		}
	}
	if best < 0 {
		return 0, "", fmt.Errorf("no plugins/v<N> directory found under %s", pluginsDir)
	}
	return best, filepath.Join(pluginsDir, bestName), nil
}

// readBundle loads the manifest and every js/ source file under versionDir.
func readBundle(versionDir string) (*domain.Manifest, domain.PluginCode, error) {
	raw, err := os.ReadFile(filepath.Join(versionDir, "gauntlet.yaml"))
	if err != nil {
		return nil, domain.PluginCode{}, fmt.Errorf("read manifest: %w", err)
	}
	manifest, err := domain.ParseManifest(raw)
	if err != nil {
		return nil, domain.PluginCode{}, err
	}

	code := domain.PluginCode{
		EntrypointSources: map[string]string{},
		ModuleSources:     map[string]string{},
	}

	initPath := filepath.Join(versionDir, "js", "init.js")
	if initSrc, err := os.ReadFile(initPath); err == nil {
		code.InitJS = string(initSrc)
	}

	jsDir := filepath.Join(versionDir, "js")
	err = filepath.Walk(jsDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil || info.IsDir() || !strings.HasSuffix(path, ".js") {
			return walkErr
		}
		rel, err := filepath.Rel(jsDir, path)
		if err != nil {
			return err
		}
		id := strings.TrimSuffix(filepath.ToSlash(rel), ".js")
		if id == "init" {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if isDeclaredEntrypoint(manifest, id) {
			code.EntrypointSources[id] = string(src)
		} else {
			code.ModuleSources[id] = string(src)
		}
		return nil
	})
	if err != nil {
		return nil, domain.PluginCode{}, fmt.Errorf("read js sources: %w", err)
	}

	return manifest, code, nil
}

func isDeclaredEntrypoint(m *domain.Manifest, id string) bool {
	for _, ep := range m.Entrypoints {
		epID := strings.TrimSuffix(filepath.ToSlash(ep.Path), ".js")
		if epID == id || ep.ID == id {
			return true
		}
	}
	return false
}

// Cleanup removes every clone this Fetcher made. Call once the caller has
// finished installing asset files out of the returned bundles.
func (f *Fetcher) Cleanup() {
	os.RemoveAll(f.workDir)
}
