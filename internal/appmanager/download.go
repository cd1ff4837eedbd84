package appmanager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/plugindownload"
	"github.com/gauntlet-host/launcherd/internal/repository"
)

// DownloadPhase is the closed set of states a plugin download can be in.
type DownloadPhase string

const (
	DownloadInProgress DownloadPhase = "in_progress"
	DownloadComplete    DownloadPhase = "complete"
	DownloadFailed      DownloadPhase = "failed"
)

// DownloadState is the latest known status of one plugin's download, kept
// for DownloadStatus to poll without blocking on the fetch itself.
type DownloadState struct {
	Phase DownloadPhase
	Err   error
}

var (
	downloadMu    sync.Mutex
	downloadState = map[domain.PluginID]*DownloadState{}
)

// DownloadPlugin shallow-clones repoURL, installs its highest-versioned
// bundle under this manager's data directory, persists its manifest-derived
// metadata, and starts its runtime. The plugin id is the repo URL itself,
// matching domain.PluginID's documented Git-URL form. Download runs
// synchronously; DownloadStatus exists for a front-end that wants to poll a
// separately kicked-off download rather than block its own request.
func (m *ApplicationManager) DownloadPlugin(ctx context.Context, repoURL string, token plugindownload.AuthToken) (domain.PluginID, error) {
	pluginID := domain.PluginID(repoURL)
	setDownloadState(pluginID, &DownloadState{Phase: DownloadInProgress})

	bundle, err := m.downloader.Fetch(repoURL, token)
	if err != nil {
		setDownloadState(pluginID, &DownloadState{Phase: DownloadFailed, Err: err})
		return "", err
	}

	if err := m.installBundle(ctx, pluginID, bundle); err != nil {
		setDownloadState(pluginID, &DownloadState{Phase: DownloadFailed, Err: err})
		return "", err
	}

	setDownloadState(pluginID, &DownloadState{Phase: DownloadComplete})
	return pluginID, nil
}

// DownloadStatus reports the last known phase of a DownloadPlugin call for
// pluginID, or ok=false if none has been attempted this process lifetime.
func (m *ApplicationManager) DownloadStatus(pluginID domain.PluginID) (DownloadState, bool) {
	downloadMu.Lock()
	defer downloadMu.Unlock()
	s, ok := downloadState[pluginID]
	if !ok {
		return DownloadState{}, false
	}
	return *s, true
}

func setDownloadState(pluginID domain.PluginID, s *DownloadState) {
	downloadMu.Lock()
	downloadState[pluginID] = s
	downloadMu.Unlock()
}

// installBundle moves a fetched bundle into its permanent install
// directory, persists the plugin and its entrypoints, and starts its
// runtime.
func (m *ApplicationManager) installBundle(ctx context.Context, pluginID domain.PluginID, bundle *plugindownload.Bundle) error {
	dest := m.installDir(pluginID)
	if err := os.RemoveAll(dest); err != nil {
		return domain.NewDownloadError(pluginID, fmt.Errorf("clear previous install: %w", err))
	}
	if err := ensureDir(filepath.Dir(dest)); err != nil {
		return domain.NewDownloadError(pluginID, err)
	}
	if err := os.Rename(bundle.SourceDir, dest); err != nil {
		if err := copyDir(bundle.SourceDir, dest); err != nil {
			return domain.NewDownloadError(pluginID, fmt.Errorf("install bundle: %w", err))
		}
	}

	perms := bundle.Manifest.ToPermissions()
	plugin := domain.Plugin{
		ID:                  pluginID,
		UUID:                uuid.NewString(),
		Name:                bundle.Manifest.Name,
		Description:         bundle.Manifest.Description,
		Enabled:             true,
		Code:                bundle.Code,
		Permissions:         perms,
		Preferences:         manifestPreferencesToDomain(bundle.Manifest.Preferences),
		PreferencesUserData: map[string]domain.PreferenceValue{},
	}
	if err := m.repo.SavePlugin(ctx, plugin); err != nil {
		return domain.NewBackendError("install_bundle", err)
	}

	for _, me := range bundle.Manifest.Entrypoints {
		ep := domain.Entrypoint{
			ID:                  me.ID,
			UUID:                uuid.NewString(),
			PluginID:            pluginID,
			Name:                me.Name,
			Description:         me.Description,
			Enabled:             true,
			Type:                domain.EntrypointType(me.Type),
			IconPath:            me.Icon,
			Preferences:         manifestPreferencesToDomain(me.Preferences),
			PreferencesUserData: map[string]domain.PreferenceValue{},
			Actions:             manifestActionsToDomain(me.Actions),
		}
		if err := m.repo.SaveEntrypoint(ctx, ep); err != nil {
			return domain.NewBackendError("install_bundle", err)
		}
	}

	if err := m.startPlugin(ctx, plugin); err != nil {
		m.logger.Warn("newly installed plugin failed to start", zap.String("plugin_id", string(pluginID)), zap.Error(err))
	}
	return m.reindexPlugin(ctx, pluginID)
}

// LoadBundledPlugins installs every plugin found under globPattern (each
// match a root directory in plugindownload.Fetcher.LoadLocal's
// root/plugins/v<N> layout) that the repository doesn't already know about,
// tagging each with a bundled:// plugin id derived from its directory name.
// Called once at daemon startup to seed plugins shipped inside the app
// itself, using the bundled:// plugin id scheme.
func (m *ApplicationManager) LoadBundledPlugins(ctx context.Context, globPattern string) error {
	matches, err := filepath.Glob(globPattern)
	if err != nil {
		return fmt.Errorf("appmanager: bundled plugins glob %q: %w", globPattern, err)
	}
	for _, dir := range matches {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		pluginID := domain.PluginID("bundled://" + filepath.Base(dir))
		if _, err := m.repo.GetPluginByID(ctx, pluginID); !errors.Is(err, repository.ErrNotFound) {
			continue // already installed, or a real lookup error we'd rather surface on next use
		}
		bundle, err := m.downloader.LoadLocal(dir)
		if err != nil {
			m.logger.Warn("bundled plugin failed to load", zap.String("dir", dir), zap.Error(err))
			continue
		}
		if err := m.installBundle(ctx, pluginID, bundle); err != nil {
			m.logger.Warn("bundled plugin failed to install", zap.String("plugin_id", string(pluginID)), zap.Error(err))
		}
	}
	return nil
}

// loadInstalledCode re-reads a previously installed plugin's bundle from
// its on-disk install directory, used when re-enabling a plugin whose
// runtime was stopped.
func (m *ApplicationManager) loadInstalledCode(pluginID domain.PluginID) (domain.PluginCode, error) {
	bundle, err := m.downloader.LoadLocal(m.installDir(pluginID))
	if err != nil {
		return domain.PluginCode{}, err
	}
	return bundle.Code, nil
}

func manifestPreferencesToDomain(in map[string]domain.ManifestPref) map[string]domain.PreferenceSchema {
	out := make(map[string]domain.PreferenceSchema, len(in))
	for name, p := range in {
		opts := make([]domain.EnumOption, 0, len(p.EnumOptions))
		for _, o := range p.EnumOptions {
			opts = append(opts, domain.EnumOption{Label: o.Label, Value: o.Value})
		}
		out[name] = domain.PreferenceSchema{
			Kind:        domain.PreferenceKind(p.Kind),
			EnumOptions: opts,
			Required:    p.Required,
		}
	}
	return out
}

func manifestActionsToDomain(in []domain.ManifestAction) []domain.Action {
	out := make([]domain.Action, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Action{ID: a.ID, Label: a.Label})
	}
	return out
}

// copyDir recursively copies src into dst, used as a fallback for
// installBundle's rename when the clone and install dirs sit on different
// filesystems.
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
