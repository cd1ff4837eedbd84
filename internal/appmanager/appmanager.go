// Copyright 2025 James Ross

// Package appmanager implements ApplicationManager: the single orchestration
// point wiring together the repository, search index, global shortcuts,
// plugin downloads, and one PluginRuntime per enabled plugin.
package appmanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/globalshortcut"
	"github.com/gauntlet-host/launcherd/internal/obs"
	"github.com/gauntlet-host/launcherd/internal/plugindownload"
	"github.com/gauntlet-host/launcherd/internal/pluginruntime"
	"github.com/gauntlet-host/launcherd/internal/repository"
	"github.com/gauntlet-host/launcherd/internal/runstatus"
	"github.com/gauntlet-host/launcherd/internal/searchindex"
	"github.com/gauntlet-host/launcherd/internal/widgetmodel"
)

// runningPlugin is the in-memory state kept for a plugin with a live
// PluginRuntime, plus the per-entrypoint function-listener tables recorded
// by its most recent rendered view.
type runningPlugin struct {
	plugin      domain.Plugin
	entrypoints map[string]domain.Entrypoint

	runtime *pluginruntime.Runtime
	ops     *pluginruntime.Ops
	guard   *runstatus.RunStatusGuard
	events  chan pluginruntime.Event

	tableMu sync.Mutex
	tables  map[string]*widgetmodel.EventTable // entrypointID -> its open view's listeners
}

// storeHandlers records the function-valued listeners from a just-rendered
// view, creating that entrypoint's event table on first use.
func (rp *runningPlugin) storeHandlers(entrypointID string, handlers map[widgetmodel.EventListenerKey]widgetmodel.Handler) {
	rp.tableMu.Lock()
	t, ok := rp.tables[entrypointID]
	if !ok {
		t = widgetmodel.NewEventTable()
		rp.tables[entrypointID] = t
	}
	rp.tableMu.Unlock()
	t.Replace(handlers)
}

// lookupHandler finds the listener registered for (widgetID, property) on
// entrypointID's currently open view, if any.
func (rp *runningPlugin) lookupHandler(entrypointID string, widgetID uint32, property string) (widgetmodel.Handler, bool) {
	rp.tableMu.Lock()
	t, ok := rp.tables[entrypointID]
	rp.tableMu.Unlock()
	if !ok {
		return nil, false
	}
	return t.Lookup(widgetID, property)
}

// clearHandlers drops entrypointID's event table, used when its view closes.
func (rp *runningPlugin) clearHandlers(entrypointID string) {
	rp.tableMu.Lock()
	t, ok := rp.tables[entrypointID]
	rp.tableMu.Unlock()
	if ok {
		t.Clear()
	}
}

// ApplicationManager is the unchanged-contract orchestration surface named
// by the operations below: Setup, Search, RunAction, the plugin/entrypoint
// state setters, shortcut and preference setters, plugin download, and the
// keyboard/view event forwarders.
type ApplicationManager struct {
	logger *zap.Logger

	repo       *repository.Store
	index      *searchindex.Index
	shortcuts  *globalshortcut.Dispatcher
	runStatus  *runstatus.RunStatus
	downloader *plugindownload.Fetcher
	schema     *widgetmodel.Schema
	assetStore widgetmodel.AssetStore
	clipboard  pluginruntime.ClipboardBackend
	limits     pluginruntime.Limits
	dataDir    string

	mu      sync.RWMutex
	plugins map[domain.PluginID]*runningPlugin

	hostEvents chan HostMessage
}

// New constructs an ApplicationManager. dataDir is the root under which
// fetched plugin bundles are installed (dataDir/installed/<sanitized id>).
func New(
	repo *repository.Store,
	index *searchindex.Index,
	shortcuts *globalshortcut.Dispatcher,
	runStatus *runstatus.RunStatus,
	downloader *plugindownload.Fetcher,
	schema *widgetmodel.Schema,
	assetStore widgetmodel.AssetStore,
	clipboard pluginruntime.ClipboardBackend,
	limits pluginruntime.Limits,
	dataDir string,
	logger *zap.Logger,
) *ApplicationManager {
	return &ApplicationManager{
		logger:     logger,
		repo:       repo,
		index:      index,
		shortcuts:  shortcuts,
		runStatus:  runStatus,
		downloader: downloader,
		schema:     schema,
		assetStore: assetStore,
		clipboard:  clipboard,
		limits:     limits,
		dataDir:    dataDir,
		plugins:    make(map[domain.PluginID]*runningPlugin),
		hostEvents: make(chan HostMessage, 64),
	}
}

// HostEvents returns the channel rpcserver fans out to the front-end as
// host-initiated messages (replace_view, show_hud, set_theme, ...).
func (m *ApplicationManager) HostEvents() <-chan HostMessage {
	return m.hostEvents
}

// UISetupData is the front-end's initial bootstrap payload.
type UISetupData struct {
	Theme              string
	WindowPositionMode string
	CloseOnUnfocus     bool
}

// Setup loads application settings, starts every enabled plugin's runtime,
// and re-registers persisted global/entrypoint shortcuts. Per-plugin start
// failures are logged and leave that plugin stopped; Setup itself only
// fails on a repository error.
func (m *ApplicationManager) Setup(ctx context.Context) (UISetupData, error) {
	ctx, span := obs.StartPluginLoadSpan(ctx, "setup")
	defer span.End()

	settings, err := m.repo.GetSettings(ctx)
	if err != nil {
		obs.RecordError(ctx, err)
		return UISetupData{}, domain.NewBackendError("setup", err)
	}
	data := UISetupData{
		Theme:              settingOr(settings, "theme", "system"),
		WindowPositionMode: settingOr(settings, "window_position_mode", "active_monitor_center"),
		CloseOnUnfocus:     settings["close_on_unfocus"] == "true",
	}

	plugins, err := m.repo.ListPlugins(ctx)
	if err != nil {
		obs.RecordError(ctx, err)
		return UISetupData{}, domain.NewBackendError("setup", err)
	}
	for _, p := range plugins {
		if !p.Enabled {
			continue
		}
		if err := m.startPlugin(ctx, p); err != nil {
			m.logger.Warn("plugin failed to start during setup",
				zap.String("plugin_id", string(p.ID)), zap.Error(err))
		}
	}

	if err := m.setupShortcuts(ctx); err != nil {
		m.logger.Warn("failed to restore persisted shortcuts", zap.Error(err))
	}

	obs.SetSpanSuccess(ctx)
	return data, nil
}

func (m *ApplicationManager) setupShortcuts(ctx context.Context) error {
	stored, err := m.repo.ActionShortcuts(ctx)
	if err != nil {
		return fmt.Errorf("appmanager: load persisted shortcuts: %w", err)
	}
	persisted := make([]globalshortcut.PersistedShortcut, len(stored))
	for i, s := range stored {
		persisted[i] = globalshortcut.PersistedShortcut{
			PluginID:     s.PluginID,
			EntrypointID: s.EntrypointID,
			Shortcut:     s.Shortcut,
		}
	}
	for _, res := range m.shortcuts.Setup(persisted) {
		errStr := ""
		if res.Err != nil {
			errStr = res.Err.Error()
		}
		shortcut := res.Shortcut.Shortcut
		if err := m.repo.SetShortcut(ctx, res.Shortcut.PluginID, res.Shortcut.EntrypointID, &shortcut, errStr); err != nil {
			m.logger.Warn("failed to persist shortcut registration result",
				zap.String("plugin_id", string(res.Shortcut.PluginID)), zap.Error(err))
		}
	}
	return nil
}

// startPlugin constructs a plugin's Ops and Runtime from p (running the code
// the caller already loaded into p.Code), records it as running, indexes its
// search entries, and pumps its outbound event stream. Property P4: a start
// for a plugin that already has a runtime returns without creating another.
func (m *ApplicationManager) startPlugin(ctx context.Context, p domain.Plugin) error {
	ctx, span := obs.StartPluginLoadSpan(ctx, string(p.ID))
	defer span.End()

	m.mu.Lock()
	if _, already := m.plugins[p.ID]; already {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	entrypoints, err := m.repo.GetEntrypointsByPluginID(ctx, p.ID)
	if err != nil {
		obs.RecordError(ctx, err)
		obs.PluginsLoadFailed.Inc()
		return domain.NewBackendError("start_plugin", err)
	}
	entrypointMap := make(map[string]domain.Entrypoint, len(entrypoints))
	for _, e := range entrypoints {
		entrypointMap[e.ID] = e
	}

	events := make(chan pluginruntime.Event, 32)
	ops := pluginruntime.NewOps(p.ID, p.Permissions, m.schema, m.assetStore, events, m.index, m.clipboard, m.logger, opsMetadataFor(p, entrypointMap))
	rt, err := pluginruntime.New(p.ID, p.Code, ops, m.limits, m.logger.With(zap.String("plugin_id", string(p.ID))))
	if err != nil {
		obs.RecordError(ctx, err)
		obs.PluginsLoadFailed.Inc()
		return domain.NewConfigError("start_plugin", fmt.Sprintf("plugin %s failed to start its runtime", p.ID), err)
	}

	runCtx, guard := m.runStatus.StartBlock(context.Background(), p.ID)
	rp := &runningPlugin{
		plugin:      p,
		entrypoints: entrypointMap,
		runtime:     rt,
		ops:         ops,
		guard:       guard,
		events:      events,
		tables:      make(map[string]*widgetmodel.EventTable),
	}

	rt.SetHandlerSink(rp.storeHandlers)

	m.mu.Lock()
	m.plugins[p.ID] = rp
	m.mu.Unlock()

	go m.pumpEvents(runCtx, rp)

	m.index.SaveForPlugin(p.ID, p.Name, buildSearchItems(p.ID, entrypoints), false)
	obs.PluginsLoaded.Inc()
	obs.PluginsActive.Inc()
	obs.SetSpanSuccess(ctx)
	return nil
}

// opsMetadataFor collects a plugin's declared preference schemas, current
// preference values, and enabled entrypoint-generator ids into the shape
// pluginruntime.Ops needs to answer preference/generator introspection ops.
func opsMetadataFor(p domain.Plugin, entrypoints map[string]domain.Entrypoint) pluginruntime.OpsMetadata {
	entrypointPrefs := make(map[string]map[string]domain.PreferenceSchema, len(entrypoints))
	entrypointPrefValues := make(map[string]map[string]domain.PreferenceValue, len(entrypoints))
	var generatorIDs []string
	for id, e := range entrypoints {
		if len(e.Preferences) > 0 {
			entrypointPrefs[id] = e.Preferences
		}
		if len(e.PreferencesUserData) > 0 {
			entrypointPrefValues[id] = e.PreferencesUserData
		}
		if e.Type == domain.EntrypointGeneratorEntrypoint && e.Enabled {
			generatorIDs = append(generatorIDs, id)
		}
	}
	return pluginruntime.OpsMetadata{
		PluginPreferences:          p.Preferences,
		PluginPreferenceValues:     p.PreferencesUserData,
		EntrypointPreferences:      entrypointPrefs,
		EntrypointPreferenceValues: entrypointPrefValues,
		GeneratorEntrypointIDs:     generatorIDs,
	}
}

// stopPlugin tears down a running plugin's runtime: it closes the run-status
// guard, the runtime and the event channel. It does not touch the search
// index; SetPluginState removes a disabled plugin's entries itself.
func (m *ApplicationManager) stopPlugin(pluginID domain.PluginID) {
	m.mu.Lock()
	rp, ok := m.plugins[pluginID]
	if ok {
		delete(m.plugins, pluginID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	rp.guard.Close()
	rp.runtime.Close()
	close(rp.events)
	obs.PluginsUnloaded.Inc()
	obs.PluginsActive.Dec()
}

func (m *ApplicationManager) running(pluginID domain.PluginID) (*runningPlugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rp, ok := m.plugins[pluginID]
	return rp, ok
}

// Close stops every running plugin runtime. Called at process shutdown.
func (m *ApplicationManager) Close() {
	m.mu.Lock()
	ids := make([]domain.PluginID, 0, len(m.plugins))
	for id := range m.plugins {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.stopPlugin(id)
	}
}

func settingOr(s repository.Settings, key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

var idSanitizePattern = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeInstallDirName maps a URI-like PluginID to a safe directory name
// for its local bundle install root.
func sanitizeInstallDirName(pluginID domain.PluginID) string {
	return idSanitizePattern.ReplaceAllString(string(pluginID), "_")
}

func (m *ApplicationManager) installDir(pluginID domain.PluginID) string {
	return filepath.Join(m.dataDir, "installed", sanitizeInstallDirName(pluginID))
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
