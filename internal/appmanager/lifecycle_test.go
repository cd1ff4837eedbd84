package appmanager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/globalshortcut"
	"github.com/gauntlet-host/launcherd/internal/plugindownload"
	"github.com/gauntlet-host/launcherd/internal/pluginruntime"
	"github.com/gauntlet-host/launcherd/internal/repository"
	"github.com/gauntlet-host/launcherd/internal/runstatus"
	"github.com/gauntlet-host/launcherd/internal/searchindex"
	"github.com/gauntlet-host/launcherd/internal/widgetmodel"
)

const genEntrypointID = "gen"

// gauntletYAMLFixture declares one entrypoint_generator entrypoint with two
// actions, its second id matching a name RunAction's named-lookup branch
// resolves in TestRunAction_S2_GeneratedEntrypointActionDispatch.
const gauntletYAMLFixture = `
name: fixture-plugin
description: test fixture
entrypoints:
  - id: gen
    name: Gen
    type: entrypoint_generator
    actions:
      - id: open
        label: Open
      - id: copy
        label: Copy
`

func writeFixtureBundle(t *testing.T, installDir string) {
	t.Helper()
	versionDir := filepath.Join(installDir, "plugins", "v1")
	require.NoError(t, os.MkdirAll(filepath.Join(versionDir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "gauntlet.yaml"), []byte(gauntletYAMLFixture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "js", "init.js"), []byte("module.exports = {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "js", genEntrypointID+".js"),
		[]byte("module.exports.default = function() { return true }"), 0o644))
}

// newTestManager wires a full ApplicationManager against a temp-dir SQLite
// store and a fake hotkey backend, mirroring repository_test.go's
// newTestStore helper.
func newTestManager(t *testing.T) (*ApplicationManager, domain.PluginID) {
	t.Helper()
	dataDir := t.TempDir()
	logger := zap.NewNop()

	dbPath := filepath.Join(t.TempDir(), "gauntlet.db")
	repo, err := repository.Open(dbPath, "launcherd_schema_migrations", logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	index := searchindex.New(time.Hour, 50, nil)
	shortcuts := globalshortcut.New(globalshortcut.NewFakeBackend())
	runStatus := runstatus.New()
	downloader := plugindownload.New(filepath.Join(dataDir, ".download-work"), logger)
	schema := widgetmodel.DefaultSchema()
	assetStore := NewDiskAssetStore(dataDir)
	clipboard := &pluginruntime.FakeClipboard{}
	limits := pluginruntime.Limits{
		MaxMemoryMB:     64,
		MaxExecutionMs:  5000,
		MaxGoroutines:   16,
		IdleTimeout:     5 * time.Minute,
		HeartbeatPeriod: 30 * time.Second,
	}

	manager := New(repo, index, shortcuts, runStatus, downloader, schema, assetStore, clipboard, limits, dataDir, logger)

	pluginID := domain.PluginID("bundled://fixture-plugin")
	writeFixtureBundle(t, manager.installDir(pluginID))

	ctx := context.Background()
	plugin := domain.Plugin{
		ID:                  pluginID,
		UUID:                "fixture-uuid",
		Name:                "Fixture",
		Enabled:             false,
		Preferences:         map[string]domain.PreferenceSchema{},
		PreferencesUserData: map[string]domain.PreferenceValue{},
	}
	require.NoError(t, repo.SavePlugin(ctx, plugin))
	entrypoint := domain.Entrypoint{
		ID:                  genEntrypointID,
		UUID:                "fixture-entrypoint-uuid",
		PluginID:            pluginID,
		Name:                "Gen",
		Enabled:             true,
		Type:                domain.EntrypointGeneratorEntrypoint,
		Preferences:         map[string]domain.PreferenceSchema{},
		PreferencesUserData: map[string]domain.PreferenceValue{},
		Actions: []domain.Action{
			{ID: "open", Label: "Open"},
			{ID: "copy", Label: "Copy"},
		},
	}
	require.NoError(t, repo.SaveEntrypoint(ctx, entrypoint))

	return manager, pluginID
}

// TestSetPluginState_P4_IdempotentEnable enables the same plugin twice and
// checks exactly one runtime is ever recorded: startPlugin's "already
// running" guard must survive being invoked through the public
// SetPluginState entrypoint, not just when called directly.
func TestSetPluginState_P4_IdempotentEnable(t *testing.T) {
	manager, pluginID := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, manager.SetPluginState(ctx, pluginID, true))
	manager.mu.RLock()
	firstRuntime := manager.plugins[pluginID].runtime
	count := len(manager.plugins)
	manager.mu.RUnlock()
	assert.Equal(t, 1, count)

	require.NoError(t, manager.SetPluginState(ctx, pluginID, true))
	manager.mu.RLock()
	secondRuntime := manager.plugins[pluginID].runtime
	count = len(manager.plugins)
	manager.mu.RUnlock()
	assert.Equal(t, 1, count)
	assert.Same(t, firstRuntime, secondRuntime, "re-enabling an already-running plugin must not replace its runtime")

	manager.stopPlugin(pluginID)
}

// TestRunAction_S2_GeneratedEntrypointActionDispatch exercises the
// :primary/:secondary/named/unknown resolution rules RunAction documents for
// entrypoint_generator entrypoints, against a generator declaring two
// actions (open, copy).
func TestRunAction_S2_GeneratedEntrypointActionDispatch(t *testing.T) {
	manager, pluginID := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, manager.SetPluginState(ctx, pluginID, true))
	t.Cleanup(func() { manager.stopPlugin(pluginID) })

	assert.NoError(t, manager.RunAction(ctx, pluginID, genEntrypointID, actionPrimary), ":primary should resolve to action index 0")
	assert.NoError(t, manager.RunAction(ctx, pluginID, genEntrypointID, actionSecondary), ":secondary should resolve to action index 1")
	assert.NoError(t, manager.RunAction(ctx, pluginID, genEntrypointID, "copy"), "named id \"copy\" should resolve to action index 1")

	err := manager.RunAction(ctx, pluginID, genEntrypointID, "ghost")
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodeInvalidAction, domainErr.Code)
}

func TestResolveGeneratedActionIndex(t *testing.T) {
	e := domain.Entrypoint{
		Actions: []domain.Action{
			{ID: "open", Label: "Open"},
			{ID: "copy", Label: "Copy"},
		},
	}

	idx, ok := resolveGeneratedActionIndex(e, actionPrimary)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = resolveGeneratedActionIndex(e, actionSecondary)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = resolveGeneratedActionIndex(e, "copy")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = resolveGeneratedActionIndex(e, "ghost")
	assert.False(t, ok)
}
