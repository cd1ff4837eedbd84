package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "gauntlet.db")
	store, err := Open(dbPath, "launcherd_schema_migrations", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePlugin() domain.Plugin {
	return domain.Plugin{
		ID:          "bundled://tasks",
		UUID:        "plugin-uuid-1",
		Name:        "Tasks",
		Description: "Manage tasks",
		Enabled:     true,
		Permissions: domain.Permissions{
			Network:   map[string]struct{}{"api.example.com:443": {}},
			Clipboard: map[domain.ClipboardPermission]struct{}{domain.ClipboardWrite: {}},
		},
		Preferences: map[string]domain.PreferenceSchema{
			"apiKey": {Kind: domain.PreferenceString, Required: true},
		},
		PreferencesUserData: map[string]domain.PreferenceValue{
			"apiKey": {Kind: domain.PreferenceString, String: "secret"},
		},
	}
}

func TestSavePlugin_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := samplePlugin()
	require.NoError(t, store.SavePlugin(ctx, p))

	got, err := store.GetPluginByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, got.Enabled)
	_, hasNetwork := got.Permissions.Network["api.example.com:443"]
	assert.True(t, hasNetwork)
	assert.True(t, got.Permissions.HasClipboard(domain.ClipboardWrite))
	assert.Equal(t, "secret", got.PreferencesUserData["apiKey"].String)
}

func TestSavePlugin_UpsertOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := samplePlugin()
	require.NoError(t, store.SavePlugin(ctx, p))

	p.Name = "Tasks v2"
	p.Enabled = false
	require.NoError(t, store.SavePlugin(ctx, p))

	got, err := store.GetPluginByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tasks v2", got.Name)
	assert.False(t, got.Enabled)
}

func TestGetPluginByID_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetPluginByID(context.Background(), "bundled://missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemovePlugin_CascadesEntrypoints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := samplePlugin()
	require.NoError(t, store.SavePlugin(ctx, p))
	e := domain.Entrypoint{UUID: "ep-uuid-1", ID: "add", PluginID: p.ID, Name: "Add task", Type: domain.EntrypointCommand, Enabled: true}
	require.NoError(t, store.SaveEntrypoint(ctx, e))

	require.NoError(t, store.RemovePlugin(ctx, p.ID))

	_, err := store.GetPluginByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	eps, err := store.GetEntrypointsByPluginID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, eps)
}

func TestSetPluginEnabled_UnknownIDIsNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.SetPluginEnabled(context.Background(), "bundled://missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntrypointPreferenceAndSearchAlias(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := samplePlugin()
	require.NoError(t, store.SavePlugin(ctx, p))
	e := domain.Entrypoint{UUID: "ep-uuid-1", ID: "add", PluginID: p.ID, Name: "Add task", Type: domain.EntrypointCommand, Enabled: true}
	require.NoError(t, store.SaveEntrypoint(ctx, e))

	require.NoError(t, store.SetEntrypointPreferenceValue(ctx, p.ID, e.ID, "defaultPriority", domain.PreferenceValue{Kind: domain.PreferenceString, String: "high"}))
	require.NoError(t, store.SetEntrypointSearchAlias(ctx, p.ID, e.ID, "todo"))

	got, err := store.GetEntrypointByID(ctx, p.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "high", got.PreferencesUserData["defaultPriority"].String)
}

func TestFrecency_MarkAndFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	stats := domain.FrecencyStats{ReferenceTime: now, HalfLife: 72 * time.Hour, LastAccessed: now, Frecency: 1.0, NumAccesses: 1}
	require.NoError(t, store.MarkEntrypointFrecency(ctx, "bundled://tasks", "add", stats))

	got, err := store.GetFrecency(ctx, "bundled://tasks", "add")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Frecency)
	assert.Equal(t, 72*time.Hour, got.HalfLife)

	all, err := store.GetFrecencyForPlugin(ctx, "bundled://tasks")
	require.NoError(t, err)
	assert.Contains(t, all, "add")
}

func TestFrecency_MissingReturnsZeroValue(t *testing.T) {
	store := newTestStore(t)
	got, err := store.GetFrecency(context.Background(), "bundled://tasks", "nope")
	require.NoError(t, err)
	assert.Zero(t, got.Frecency)
}

func TestShortcuts_GlobalAndEntrypointBindings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	global := domain.PhysicalShortcut{PhysicalKey: "Space", ModifierMeta: true}
	require.NoError(t, store.SetShortcut(ctx, "", "", &global, ""))

	ep := domain.PhysicalShortcut{PhysicalKey: "A", ModifierAlt: true}
	require.NoError(t, store.SetShortcut(ctx, "bundled://tasks", "add", &ep, ""))

	all, err := store.ActionShortcuts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pluginID, entrypointID, found, err := store.GetActionIDForShortcut(ctx, ep)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.PluginID("bundled://tasks"), pluginID)
	assert.Equal(t, "add", entrypointID)
}

func TestShortcuts_NilClears(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s := domain.PhysicalShortcut{PhysicalKey: "Space", ModifierMeta: true}
	require.NoError(t, store.SetShortcut(ctx, "", "", &s, ""))
	require.NoError(t, store.SetShortcut(ctx, "", "", nil, ""))

	all, err := store.ActionShortcuts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSettings_MutateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MutateSettings(ctx, Settings{"theme": "dark", "windowPositionMode": "remember"}))

	all, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", all["theme"])

	value, ok, err := store.GetSetting(ctx, "windowPositionMode")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "remember", value)

	_, ok, err = store.GetSetting(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
