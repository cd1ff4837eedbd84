package globalshortcut

import (
	"testing"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortcut(key domain.PhysicalKey, meta, alt bool) *domain.PhysicalShortcut {
	return &domain.PhysicalShortcut{PhysicalKey: key, ModifierMeta: meta, ModifierAlt: alt}
}

// P6: every accepted entrypoint shortcut resolves back to RunEntrypoint via
// the hotkey id it was registered under.
func TestDispatcher_P6_ShortcutReversibility(t *testing.T) {
	backend := NewFakeBackend()
	d := New(backend)

	err := d.SetGlobalEntrypointShortcut("bundled://tasks", "add", shortcut("A", true, false))
	require.NoError(t, err)

	id := backend.next // last id issued
	action := d.HandleEvent(id)
	assert.Equal(t, ActionRunEntrypoint, action.Kind)
	assert.Equal(t, domain.PluginID("bundled://tasks"), action.PluginID)
	assert.Equal(t, "add", action.EntrypointID)
}

func TestDispatcher_HandleEvent_GlobalShortcutTogglesWindow(t *testing.T) {
	backend := NewFakeBackend()
	d := New(backend)
	require.NoError(t, d.SetGlobalShortcut(shortcut("Space", true, false)))

	action := d.HandleEvent(backend.next)
	assert.Equal(t, ActionToggleWindow, action.Kind)
}

func TestDispatcher_HandleEvent_UnknownIDIsNoop(t *testing.T) {
	d := New(NewFakeBackend())
	action := d.HandleEvent(999)
	assert.Equal(t, ActionNoop, action.Kind)
}

// S4: rebinding the global shortcut unregisters the old one and registers
// the new one; if the new registration is refused, the old stays cleared
// and the error is surfaced to the caller.
func TestDispatcher_S4_GlobalShortcutRebinding(t *testing.T) {
	backend := NewFakeBackend()
	d := New(backend)

	require.NoError(t, d.SetGlobalShortcut(shortcut("Space", true, false)))
	oldID := backend.next

	require.NoError(t, d.SetGlobalShortcut(shortcut("Space", false, true)))
	assert.NotEqual(t, oldID, backend.next)

	// Old hotkey id no longer resolves to anything.
	assert.Equal(t, ActionNoop, d.HandleEvent(oldID).Kind)

	backend.Refuse[registrationKey("KeyA", modifierMask{Alt: true})] = true
	err := d.SetGlobalShortcut(shortcut("A", false, true))
	require.Error(t, err)

	// The dispatcher no longer has a registered global shortcut at all;
	// the previous one was already cleared before the failed attempt.
	assert.Equal(t, ActionNoop, d.HandleEvent(backend.next).Kind)
}

func TestSetup_ContinuesAfterFailure(t *testing.T) {
	backend := NewFakeBackend()
	backend.Refuse[registrationKey("KeyA", modifierMask{})] = true
	d := New(backend)

	results := d.Setup([]PersistedShortcut{
		{Shortcut: domain.PhysicalShortcut{PhysicalKey: "A"}},
		{PluginID: "bundled://tasks", EntrypointID: "add", Shortcut: domain.PhysicalShortcut{PhysicalKey: "B"}},
	})
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
}

func TestMainModifier_PlatformConvention(t *testing.T) {
	_, control, _, meta := MainModifier()
	assert.True(t, control || meta)
	assert.False(t, control && meta)
}

func TestAlternativeModifier_IsAlwaysAlt(t *testing.T) {
	shift, control, alt, meta := AlternativeModifier()
	assert.True(t, alt)
	assert.False(t, shift || control || meta)
}
