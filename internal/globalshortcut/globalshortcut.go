// Package globalshortcut dispatches OS-level hotkey events into launcher
// actions: toggling the window or running a bound entrypoint.
package globalshortcut

import (
	"errors"
	"runtime"
	"sync"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/obs"
)

var errRegistrationRefused = errors.New("OS refused to register hotkey")

// pluginEntrypoint identifies a (plugin, entrypoint) pair for the per-entrypoint map.
type pluginEntrypoint struct {
	PluginID     domain.PluginID
	EntrypointID string
}

// Action is the result of Dispatcher.HandleEvent.
type Action struct {
	Kind         ActionKind
	PluginID     domain.PluginID
	EntrypointID string
}

type ActionKind string

const (
	ActionNoop         ActionKind = "noop"
	ActionToggleWindow ActionKind = "toggle_window"
	ActionRunEntrypoint ActionKind = "run_entrypoint"
)

// Dispatcher owns the single OS-level hotkey manager connection and the two
// registration maps: one global shortcut, plus one per-entrypoint shortcut.
type Dispatcher struct {
	mu      sync.Mutex
	backend HotkeyBackend

	globalHotkeyID *HotkeyID
	globalShortcut *domain.PhysicalShortcut

	entrypointHotkeys map[pluginEntrypoint]HotkeyID
	hotkeyToEntrypoint map[HotkeyID]pluginEntrypoint
}

// New constructs a Dispatcher bound to backend (a real platform backend in
// production, FakeBackend in tests).
func New(backend HotkeyBackend) *Dispatcher {
	return &Dispatcher{
		backend:            backend,
		entrypointHotkeys:  make(map[pluginEntrypoint]HotkeyID),
		hotkeyToEntrypoint: make(map[HotkeyID]pluginEntrypoint),
	}
}

// MainModifier returns the modifier used for the platform's "main" action —
// Meta on macOS, Control elsewhere.
func MainModifier() (shift, control, alt, meta bool) {
	if runtime.GOOS == "darwin" {
		return false, false, false, true
	}
	return false, true, false, false
}

// AlternativeModifier is always Alt, on every platform.
func AlternativeModifier() (shift, control, alt, meta bool) {
	return false, false, true, false
}

// SetGlobalShortcut unregisters any existing global shortcut and registers
// the new one (nil clears it without registering a replacement). Returns
// the registration error, if any, so the caller can persist it alongside
// the shortcut without treating it as fatal.
func (d *Dispatcher) SetGlobalShortcut(s *domain.PhysicalShortcut) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.globalHotkeyID != nil {
		_ = d.backend.Unregister(*d.globalHotkeyID)
		d.globalHotkeyID = nil
	}
	d.globalShortcut = nil

	if s == nil {
		return nil
	}
	code, ok := codeForKey(s.PhysicalKey)
	if !ok {
		return domain.NewShortcutRegistrationError("set_global_shortcut", errRegistrationRefused)
	}
	id, err := d.backend.Register(code, modifiersFor(*s))
	if err != nil {
		return domain.NewShortcutRegistrationError("set_global_shortcut", err)
	}
	d.globalHotkeyID = &id
	shortcut := *s
	d.globalShortcut = &shortcut
	return nil
}

// SetGlobalEntrypointShortcut mirrors SetGlobalShortcut but scoped to one
// (plugin, entrypoint) pair.
func (d *Dispatcher) SetGlobalEntrypointShortcut(pluginID domain.PluginID, entrypointID string, s *domain.PhysicalShortcut) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := pluginEntrypoint{PluginID: pluginID, EntrypointID: entrypointID}
	if oldID, ok := d.entrypointHotkeys[key]; ok {
		_ = d.backend.Unregister(oldID)
		delete(d.entrypointHotkeys, key)
		delete(d.hotkeyToEntrypoint, oldID)
	}

	if s == nil {
		return nil
	}
	code, ok := codeForKey(s.PhysicalKey)
	if !ok {
		return domain.NewShortcutRegistrationError("set_global_entrypoint_shortcut", errRegistrationRefused)
	}
	id, err := d.backend.Register(code, modifiersFor(*s))
	if err != nil {
		return domain.NewShortcutRegistrationError("set_global_entrypoint_shortcut", err)
	}
	d.entrypointHotkeys[key] = id
	d.hotkeyToEntrypoint[id] = key
	return nil
}

// HandleEvent translates a fired hotkey id into the action the caller
// should take.
func (d *Dispatcher) HandleEvent(id HotkeyID) Action {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.globalHotkeyID != nil && *d.globalHotkeyID == id {
		obs.ShortcutDispatches.Inc()
		return Action{Kind: ActionToggleWindow}
	}
	if ep, ok := d.hotkeyToEntrypoint[id]; ok {
		obs.ShortcutDispatches.Inc()
		return Action{Kind: ActionRunEntrypoint, PluginID: ep.PluginID, EntrypointID: ep.EntrypointID}
	}
	obs.ShortcutUnmatched.Inc()
	return Action{Kind: ActionNoop}
}

// PersistedShortcut describes one shortcut to re-register at process start,
// as loaded from the repository's settings row.
type PersistedShortcut struct {
	PluginID     domain.PluginID // empty for the global shortcut
	EntrypointID string
	Shortcut     domain.PhysicalShortcut
}

// SetupResult pairs each attempted shortcut with its registration error, if any.
type SetupResult struct {
	Shortcut PersistedShortcut
	Err      error
}

// Setup attempts to register every persisted shortcut at process start. A
// failure on one entry does not abort the rest; the caller persists each
// result's error string for display in settings.
func (d *Dispatcher) Setup(shortcuts []PersistedShortcut) []SetupResult {
	results := make([]SetupResult, 0, len(shortcuts))
	for _, s := range shortcuts {
		var err error
		if s.PluginID == "" {
			shortcut := s.Shortcut
			err = d.SetGlobalShortcut(&shortcut)
		} else {
			shortcut := s.Shortcut
			err = d.SetGlobalEntrypointShortcut(s.PluginID, s.EntrypointID, &shortcut)
		}
		results = append(results, SetupResult{Shortcut: s, Err: err})
	}
	return results
}
