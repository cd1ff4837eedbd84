package appmanager

import (
	"context"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// SetPluginState enables or disables a plugin, starting or stopping its
// runtime to match; disabling also removes the plugin's search entries.
// Property P4 (zero-or-one runtime per enabled plugin) is enforced by
// routing every transition through startPlugin/stopPlugin.
func (m *ApplicationManager) SetPluginState(ctx context.Context, pluginID domain.PluginID, enabled bool) error {
	if err := m.repo.SetPluginEnabled(ctx, pluginID, enabled); err != nil {
		return domain.NewBackendError("set_plugin_state", err)
	}
	if enabled {
		p, err := m.repo.GetPluginByID(ctx, pluginID)
		if err != nil {
			return domain.NewBackendError("set_plugin_state", err)
		}
		bundle, err := m.loadInstalledCode(pluginID)
		if err != nil {
			return err
		}
		p.Code = bundle
		return m.startPlugin(ctx, p)
	}
	m.stopPlugin(pluginID)
	m.index.RemoveForPlugin(pluginID)
	return nil
}

// SetEntrypointState enables or disables one entrypoint and refreshes the
// search index so the change is immediately reflected in results.
func (m *ApplicationManager) SetEntrypointState(ctx context.Context, pluginID domain.PluginID, entrypointID string, enabled bool) error {
	if err := m.repo.SetPluginEntrypointEnabled(ctx, pluginID, entrypointID, enabled); err != nil {
		return domain.NewBackendError("set_entrypoint_state", err)
	}
	return m.reindexPlugin(ctx, pluginID)
}

// PreferenceSchema looks up the declared schema for a plugin-level
// (entrypointID == "") or entrypoint-level preference, for rpcserver to
// validate an incoming preference value's shape before calling
// SetPreferenceValue.
func (m *ApplicationManager) PreferenceSchema(ctx context.Context, pluginID domain.PluginID, entrypointID, name string) (domain.PreferenceSchema, bool, error) {
	if entrypointID == "" {
		p, err := m.repo.GetPluginByID(ctx, pluginID)
		if err != nil {
			return domain.PreferenceSchema{}, false, domain.NewBackendError("preference_schema", err)
		}
		schema, ok := p.Preferences[name]
		return schema, ok, nil
	}
	e, err := m.repo.GetEntrypointByID(ctx, pluginID, entrypointID)
	if err != nil {
		return domain.PreferenceSchema{}, false, domain.NewBackendError("preference_schema", err)
	}
	schema, ok := e.Preferences[name]
	return schema, ok, nil
}

// SetPreferenceValue updates either a plugin-level or an entrypoint-level
// preference (entrypointID == "" selects the plugin-level one) and, once
// the runtime is live, pushes the value into its Ops preference table.
func (m *ApplicationManager) SetPreferenceValue(ctx context.Context, pluginID domain.PluginID, entrypointID, name string, value domain.PreferenceValue) error {
	var err error
	if entrypointID == "" {
		err = m.repo.SetPluginPreferenceValue(ctx, pluginID, name, value)
	} else {
		err = m.repo.SetEntrypointPreferenceValue(ctx, pluginID, entrypointID, name, value)
	}
	if err != nil {
		return domain.NewBackendError("set_preference_value", err)
	}

	if rp, ok := m.running(pluginID); ok {
		if entrypointID == "" {
			rp.ops.SetPreference(name, value)
		} else {
			rp.ops.SetEntrypointPreference(entrypointID, name, value)
		}
	}
	return nil
}

// SetGlobalShortcut rebinds the single application-wide activation shortcut.
func (m *ApplicationManager) SetGlobalShortcut(ctx context.Context, shortcut *domain.PhysicalShortcut) error {
	regErr := m.shortcuts.SetGlobalShortcut(shortcut)
	errStr := ""
	if regErr != nil {
		errStr = regErr.Error()
	}
	if shortcut != nil {
		if err := m.repo.SetShortcut(ctx, "", "", shortcut, errStr); err != nil {
			return domain.NewBackendError("set_global_shortcut", err)
		}
	} else if err := m.repo.SetShortcut(ctx, "", "", nil, ""); err != nil {
		return domain.NewBackendError("set_global_shortcut", err)
	}
	m.hostEvents <- HostMessage{Kind: HostSetGlobalShortcut}
	return regErr
}

// SetGlobalEntrypointShortcut rebinds a single entrypoint's hotkey.
func (m *ApplicationManager) SetGlobalEntrypointShortcut(ctx context.Context, pluginID domain.PluginID, entrypointID string, shortcut *domain.PhysicalShortcut) error {
	regErr := m.shortcuts.SetGlobalEntrypointShortcut(pluginID, entrypointID, shortcut)
	errStr := ""
	if regErr != nil {
		errStr = regErr.Error()
	}
	if err := m.repo.SetShortcut(ctx, pluginID, entrypointID, shortcut, errStr); err != nil {
		return domain.NewBackendError("set_global_entrypoint_shortcut", err)
	}
	return regErr
}

// SetEntrypointSearchAlias sets or clears the user-chosen alias an
// entrypoint additionally matches against in search.
func (m *ApplicationManager) SetEntrypointSearchAlias(ctx context.Context, pluginID domain.PluginID, entrypointID, alias string) error {
	if err := m.repo.SetEntrypointSearchAlias(ctx, pluginID, entrypointID, alias); err != nil {
		return domain.NewBackendError("set_entrypoint_search_alias", err)
	}
	m.index.SetEntrypointSearchAlias(pluginID, entrypointID, alias)
	return nil
}

// SetTheme persists the front-end's color theme choice.
func (m *ApplicationManager) SetTheme(ctx context.Context, theme string) error {
	if err := m.repo.MutateSettings(ctx, map[string]string{"theme": theme}); err != nil {
		return domain.NewBackendError("set_theme", err)
	}
	m.hostEvents <- HostMessage{Kind: HostSetTheme, Text: theme}
	return nil
}

// SetWindowPositionMode persists how the launcher window positions itself
// when shown (e.g. active-monitor-centered vs. cursor-anchored).
func (m *ApplicationManager) SetWindowPositionMode(ctx context.Context, mode string) error {
	if err := m.repo.MutateSettings(ctx, map[string]string{"window_position_mode": mode}); err != nil {
		return domain.NewBackendError("set_window_position_mode", err)
	}
	m.hostEvents <- HostMessage{Kind: HostSetWindowPositionMode, Text: mode}
	return nil
}
