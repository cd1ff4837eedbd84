package repository

import (
	"context"
	"fmt"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// StoredShortcut is a persisted shortcut binding: a global shortcut when
// PluginID and EntrypointID are empty, otherwise an entrypoint shortcut.
type StoredShortcut struct {
	PluginID          domain.PluginID
	EntrypointID      string
	Shortcut          domain.PhysicalShortcut
	RegistrationError string
}

// ActionShortcuts returns every persisted shortcut binding, global and per-entrypoint.
func (s *Store) ActionShortcuts(ctx context.Context) ([]StoredShortcut, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT plugin_id, entrypoint_id, physical_key, modifier_shift, modifier_control, modifier_alt, modifier_meta, registration_error
		FROM shortcuts`)
	if err != nil {
		return nil, fmt.Errorf("repository: action shortcuts: %w", err)
	}
	defer rows.Close()

	var out []StoredShortcut
	for rows.Next() {
		var ss StoredShortcut
		var pluginID, key string
		var shift, control, alt, meta int
		if err := rows.Scan(&pluginID, &ss.EntrypointID, &key, &shift, &control, &alt, &meta, &ss.RegistrationError); err != nil {
			return nil, fmt.Errorf("repository: scan shortcut: %w", err)
		}
		ss.PluginID = domain.PluginID(pluginID)
		ss.Shortcut = domain.PhysicalShortcut{
			PhysicalKey:     domain.PhysicalKey(key),
			ModifierShift:   shift != 0,
			ModifierControl: control != 0,
			ModifierAlt:     alt != 0,
			ModifierMeta:    meta != 0,
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// SetShortcut upserts one shortcut binding. Pass an empty PluginID for the
// global shortcut. A nil shortcut clears the binding.
func (s *Store) SetShortcut(ctx context.Context, pluginID domain.PluginID, entrypointID string, shortcut *domain.PhysicalShortcut, registrationErr string) error {
	if shortcut == nil {
		_, err := s.db.ExecContext(ctx, `DELETE FROM shortcuts WHERE plugin_id = ? AND entrypoint_id = ?`, string(pluginID), entrypointID)
		if err != nil {
			return fmt.Errorf("repository: clear shortcut: %w", err)
		}
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shortcuts (plugin_id, entrypoint_id, physical_key, modifier_shift, modifier_control, modifier_alt, modifier_meta, registration_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(plugin_id, entrypoint_id) DO UPDATE SET
			physical_key = excluded.physical_key,
			modifier_shift = excluded.modifier_shift,
			modifier_control = excluded.modifier_control,
			modifier_alt = excluded.modifier_alt,
			modifier_meta = excluded.modifier_meta,
			registration_error = excluded.registration_error
	`, string(pluginID), entrypointID, string(shortcut.PhysicalKey),
		boolToInt(shortcut.ModifierShift), boolToInt(shortcut.ModifierControl), boolToInt(shortcut.ModifierAlt), boolToInt(shortcut.ModifierMeta),
		registrationErr)
	if err != nil {
		return fmt.Errorf("repository: set shortcut: %w", err)
	}
	return nil
}

// GetActionIDForShortcut resolves a fired physical shortcut to the
// (plugin, entrypoint) it is bound to, if any.
func (s *Store) GetActionIDForShortcut(ctx context.Context, shortcut domain.PhysicalShortcut) (pluginID domain.PluginID, entrypointID string, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT plugin_id, entrypoint_id FROM shortcuts
		WHERE physical_key = ? AND modifier_shift = ? AND modifier_control = ? AND modifier_alt = ? AND modifier_meta = ?
		AND plugin_id != ''`,
		string(shortcut.PhysicalKey), boolToInt(shortcut.ModifierShift), boolToInt(shortcut.ModifierControl), boolToInt(shortcut.ModifierAlt), boolToInt(shortcut.ModifierMeta))

	var pid string
	scanErr := row.Scan(&pid, &entrypointID)
	if scanErr != nil {
		return "", "", false, nil
	}
	return domain.PluginID(pid), entrypointID, true, nil
}
