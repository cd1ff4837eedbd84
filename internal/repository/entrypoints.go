package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// GetEntrypointsByPluginID returns every entrypoint belonging to pluginID.
func (s *Store) GetEntrypointsByPluginID(ctx context.Context, pluginID domain.PluginID) ([]domain.Entrypoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uuid, id, plugin_id, name, description, enabled, type, icon_path,
		       preferences, preferences_user_data, actions, actions_user_data
		FROM entrypoints WHERE plugin_id = ? ORDER BY id`, string(pluginID))
	if err != nil {
		return nil, fmt.Errorf("repository: list entrypoints: %w", err)
	}
	defer rows.Close()

	var out []domain.Entrypoint
	for rows.Next() {
		e, err := scanEntrypoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEntrypointByID fetches one entrypoint by (pluginID, id).
func (s *Store) GetEntrypointByID(ctx context.Context, pluginID domain.PluginID, id string) (domain.Entrypoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT uuid, id, plugin_id, name, description, enabled, type, icon_path,
		       preferences, preferences_user_data, actions, actions_user_data
		FROM entrypoints WHERE plugin_id = ? AND id = ?`, string(pluginID), id)
	e, err := scanEntrypoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entrypoint{}, ErrNotFound
	}
	return e, err
}

func scanEntrypoint(row rowScanner) (domain.Entrypoint, error) {
	var e domain.Entrypoint
	var pluginID, entrypointType, preferencesJSON, prefUserJSON, actionsJSON, actionsUserJSON string
	var enabled int
	if err := row.Scan(&e.UUID, &e.ID, &pluginID, &e.Name, &e.Description, &enabled, &entrypointType, &e.IconPath,
		&preferencesJSON, &prefUserJSON, &actionsJSON, &actionsUserJSON); err != nil {
		return domain.Entrypoint{}, fmt.Errorf("repository: scan entrypoint: %w", err)
	}
	e.PluginID = domain.PluginID(pluginID)
	e.Type = domain.EntrypointType(entrypointType)
	e.Enabled = enabled != 0

	var prefs map[string]domain.PreferenceSchema
	if err := unmarshalJSON(preferencesJSON, "{}", &prefs); err != nil {
		return domain.Entrypoint{}, fmt.Errorf("repository: unmarshal entrypoint preferences: %w", err)
	}
	e.Preferences = prefs

	var prefUser map[string]domain.PreferenceValue
	if err := unmarshalJSON(prefUserJSON, "{}", &prefUser); err != nil {
		return domain.Entrypoint{}, fmt.Errorf("repository: unmarshal entrypoint preference user data: %w", err)
	}
	e.PreferencesUserData = prefUser

	var actions []domain.Action
	if err := unmarshalJSON(actionsJSON, "[]", &actions); err != nil {
		return domain.Entrypoint{}, fmt.Errorf("repository: unmarshal actions: %w", err)
	}
	e.Actions = actions

	var actionsUser []domain.ActionOverride
	if err := unmarshalJSON(actionsUserJSON, "[]", &actionsUser); err != nil {
		return domain.Entrypoint{}, fmt.Errorf("repository: unmarshal action overrides: %w", err)
	}
	e.ActionsUserData = actionsUser

	return e, nil
}

// SaveEntrypoint upserts one entrypoint row.
func (s *Store) SaveEntrypoint(ctx context.Context, e domain.Entrypoint) error {
	preferencesJSON, err := marshalJSON(e.Preferences)
	if err != nil {
		return err
	}
	prefUserJSON, err := marshalJSON(e.PreferencesUserData)
	if err != nil {
		return err
	}
	actionsJSON, err := marshalJSON(e.Actions)
	if err != nil {
		return err
	}
	actionsUserJSON, err := marshalJSON(e.ActionsUserData)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entrypoints (uuid, id, plugin_id, name, description, enabled, type, icon_path,
		                         preferences, preferences_user_data, actions, actions_user_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			enabled = excluded.enabled,
			type = excluded.type,
			icon_path = excluded.icon_path,
			preferences = excluded.preferences,
			preferences_user_data = excluded.preferences_user_data,
			actions = excluded.actions,
			actions_user_data = excluded.actions_user_data
	`, e.UUID, e.ID, string(e.PluginID), e.Name, e.Description, boolToInt(e.Enabled), string(e.Type), e.IconPath,
		preferencesJSON, prefUserJSON, actionsJSON, actionsUserJSON)
	if err != nil {
		return fmt.Errorf("repository: save entrypoint: %w", err)
	}
	return nil
}

// SetPluginEntrypointEnabled toggles one entrypoint's enabled flag.
func (s *Store) SetPluginEntrypointEnabled(ctx context.Context, pluginID domain.PluginID, id string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE entrypoints SET enabled = ? WHERE plugin_id = ? AND id = ?`, boolToInt(enabled), string(pluginID), id)
	if err != nil {
		return fmt.Errorf("repository: set entrypoint enabled: %w", err)
	}
	return requireRowsAffected(res)
}

// SetEntrypointPreferenceValue updates one entrypoint-level preference's stored value.
func (s *Store) SetEntrypointPreferenceValue(ctx context.Context, pluginID domain.PluginID, id, name string, value domain.PreferenceValue) error {
	e, err := s.GetEntrypointByID(ctx, pluginID, id)
	if err != nil {
		return err
	}
	if e.PreferencesUserData == nil {
		e.PreferencesUserData = map[string]domain.PreferenceValue{}
	}
	e.PreferencesUserData[name] = value
	return s.SaveEntrypoint(ctx, e)
}

// SetEntrypointSearchAlias stores the user-chosen search alias for an entrypoint.
func (s *Store) SetEntrypointSearchAlias(ctx context.Context, pluginID domain.PluginID, id, alias string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE entrypoints SET search_alias = ? WHERE plugin_id = ? AND id = ?`, alias, string(pluginID), id)
	if err != nil {
		return fmt.Errorf("repository: set entrypoint search alias: %w", err)
	}
	return requireRowsAffected(res)
}
