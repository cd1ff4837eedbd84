package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// ErrNotFound is returned when a lookup by id finds no row.
var ErrNotFound = errors.New("repository: not found")

// ListPlugins returns every persisted plugin, enabled or not.
func (s *Store) ListPlugins(ctx context.Context) ([]domain.Plugin, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, uuid, name, description, enabled, permissions, preferences, preferences_user_data FROM plugins ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("repository: list plugins: %w", err)
	}
	defer rows.Close()

	var out []domain.Plugin
	for rows.Next() {
		p, err := scanPlugin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPluginByID fetches one plugin's metadata. Returns ErrNotFound if absent.
func (s *Store) GetPluginByID(ctx context.Context, id domain.PluginID) (domain.Plugin, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, uuid, name, description, enabled, permissions, preferences, preferences_user_data FROM plugins WHERE id = ?`, string(id))
	p, err := scanPlugin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Plugin{}, ErrNotFound
	}
	return p, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlugin(row rowScanner) (domain.Plugin, error) {
	var p domain.Plugin
	var id, permissionsJSON, preferencesJSON, prefUserJSON string
	var enabled int
	if err := row.Scan(&id, &p.UUID, &p.Name, &p.Description, &enabled, &permissionsJSON, &preferencesJSON, &prefUserJSON); err != nil {
		return domain.Plugin{}, fmt.Errorf("repository: scan plugin: %w", err)
	}
	p.ID = domain.PluginID(id)
	p.Enabled = enabled != 0

	perms, err := unmarshalPermissions(permissionsJSON)
	if err != nil {
		return domain.Plugin{}, err
	}
	p.Permissions = perms

	var prefs map[string]domain.PreferenceSchema
	if err := unmarshalJSON(preferencesJSON, "{}", &prefs); err != nil {
		return domain.Plugin{}, fmt.Errorf("repository: unmarshal preferences: %w", err)
	}
	p.Preferences = prefs

	var prefUser map[string]domain.PreferenceValue
	if err := unmarshalJSON(prefUserJSON, "{}", &prefUser); err != nil {
		return domain.Plugin{}, fmt.Errorf("repository: unmarshal preference user data: %w", err)
	}
	p.PreferencesUserData = prefUser

	return p, nil
}

// SavePlugin upserts a plugin's metadata row. Code is not persisted here; it
// is reloaded from disk/git at plugin-load time.
func (s *Store) SavePlugin(ctx context.Context, p domain.Plugin) error {
	permissionsJSON, err := marshalPermissions(p.Permissions)
	if err != nil {
		return err
	}
	preferencesJSON, err := marshalJSON(p.Preferences)
	if err != nil {
		return err
	}
	prefUserJSON, err := marshalJSON(p.PreferencesUserData)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plugins (id, uuid, name, description, enabled, permissions, preferences, preferences_user_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uuid = excluded.uuid,
			name = excluded.name,
			description = excluded.description,
			enabled = excluded.enabled,
			permissions = excluded.permissions,
			preferences = excluded.preferences,
			preferences_user_data = excluded.preferences_user_data
	`, string(p.ID), p.UUID, p.Name, p.Description, boolToInt(p.Enabled), permissionsJSON, preferencesJSON, prefUserJSON)
	if err != nil {
		return fmt.Errorf("repository: save plugin: %w", err)
	}
	return nil
}

// SetPluginEnabled toggles a plugin's enabled flag.
func (s *Store) SetPluginEnabled(ctx context.Context, id domain.PluginID, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE plugins SET enabled = ? WHERE id = ?`, boolToInt(enabled), string(id))
	if err != nil {
		return fmt.Errorf("repository: set plugin enabled: %w", err)
	}
	return requireRowsAffected(res)
}

// RemovePlugin deletes a plugin and, via ON DELETE CASCADE, its entrypoints.
func (s *Store) RemovePlugin(ctx context.Context, id domain.PluginID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM plugins WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("repository: remove plugin: %w", err)
	}
	return requireRowsAffected(res)
}

// SetPluginPreferenceValue updates one plugin-level preference's stored value.
func (s *Store) SetPluginPreferenceValue(ctx context.Context, id domain.PluginID, name string, value domain.PreferenceValue) error {
	p, err := s.GetPluginByID(ctx, id)
	if err != nil {
		return err
	}
	if p.PreferencesUserData == nil {
		p.PreferencesUserData = map[string]domain.PreferenceValue{}
	}
	p.PreferencesUserData[name] = value
	return s.SavePlugin(ctx, p)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
