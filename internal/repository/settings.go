package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Settings is the flat key/value bag backing theme, window position mode,
// and other whole-application preferences.
type Settings map[string]string

// GetSettings returns every stored setting.
func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("repository: get settings: %w", err)
	}
	defer rows.Close()

	out := Settings{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("repository: scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// GetSetting returns one setting's value, or ok=false if unset.
func (s *Store) GetSetting(ctx context.Context, key string) (value string, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	if scanErr := row.Scan(&value); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("repository: get setting: %w", scanErr)
	}
	return value, true, nil
}

// MutateSettings applies a set of key/value writes atomically.
func (s *Store) MutateSettings(ctx context.Context, patch Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: mutate settings begin: %w", err)
	}
	defer tx.Rollback()

	for k, v := range patch {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v); err != nil {
			return fmt.Errorf("repository: mutate setting %q: %w", k, err)
		}
	}
	return tx.Commit()
}
