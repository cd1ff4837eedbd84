package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// MarkEntrypointFrecency persists a post-use frecency sample for (pluginID, entrypointID).
func (s *Store) MarkEntrypointFrecency(ctx context.Context, pluginID domain.PluginID, entrypointID string, stats domain.FrecencyStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO frecency (plugin_id, entrypoint_id, reference_time, half_life_ms, last_accessed, frecency, num_accesses)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(plugin_id, entrypoint_id) DO UPDATE SET
			reference_time = excluded.reference_time,
			half_life_ms = excluded.half_life_ms,
			last_accessed = excluded.last_accessed,
			frecency = excluded.frecency,
			num_accesses = excluded.num_accesses
	`, string(pluginID), entrypointID, stats.ReferenceTime, stats.HalfLife.Milliseconds(), stats.LastAccessed, stats.Frecency, stats.NumAccesses)
	if err != nil {
		return fmt.Errorf("repository: mark entrypoint frecency: %w", err)
	}
	return nil
}

// GetFrecencyForPlugin returns every stored frecency row for a plugin's entrypoints, keyed by entrypoint id.
func (s *Store) GetFrecencyForPlugin(ctx context.Context, pluginID domain.PluginID) (map[string]domain.FrecencyStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entrypoint_id, reference_time, half_life_ms, last_accessed, frecency, num_accesses
		FROM frecency WHERE plugin_id = ?`, string(pluginID))
	if err != nil {
		return nil, fmt.Errorf("repository: get frecency for plugin: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.FrecencyStats{}
	for rows.Next() {
		var entrypointID string
		var halfLifeMs int64
		var stats domain.FrecencyStats
		if err := rows.Scan(&entrypointID, &stats.ReferenceTime, &halfLifeMs, &stats.LastAccessed, &stats.Frecency, &stats.NumAccesses); err != nil {
			return nil, fmt.Errorf("repository: scan frecency: %w", err)
		}
		stats.HalfLife = time.Duration(halfLifeMs) * time.Millisecond
		out[entrypointID] = stats
	}
	return out, rows.Err()
}

// GetFrecency returns the stored frecency row for a single entrypoint, or the
// zero value if none has been recorded yet.
func (s *Store) GetFrecency(ctx context.Context, pluginID domain.PluginID, entrypointID string) (domain.FrecencyStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT reference_time, half_life_ms, last_accessed, frecency, num_accesses
		FROM frecency WHERE plugin_id = ? AND entrypoint_id = ?`, string(pluginID), entrypointID)

	var halfLifeMs int64
	var stats domain.FrecencyStats
	err := row.Scan(&stats.ReferenceTime, &halfLifeMs, &stats.LastAccessed, &stats.Frecency, &stats.NumAccesses)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FrecencyStats{}, nil
	}
	if err != nil {
		return domain.FrecencyStats{}, fmt.Errorf("repository: get frecency: %w", err)
	}
	stats.HalfLife = time.Duration(halfLifeMs) * time.Millisecond
	return stats, nil
}
