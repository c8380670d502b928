package store

import (
	"context"
	"database/sql"
)

// instance_profile and search_config are both simple key-value tables
// (spec.md §6's persisted layout); these wrappers cover both without
// duplicating the get/set SQL per table.

// GetInstanceProfile reads one key from instance_profile, e.g. a
// generated instance ID stamped on first run.
func (s *Store) GetInstanceProfile(ctx context.Context, key string) (string, bool, error) {
	return s.getKV(ctx, "instance_profile", key)
}

// SetInstanceProfile writes one key in instance_profile.
func (s *Store) SetInstanceProfile(ctx context.Context, key, value string) error {
	return s.setKV(ctx, "instance_profile", key, value)
}

// GetSearchConfig reads one key from search_config, e.g. the embedding
// model the index was built with, so later runs can detect drift.
func (s *Store) GetSearchConfig(ctx context.Context, key string) (string, bool, error) {
	return s.getKV(ctx, "search_config", key)
}

// SetSearchConfig writes one key in search_config.
func (s *Store) SetSearchConfig(ctx context.Context, key, value string) error {
	return s.setKV(ctx, "search_config", key, value)
}

func (s *Store) getKV(ctx context.Context, table, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM `+table+` WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) setKV(ctx context.Context, table, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+table+` (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
