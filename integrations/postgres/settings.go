package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bmritz/grocerymail/store"
	"github.com/jackc/pgx/v5"
)

// GetSetting returns the value stored under name
func (db *DB) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := db.Pool.QueryRow(ctx, `SELECT value FROM settings WHERE name = $1`, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", store.ErrSettingNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting: %w", err)
	}
	return value, nil
}

// SetSetting creates or updates a setting
func (db *DB) SetSetting(ctx context.Context, name, value string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO settings (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, name, value)
	if err != nil {
		return fmt.Errorf("failed to write setting: %w", err)
	}
	return nil
}

var _ store.Store = (*DB)(nil)
