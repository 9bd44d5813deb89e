package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSettingNotFound is returned when a world setting has never been stored.
var ErrSettingNotFound = errors.New("setting not found")

// SettingKey builds the stored key for a module setting ("<module>.<name>").
func SettingKey(module, name string) string {
	return module + "." + name
}

// SettingsRepository provides world-scoped setting persistence.
type SettingsRepository struct {
	db      *pgxpool.Pool
	worldID string
}

// NewSettingsRepository creates a SettingsRepository for one world.
//
// Precondition: db must be a valid, open connection pool; worldID must be non-empty.
func NewSettingsRepository(db *pgxpool.Pool, worldID string) *SettingsRepository {
	return &SettingsRepository{db: db, worldID: worldID}
}

// GetBool returns the boolean setting stored under key.
//
// Postcondition: Returns ErrSettingNotFound if key was never set.
func (r *SettingsRepository) GetBool(ctx context.Context, key string) (bool, error) {
	var v bool
	err := r.db.QueryRow(ctx,
		`SELECT value FROM world_settings WHERE world_id = $1 AND key = $2`,
		r.worldID, key,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrSettingNotFound
	}
	if err != nil {
		return false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return v, nil
}

// SetBool stores v under key, replacing any previous value.
//
// Postcondition: GetBool(key) returns v.
func (r *SettingsRepository) SetBool(ctx context.Context, key string, v bool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO world_settings (world_id, key, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (world_id, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		r.worldID, key, v,
	)
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}
