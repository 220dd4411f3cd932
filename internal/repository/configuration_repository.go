package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pal-tracker-api/internal/models"
)

// ConfigurationRepository persists key/value settings.
type ConfigurationRepository struct {
	db *sqlx.DB
}

// NewConfigurationRepository constructs the repository.
func NewConfigurationRepository(db *sqlx.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

// List returns every setting ordered by key.
func (r *ConfigurationRepository) List(ctx context.Context) ([]models.Configuration, error) {
	var configs []models.Configuration
	if err := r.db.SelectContext(ctx, &configs, `SELECT key, value, description, updated_at FROM configs ORDER BY key ASC`); err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	return configs, nil
}

// Get fetches a single setting by key.
func (r *ConfigurationRepository) Get(ctx context.Context, key string) (*models.Configuration, error) {
	const query = `SELECT key, value, description, updated_at FROM configs WHERE key = $1`
	var cfg models.Configuration
	if err := r.db.GetContext(ctx, &cfg, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get configuration: %w", err)
	}
	return &cfg, nil
}

// Upsert inserts or updates a setting. An empty description keeps the stored one.
func (r *ConfigurationRepository) Upsert(ctx context.Context, cfg *models.Configuration) error {
	const query = `INSERT INTO configs (key, value, description, updated_at)
VALUES (:key, :value, :description, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value,
              description = COALESCE(NULLIF(EXCLUDED.description, ''), configs.description),
              updated_at = EXCLUDED.updated_at`
	cfg.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("upsert configuration: %w", err)
	}
	return nil
}
