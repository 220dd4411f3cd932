package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/pal-tracker-api/internal/wizard"
)

// WizardStateRepository keeps wizard instances in Redis. Every save refreshes
// the TTL, so an abandoned instance expires ttl after its last step.
type WizardStateRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewWizardStateRepository constructs the store.
func NewWizardStateRepository(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *WizardStateRepository {
	if prefix == "" {
		prefix = "wizard"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardStateRepository{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Key returns the Redis key for an instance id.
func (r *WizardStateRepository) Key(id string) string {
	return r.prefix + ":" + id
}

// Get loads an instance, returning wizard.ErrNotFound when absent or expired.
func (r *WizardStateRepository) Get(ctx context.Context, id string) (*wizard.State, error) {
	key := r.Key(id)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, wizard.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var state wizard.State
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt entry is as good as a missing one; the user restarts.
		r.logger.Warn("discarding unreadable wizard state", zap.String("key", key), zap.Error(err))
		return nil, wizard.ErrNotFound
	}
	return &state, nil
}

// Save writes the instance and resets its expiry.
func (r *WizardStateRepository) Save(ctx context.Context, state *wizard.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal wizard state %s: %w", state.ID, err)
	}
	key := r.Key(state.ID)
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes an instance; deleting a missing instance is not an error.
func (r *WizardStateRepository) Delete(ctx context.Context, id string) error {
	key := r.Key(id)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
