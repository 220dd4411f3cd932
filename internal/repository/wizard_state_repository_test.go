package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pal-tracker-api/internal/wizard"
)

func unreachableRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestWizardStateKeyUsesPrefix(t *testing.T) {
	repo := NewWizardStateRepository(nil, "", 0, nil)
	assert.Equal(t, "wizard:abc", repo.Key("abc"))
	assert.Equal(t, 24*time.Hour, repo.ttl)

	repo = NewWizardStateRepository(nil, "pal:wiz", time.Hour, nil)
	assert.Equal(t, "pal:wiz:abc", repo.Key("abc"))
}

func TestWizardStateStoreErrorsAreNotMisses(t *testing.T) {
	repo := NewWizardStateRepository(unreachableRedis(t), "wizard", time.Hour, nil)
	ctx := context.Background()

	_, err := repo.Get(ctx, "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, wizard.ErrNotFound)

	state := wizard.NewState("abc", wizard.KindTutor, "", time.Now())
	assert.Error(t, repo.Save(ctx, state))
	assert.Error(t, repo.Delete(ctx, "abc"))
}
