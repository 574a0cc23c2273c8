package repository

import (
	"context"
	"testing"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedStateRepository_Integration(t *testing.T) {
	rdb, err := cache.NewRedisClient(context.Background(), getEnv("KANSO_REDIS_URL", "redis://localhost:6379/1"))
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	key := "kanso:test:state"
	rdb.Del(ctx, key)
	defer rdb.Del(ctx, key)

	backing := NewInMemoryStateRepository()
	require.NoError(t, backing.Save(ctx, sampleState(t)))

	repo := NewCachedStateRepository(backing, rdb, key, nil)

	t.Run("Miss populates the cache", func(t *testing.T) {
		s, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, s.Habits, 2)

		exists, err := rdb.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("Hit is served from redis", func(t *testing.T) {
		require.NoError(t, backing.Save(ctx, sampleState(t)))
		require.NoError(t, rdb.Set(ctx, key, `{"profile":{"name":"Cached"},"habits":[]}`, 0).Err())

		s, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Cached", s.Profile.Name)
	})

	t.Run("Save invalidates", func(t *testing.T) {
		state := sampleState(t)
		state.Habits = state.Habits[:1]
		require.NoError(t, repo.Save(ctx, state))

		exists, err := rdb.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), exists)

		s, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, s.Habits, 1)
	})

	t.Run("Corrupt cache entry falls back to the backing store", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, key, "{garbage", 0).Err())

		s, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, s.Habits, 1)
	})
}
