package repository

import (
	"context"
	"errors"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ domain.StateRepository = (*CachedStateRepository)(nil)

const (
	DefaultCacheKey = "kanso:state"
	DefaultCacheTTL = 30 * time.Minute
)

// CachedStateRepository is a Redis read-through cache in front of another
// repository. Writes go to the backing store first, then drop the cached copy.
type CachedStateRepository struct {
	next  domain.StateRepository
	cache *redis.Client
	key   string
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedStateRepository(next domain.StateRepository, cache *redis.Client, key string, log *zap.Logger) *CachedStateRepository {
	if key == "" {
		key = DefaultCacheKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedStateRepository{
		next:  next,
		cache: cache,
		key:   key,
		ttl:   DefaultCacheTTL,
		log:   log.Named("cache"),
	}
}

func (r *CachedStateRepository) invalidate(ctx context.Context) {
	if err := r.cache.Del(ctx, r.key).Err(); err != nil {
		r.log.Warn("failed to invalidate cached state", zap.String("key", r.key), zap.Error(err))
	}
}

func (r *CachedStateRepository) Load(ctx context.Context) (*domain.State, error) {
	val, err := r.cache.Get(ctx, r.key).Bytes()
	if err == nil {
		state, decodeErr := decodeState(val)
		if decodeErr == nil {
			return state, nil
		}
		r.log.Warn("corrupted cached state, cleaning up key", zap.String("key", r.key), zap.Error(decodeErr))
		r.invalidate(ctx)
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("redis read error", zap.Error(err))
	}

	state, err := r.next.Load(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := encodeState(state); err == nil {
		if setErr := r.cache.Set(ctx, r.key, data, r.ttl).Err(); setErr != nil {
			r.log.Warn("redis set error", zap.Error(setErr))
		}
	}

	return state, nil
}

func (r *CachedStateRepository) Save(ctx context.Context, s *domain.State) error {
	if err := r.next.Save(ctx, s); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}
