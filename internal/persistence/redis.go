package persistence

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxJitterMinutes = 5

// RedisPersister stores each cart as a JSON string under cart:<key>.
// A zero ttl keeps carts until they are overwritten.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisPersister(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisPersister {
	return &RedisPersister{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisPersister) Load(ctx context.Context, key string) (domain.CartState, bool, error) {
	data, err := r.client.Get(ctx, storageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	state, err := Decode(data)
	if err != nil {
		r.logger.Warn("discarding stored cart", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return state, true, nil
}

func (r *RedisPersister) Save(ctx context.Context, key string, state domain.CartState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, storageKey(key), data, r.expiration()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisPersister) expiration() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Intn(maxJitterMinutes)) * time.Minute
	return r.ttl + jitter
}

func storageKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
