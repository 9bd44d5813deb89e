// Package cache provides a Redis read-through cache for world settings.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cory-johannsen/pf2-flat-check/internal/storage/postgres"
)

// Key pattern: flatcheck:settings:{world_id}:{key}
const keyPrefix = "flatcheck:settings:"

// missing marks a setting the backend reported as never stored.
const missing = "-"

// Backend is the authoritative settings store behind the cache.
type Backend interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, v bool) error
}

// Settings caches Backend reads in Redis. Redis failures degrade to direct
// backend reads; they are logged, never returned.
type Settings struct {
	client  redis.UniversalClient
	backend Backend
	worldID string
	ttl     time.Duration
	group   singleflight.Group
	logger  *zap.Logger
}

// NewSettings creates a Settings cache for one world.
//
// Precondition: client, backend and logger must be non-nil; ttl > 0; worldID non-empty.
// Postcondition: Returns a ready cache or a non-nil error.
func NewSettings(client redis.UniversalClient, backend Backend, worldID string, ttl time.Duration, logger *zap.Logger) (*Settings, error) {
	if client == nil {
		return nil, errors.New("cache: redis client is required")
	}
	if backend == nil {
		return nil, errors.New("cache: backend is required")
	}
	if worldID == "" {
		return nil, errors.New("cache: world id is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache: ttl must be > 0, got %s", ttl)
	}
	if logger == nil {
		return nil, errors.New("cache: logger is required")
	}
	return &Settings{client: client, backend: backend, worldID: worldID, ttl: ttl, logger: logger}, nil
}

func (s *Settings) redisKey(key string) string {
	return keyPrefix + s.worldID + ":" + key
}

// GetBool returns the setting, reading through to the backend on a miss.
// Concurrent misses for the same key share one backend read.
//
// Postcondition: Returns postgres.ErrSettingNotFound if the backend has no value.
func (s *Settings) GetBool(ctx context.Context, key string) (bool, error) {
	rk := s.redisKey(key)
	cached, err := s.client.Get(ctx, rk).Result()
	switch {
	case err == nil:
		if cached == missing {
			return false, fmt.Errorf("%s: %w", key, postgres.ErrSettingNotFound)
		}
		if v, perr := strconv.ParseBool(cached); perr == nil {
			return v, nil
		}
		s.logger.Warn("discarding malformed cached setting", zap.String("key", rk), zap.String("value", cached))
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Warn("settings cache read failed", zap.String("key", rk), zap.Error(err))
	}

	// The shared read outlives any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(rk, func() (any, error) {
		v, err := s.backend.GetBool(shared, key)
		switch {
		case err == nil:
			s.store(shared, rk, strconv.FormatBool(v))
		case errors.Is(err, postgres.ErrSettingNotFound):
			s.store(shared, rk, missing)
		}
		return v, err
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// SetBool writes v to the backend and drops the cached copy.
func (s *Settings) SetBool(ctx context.Context, key string, v bool) error {
	if err := s.backend.SetBool(ctx, key, v); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		s.logger.Warn("settings cache invalidate failed", zap.String("key", s.redisKey(key)), zap.Error(err))
	}
	return nil
}

func (s *Settings) store(ctx context.Context, rk, value string) {
	if err := s.client.Set(ctx, rk, value, s.ttl).Err(); err != nil {
		s.logger.Warn("settings cache write failed", zap.String("key", rk), zap.Error(err))
	}
}

// NewClient builds a Redis client for addr.
//
// Precondition: addr must be non-empty.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("cache: redis address is required")
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), nil
}
