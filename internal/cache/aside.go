package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"kunjungan/internal/middleware"
	"kunjungan/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// GetJSON reads key and unmarshals it into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Aside returns the cached value for key or calls fetch and caches its result.
// Redis failures degrade to calling fetch; only fetch errors are returned.
func Aside[T any](ctx context.Context, rdb *redis.Client, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	spanCtx, span := observability.StartCacheSpan(ctx, "aside", key)
	defer span.End()

	var cached T
	found, err := GetJSON(spanCtx, rdb, key, &cached)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues(key, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		observability.CacheLookups.WithLabelValues(key, "hit").Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	case rdb != nil:
		observability.CacheLookups.WithLabelValues(key, "miss").Inc()
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	if err := SetJSON(ctx, rdb, key, value, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return value, nil
}

// Invalidate deletes keys. Failures are logged, never returned.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}
