// Package cache holds the optional Redis client and the cache-aside helpers
// used by the visit and report endpoints.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"kunjungan/internal/middleware"
	"kunjungan/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var shared atomic.Pointer[redis.Client]

// errorCounter feeds the redis error counter. redis.Nil is a miss, not an error.
type errorCounter struct{}

func (errorCounter) count(op string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(op).Inc()
	}
}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (e errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		e.count(cmd.Name(), err)
		return err
	}
}

func (e errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		e.count("pipeline", err)
		return err
	}
}

// NewClient builds a client from a host:port address or a redis:// URL.
func NewClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	rdb := redis.NewClient(opts)
	rdb.AddHook(errorCounter{})
	return rdb, nil
}

// Connect builds a client and pings it once.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb, err := NewClient(addr)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// InitRedis connects the shared client. Redis is optional: on failure the
// shared client is nil and callers skip caching, rate limits and token
// revocation.
func InitRedis(addr string) {
	rdb, err := Connect(context.Background(), addr)
	if err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without cache",
			slog.String("addr", addr), slog.String("error", err.Error()))
		shared.Store(nil)
		return
	}
	middleware.Logger.Info("redis connected", slog.String("addr", rdb.Options().Addr))
	shared.Store(rdb)
}

// GetClient returns the shared client, or nil when Redis is not in use.
func GetClient() *redis.Client {
	return shared.Load()
}

// SetClient replaces the shared client.
func SetClient(rdb *redis.Client) {
	shared.Store(rdb)
}
