package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ErrNoRateLimitStore is returned when limits are enforced without a Redis client.
var ErrNoRateLimitStore = errors.New("redis client is nil")

// Environments where throttling is switched off.
var unthrottledEnvs = []string{"", "test", "development", "stress"}

// Limit is a fixed-window request budget for one named resource.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	// FailClosed answers 503 when the counter store is unreachable instead of
	// letting the request through.
	FailClosed bool
}

// RateLimitKey is the Redis counter key for a resource and caller.
func RateLimitKey(resource, id string) string {
	return "rl:" + resource + ":" + id
}

// Allow counts one hit for id and reports whether it is still inside the budget.
func (l Limit) Allow(ctx context.Context, rdb *redis.Client, id string) (bool, error) {
	if slices.Contains(unthrottledEnvs, os.Getenv("APP_ENV")) {
		return true, nil
	}
	if rdb == nil {
		return false, ErrNoRateLimitStore
	}

	key := RateLimitKey(l.Name, id)
	n, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := rdb.Expire(ctx, key, l.Window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(l.Max), nil
}

// Handler enforces the limit per authenticated admin, or per client IP for
// anonymous callers.
func (l Limit) Handler(rdb *redis.Client) fiber.Handler {
	retryAfter := strconv.Itoa(int(l.Window.Seconds()))

	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		name := l.Name
		if name == "" {
			name = c.Path()
		}
		scoped := l
		scoped.Name = name

		allowed, err := scoped.Allow(ctx, rdb, callerID(c))
		switch {
		case err != nil && l.FailClosed:
			Logger.WarnContext(ctx, "rate limit store unavailable, rejecting request",
				slog.String("resource", name), slog.String("error", err.Error()))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "Layanan sedang tidak tersedia, silakan coba lagi nanti",
				"code":    "SERVICE_UNAVAILABLE",
			})
		case err != nil:
			Logger.DebugContext(ctx, "rate limit check skipped",
				slog.String("resource", name), slog.String("error", err.Error()))
			return c.Next()
		case !allowed:
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Terlalu banyak permintaan, silakan coba lagi nanti",
				"code":    "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}

func callerID(c *fiber.Ctx) string {
	if uid := c.Locals("userID"); uid != nil {
		return fmt.Sprintf("user:%v", uid)
	}
	return "ip:" + c.IP()
}
