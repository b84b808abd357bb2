package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/sirupsen/logrus"

	"wink/config"
	"wink/utils"
)

// AuthRateLimiter throttles the unauthenticated signup, login and refresh
// endpoints per client IP.
func AuthRateLimiter(cfg *config.Config, storage fiber.Storage, log *logrus.Entry) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.RateLimitAuth,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return cfg.RateLimitAuth <= 0
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return utils.GenerateRateLimitKey(c.IP(), c.Path())
		},
		LimitReached: func(c *fiber.Ctx) error {
			utils.LogEvent(log, "rate_limit_hit", map[string]interface{}{
				"endpoint":   c.Path(),
				"ip":         c.IP(),
				"user_agent": c.Get("User-Agent"),
			})
			c.Set(fiber.HeaderRetryAfter, "60")
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests,
				"Too many requests. Please wait before trying again.", nil)
		},
		Storage: storage,
	})
}

// NewRateLimitStorage returns Redis-backed limiter storage when Redis is
// enabled, and nil (the limiter's in-memory default) otherwise.
func NewRateLimitStorage(cfg config.RedisConfig) fiber.Storage {
	if !cfg.Enabled {
		return nil
	}
	return NewRedisStorage(cfg)
}

// RedisStorage implements fiber.Storage for Redis
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(cfg config.RedisConfig) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Get returns nil, nil for a missing key as fiber.Storage requires.
func (r *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := r.client.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return r.client.Set(context.Background(), key, val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return r.client.Del(context.Background(), key).Err()
}

func (r *RedisStorage) Reset() error {
	return r.client.FlushDB(context.Background()).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

// Ping checks that the Redis server is reachable.
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
