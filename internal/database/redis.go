package database

import (
	"context"
	"strings"
	"time"

	"planets-be/internal/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to Redis when url is set. It returns nil when url is empty
// or the server cannot be reached; callers then fall back to in-process locks
// and an open rate limiter.
func NewRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}

	var opts *redis.Options
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			logger.Log.WithError(err).Warn("Invalid REDIS_URL, continuing without Redis")
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.WithError(err).Warn("Redis unreachable, continuing without Redis")
		_ = client.Close()
		return nil
	}

	logger.Log.Info("Connected to Redis")
	return client
}
