package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/api/middleware"
	"github.com/aaravmahajanofficial/selfservice-widget/internal/config"
	"github.com/redis/go-redis/v9"
)

type RateLimitRepository interface {
	CheckAccessRateLimit(ctx context.Context, key string) (bool, int, int, error)
}

type redisRepository struct {
	client *redis.Client
	cfg    *config.Config
	now    func() time.Time
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	redisURL := cfg.RedisConnect.GetDSN()
	slog.Info("Connecting to Redis", slog.String("url", fmt.Sprintf("redis://%s:<password>@%s:%s", cfg.RedisConnect.Username, cfg.RedisConnect.Host, cfg.RedisConnect.Port)))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Error("Failed to parse Redis URL", slog.Any("error", err))
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DB = cfg.RedisConnect.DB

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("✅ Successfully connected to Redis")
	return client, nil

}

func NewRateLimitRepo(client *redis.Client, cfg *config.Config) RateLimitRepository {
	return &redisRepository{client: client, cfg: cfg, now: time.Now}
}

// NewRateLimitRepoWithClock is NewRateLimitRepo with a fixed time source.
func NewRateLimitRepoWithClock(client *redis.Client, cfg *config.Config, now func() time.Time) RateLimitRepository {
	return &redisRepository{client: client, cfg: cfg, now: now}
}

func AccessAttemptsKey(orderID string) string {
	return "access_attempts:" + orderID
}

// Sliding window over a sorted set scored by unix seconds.
// Returns isAllowed, attempts left, seconds to wait, error
func (r *redisRepository) CheckAccessRateLimit(ctx context.Context, key string) (bool, int, int, error) {

	logger := middleware.LoggerFromContext(ctx)

	now := r.now()
	window := r.cfg.RateConfig.WindowSize
	windowStart := now.Unix() - int64(window.Seconds())

	pipe := r.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Redis pipeline execution failed for rate limit", slog.String("key", key), slog.Any("error", err))
		return false, 0, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()
	maxAttempts := r.cfg.RateConfig.MaxAttempts

	if attempts > maxAttempts {

		scores, err := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{Key: key, Start: 0, Stop: 0}).Result()
		if err != nil || len(scores) == 0 {
			logger.Error("Failed to get oldest attempt time for rate limit", slog.String("key", key), slog.Any("error", err))
			return false, 0, int(window.Seconds()), fmt.Errorf("failed to get oldest attempt time: %w", err)
		}

		oldest := int64(scores[0].Score)
		retryAfter := max(oldest+int64(window.Seconds())-now.Unix(), 0)

		logger.Warn("Rate limit exceeded", slog.String("key", key), slog.Int64("attempts", attempts))
		return false, 0, int(retryAfter), nil
	}

	remaining := maxAttempts - attempts

	logger.Debug("Rate limit check passed", slog.String("key", key), slog.Int64("attempts", attempts), slog.Int64("remaining", remaining))
	return true, int(remaining), 0, nil
}
