package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hostelsync/hostelsync-api/internal/config"
)

const (
	revokedTokenPrefix = "hostelsync:revoked:"
	loginRatePrefix    = "hostelsync:login:"
)

// Redis wraps the go-redis client. A nil *Redis or nil Client is a valid, disabled store:
// revocation checks report false and rate limits allow everything.
type Redis struct {
	Client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis using the provided configuration. It returns a disabled
// store when Redis is switched off.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if !cfg.Enabled {
		logger.Warn("redis disabled; logout is client-side only and login is not rate limited")
		return &Redis{logger: logger}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, logger: logger}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Enabled reports whether a client is configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// RevokeToken stores the token id until the token would have expired anyway.
func (r *Redis) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if !r.Enabled() || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.Client.Set(ctx, revokedTokenPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether the token id was revoked.
func (r *Redis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !r.Enabled() {
		return false, nil
	}
	n, err := r.Client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AllowLogin applies a fixed-window counter per key. Redis failures fail open.
func (r *Redis) AllowLogin(ctx context.Context, key string, limit int, window time.Duration) bool {
	if !r.Enabled() || limit <= 0 {
		return true
	}
	redisKey := fmt.Sprintf("%s%s", loginRatePrefix, key)

	pipe := r.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		if r.logger != nil {
			r.logger.Warn("login rate limit unavailable", zap.Error(err))
		}
		return true
	}
	return incr.Val() <= int64(limit)
}
