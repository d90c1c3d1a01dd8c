package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/railzwaylabs/sitepnl/internal/clock"
	"github.com/railzwaylabs/sitepnl/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrRateLimited = errors.New("rate_limited")

var Module = fx.Module("ratelimit",
	fx.Provide(NewLimiter),
	fx.Invoke(func(l *Limiter, loader *config.Loader) {
		loader.OnChange(func(cfg config.Config) {
			l.Update(cfg.RateLimit)
		})
	}),
)

type LimiterParam struct {
	fx.In

	Config config.Config
	Redis  *redis.Client `optional:"true"`
	Clock  clock.Clock   `optional:"true"`
	Log    *zap.Logger
}

// Limiter is a fixed window request counter shared across instances through
// redis. Every redis failure lets the request through.
type Limiter struct {
	redis *redis.Client
	log   *zap.Logger
	clock clock.Clock

	mu  sync.RWMutex
	cfg config.RateLimitConfig
}

func NewLimiter(p LimiterParam) *Limiter {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Limiter{
		redis: p.Redis,
		log:   p.Log.Named("ratelimit"),
		clock: clk,
		cfg:   p.Config.RateLimit,
	}
}

// Update swaps the limit settings. Invalid settings are ignored.
func (l *Limiter) Update(cfg config.RateLimitConfig) {
	if cfg.Enabled && (cfg.Limit < 1 || cfg.Window <= 0) {
		l.log.Warn("ignoring invalid rate limit settings",
			zap.Int("limit", cfg.Limit),
			zap.Duration("window", cfg.Window),
		)
		return
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()

	l.log.Info("rate limit settings updated",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("limit", cfg.Limit),
		zap.Duration("window", cfg.Window),
	)
}

func (l *Limiter) Settings() config.RateLimitConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Allow counts one request for key and returns ErrRateLimited once the
// window's limit is exceeded.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	cfg := l.Settings()
	if !cfg.Enabled || l.redis == nil {
		return nil
	}

	window := l.clock.Now(ctx).UTC().Truncate(cfg.Window)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window.Unix())

	val, err := l.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		l.log.Error("failed to increment rate limit counter", zap.String("key", key), zap.Error(err))
		return nil
	}

	if val == 1 {
		l.redis.Expire(ctx, redisKey, cfg.Window)
	}

	if val > int64(cfg.Limit) {
		return ErrRateLimited
	}
	return nil
}
