package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"
)

// ErrBatchTooLarge marks a frame batch that can never fit the bucket.
var ErrBatchTooLarge = errors.New("frame batch exceeds burst")

// Config holds rate limiter configuration
type Config struct {
	FramesPerSecond     float64       // Sustained frame rate per interview
	FrameBurst          int           // Frames an interview may send at once
	InterviewsPerMinute int           // Interview creations per client IP
	IdleTTL             time.Duration // Fallback limiters unused this long are dropped
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		FramesPerSecond:     30,
		FrameBurst:          60,
		InterviewsPerMinute: 10,
		IdleTTL:             10 * time.Minute,
	}
}

// Metrics receives rate limit decisions
type Metrics interface {
	IncrementRateLimited()
}

// Rate describes a token bucket: Limit events per Period with Burst capacity
type Rate struct {
	Limit  int
	Burst  int
	Period time.Duration
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type fallbackEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides distributed rate limiting with Redis and in-memory fallback
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	config       Config
	metrics      Metrics

	fallbackLimiters map[string]*fallbackEntry
	fallbackMutex    sync.Mutex

	stop      chan struct{}
	closeOnce sync.Once
}

// NewRateLimiter creates a new rate limiter. A nil or disabled Redis client
// keeps all state in memory.
func NewRateLimiter(redisClient *RedisClient, config Config, metrics Metrics) *RateLimiter {
	if redisClient == nil {
		redisClient = &RedisClient{}
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultConfig().IdleTTL
	}

	rl := &RateLimiter{
		redisClient:      redisClient,
		config:           config,
		metrics:          metrics,
		fallbackLimiters: make(map[string]*fallbackEntry),
		stop:             make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis rate limiter initialized")
	}

	go rl.cleanupFallbackLimiters()

	return rl
}

func frameKey(interviewID string) string {
	return fmt.Sprintf("ratelimit:frames:%s", interviewID)
}

func ipKey(ip string) string {
	return fmt.Sprintf("ratelimit:interviews:%s", ip)
}

// FrameRate is the per-interview frame bucket
func (rl *RateLimiter) FrameRate() Rate {
	perSecond := int(math.Ceil(rl.config.FramesPerSecond))
	burst := rl.config.FrameBurst
	if burst < perSecond {
		burst = perSecond
	}
	return Rate{Limit: perSecond, Burst: burst, Period: time.Second}
}

// AllowFrames charges n frames against an interview's frame budget. A batch
// larger than the burst is rejected with ErrBatchTooLarge without charging,
// since waiting would never make it fit.
func (rl *RateLimiter) AllowFrames(ctx context.Context, interviewID string, n int) (*Result, error) {
	r := rl.FrameRate()
	if r.Limit > 0 && n > r.Burst {
		details := errbuilder.ErrorMap{}
		details.Set("frame_burst", fmt.Errorf("%d", r.Burst))
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("batch of %d frames exceeds the burst of %d; split it", n, r.Burst)).
			WithCause(ErrBatchTooLarge).
			WithDetails(errbuilder.NewErrDetails(details))
	}

	result, err := rl.AllowN(ctx, frameKey(interviewID), r, n)
	if err == nil && !result.Allowed && rl.metrics != nil {
		rl.metrics.IncrementRateLimited()
	}
	return result, err
}

// AllowIP checks whether ip may create another interview this minute
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	limit := rl.config.InterviewsPerMinute
	return rl.AllowN(ctx, ipKey(ip), Rate{Limit: limit, Burst: limit, Period: time.Minute}, 1)
}

// AllowN checks n events against key, using Redis when available
func (rl *RateLimiter) AllowN(ctx context.Context, key string, r Rate, n int) (*Result, error) {
	if r.Limit <= 0 {
		return &Result{Allowed: true}, nil
	}

	if rl.redisClient.IsEnabled() && rl.redisLimiter != nil {
		result, err := rl.allowRedis(ctx, key, r, n)
		if err == nil {
			return result, nil
		}
		slog.Warn("Redis rate limit check failed, using fallback", "key", key, "error", err)
	}

	return rl.allowFallback(key, r, n), nil
}

// allowRedis performs rate limiting using Redis GCRA
func (rl *RateLimiter) allowRedis(ctx context.Context, key string, r Rate, n int) (*Result, error) {
	limit := redis_rate.Limit{
		Rate:   r.Limit,
		Burst:  r.Burst,
		Period: r.Period,
	}

	res, err := rl.redisLimiter.AllowN(ctx, key, limit, n)
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
	}, nil
}

// allowFallback performs rate limiting using an in-memory token bucket
func (rl *RateLimiter) allowFallback(key string, r Rate, n int) *Result {
	now := time.Now()

	rl.fallbackMutex.Lock()
	entry, exists := rl.fallbackLimiters[key]
	if !exists {
		perSecond := rate.Limit(float64(r.Limit) / r.Period.Seconds())
		burst := r.Burst
		if burst < 1 {
			burst = 1
		}
		entry = &fallbackEntry{limiter: rate.NewLimiter(perSecond, burst)}
		rl.fallbackLimiters[key] = entry
	}
	entry.lastSeen = now
	rl.fallbackMutex.Unlock()

	allowed := entry.limiter.AllowN(now, n)

	remaining := int(entry.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Limit:     r.Limit,
		Remaining: remaining,
		ResetAt:   now.Add(r.Period),
	}

	if !allowed {
		reservation := entry.limiter.ReserveN(now, n)
		if reservation.OK() {
			result.RetryAfter = reservation.DelayFrom(now)
			reservation.CancelAt(now)
		} else {
			result.RetryAfter = r.Period
		}
	}

	return result
}

// Forget drops the frame budget of a finished or deleted interview
func (rl *RateLimiter) Forget(ctx context.Context, interviewID string) {
	key := frameKey(interviewID)

	rl.fallbackMutex.Lock()
	delete(rl.fallbackLimiters, key)
	rl.fallbackMutex.Unlock()

	if rl.redisClient.IsEnabled() && rl.redisLimiter != nil {
		if err := rl.redisLimiter.Reset(ctx, key); err != nil {
			slog.Warn("Failed to reset rate limit", "key", key, "error", err)
		}
	}
}

// cleanupFallbackLimiters periodically removes idle fallback limiters
func (rl *RateLimiter) cleanupFallbackLimiters() {
	ticker := time.NewTicker(rl.config.IdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) int {
	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	removed := 0
	for key, entry := range rl.fallbackLimiters {
		if now.Sub(entry.lastSeen) > rl.config.IdleTTL {
			delete(rl.fallbackLimiters, key)
			removed++
		}
	}
	return removed
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.fallbackMutex.Lock()
	fallbackCount := len(rl.fallbackLimiters)
	rl.fallbackMutex.Unlock()

	stats := map[string]interface{}{
		"redis_enabled":     rl.redisClient.IsEnabled(),
		"fallback_limiters": fallbackCount,
		"frames_per_second": rl.config.FramesPerSecond,
		"frame_burst":       rl.config.FrameBurst,
	}

	if rl.redisClient.IsEnabled() {
		stats["redis_pool"] = rl.redisClient.GetPoolStats()
	}

	return stats
}

// Close stops the cleanup goroutine and closes the Redis connection
func (rl *RateLimiter) Close() error {
	var err error
	rl.closeOnce.Do(func() {
		close(rl.stop)
		err = rl.redisClient.Close()
	})
	return err
}
