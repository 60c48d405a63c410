package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
	"go.uber.org/zap"
)

// AttemptStore is the counter store behind brute-force protection.
// cache.RedisCache implements it.
type AttemptStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const attemptWindow = 15 * time.Minute

// BruteForceProtection applies progressive sign-in lockouts per client IP.
// A nil store disables it.
type BruteForceProtection struct {
	store  AttemptStore
	logger *zap.Logger
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(store AttemptStore, logger *zap.Logger) *BruteForceProtection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BruteForceProtection{store: store, logger: logger}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("brute_force:lock:%s", ip) }

// CheckAndRecordAttempt middleware rejects requests from locked IPs
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if b.store == nil {
			return c.Next()
		}
		ctx := c.UserContext()
		key := lockKey(c.IP())

		locked, err := b.store.Exists(ctx, key)
		if err != nil {
			// Cache outages must not lock legitimate users out.
			b.logger.Warn("brute force check failed", zap.Error(err))
			return c.Next()
		}
		if !locked {
			return c.Next()
		}

		ttl, _ := b.store.TTL(ctx, key)
		retryAfter := int(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = 60
		}
		c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
		return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
	}
}

// lockoutFor is the lock applied after the given number of failures.
func lockoutFor(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// RecordFailedAttempt records a failed sign-in and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip, email string) {
	if b.store == nil {
		return
	}
	attempts, err := b.store.Increment(ctx, attemptKey(ip))
	if err != nil {
		b.logger.Warn("brute force record failed", zap.Error(err))
		return
	}
	if attempts == 1 {
		_ = b.store.Expire(ctx, attemptKey(ip), attemptWindow)
	}

	lock := lockoutFor(attempts)
	if lock == 0 {
		return
	}
	b.logger.Warn("sign-in locked",
		zap.String("ip", ip),
		zap.String("email", strings.ToLower(email)),
		zap.Int64("attempts", attempts),
		zap.Duration("lock", lock),
	)
	if err := b.store.Set(ctx, lockKey(ip), "locked", lock); err != nil {
		b.logger.Warn("brute force lock failed", zap.Error(err))
	}
}

// RecordSuccessfulAttempt clears failed attempts on successful sign-in
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip string) {
	if b.store == nil {
		return
	}
	_ = b.store.Delete(ctx, attemptKey(ip), lockKey(ip))
}
