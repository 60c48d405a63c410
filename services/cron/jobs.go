package cron

import (
	"context"
	"fmt"
	"time"
)

// TokenCleaner purges expired entries from the token blacklist.
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// IdleEvicter drops conversations that have been idle for too long.
type IdleEvicter interface {
	EvictIdle(maxIdle time.Duration) int
}

// TokenCleanupJob removes expired revoked tokens, hourly.
func TokenCleanupJob(cleaner TokenCleaner) Job {
	return Job{
		Name:    "cleanup_expired_tokens",
		Spec:    "0 0 * * * *",
		Timeout: 5 * time.Minute,
		Run: func(ctx context.Context) (string, map[string]any, error) {
			n, err := cleaner.CleanupExpiredTokens(ctx)
			if err != nil {
				return "", nil, fmt.Errorf("cleanup expired tokens: %w", err)
			}
			return fmt.Sprintf("Removed %d expired tokens", n), map[string]any{"removed": n}, nil
		},
	}
}

// IdleConversationJob evicts conversations idle for longer than ttl, every
// five minutes.
func IdleConversationJob(evicter IdleEvicter, ttl time.Duration) Job {
	return Job{
		Name: "evict_idle_conversations",
		Spec: "0 */5 * * * *",
		Run: func(context.Context) (string, map[string]any, error) {
			n := evicter.EvictIdle(ttl)
			return fmt.Sprintf("Evicted %d idle conversations", n), map[string]any{"evicted": n, "ttl_minutes": ttl.Minutes()}, nil
		},
	}
}

// JobLogRetentionJob deletes job runs older than keep, daily at 2 AM.
func JobLogRetentionJob(log JobLog, keep time.Duration) Job {
	return Job{
		Name:    "cleanup_old_job_logs",
		Spec:    "0 0 2 * * *",
		Timeout: 10 * time.Minute,
		Run: func(ctx context.Context) (string, map[string]any, error) {
			n, err := log.Prune(ctx, time.Now().Add(-keep))
			if err != nil {
				return "", nil, fmt.Errorf("prune job logs: %w", err)
			}
			return fmt.Sprintf("Deleted %d old job logs", n), map[string]any{"deleted": n}, nil
		},
	}
}
