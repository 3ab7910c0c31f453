package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCooldown = time.Minute

// SendLimiter enforces a per-recipient cooldown on outgoing mail, backed
// by Redis. Key format: mail:<kind>:<email>
type SendLimiter struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewSendLimiter creates a SendLimiter wrapping the given Redis client.
// If cooldown <= 0, defaultCooldown is used.
func NewSendLimiter(client *redis.Client, cooldown time.Duration) *SendLimiter {
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &SendLimiter{client: client, cooldown: cooldown}
}

// Allow reports whether a mail of this kind may be sent to email now.
// The first call within a cooldown window claims the slot atomically.
func (l *SendLimiter) Allow(ctx context.Context, kind, email string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(kind, email), "1", l.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("send limit check: %w", err)
	}
	return ok, nil
}

func (l *SendLimiter) key(kind, email string) string {
	return fmt.Sprintf("mail:%s:%s", kind, email)
}
