package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const linkAttemptsPrefix = "link_attempts:"

// NewClient builds a client for the given address and checks it answers PING.
func NewClient(ctx context.Context, address, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", address, err)
	}
	return rdb, nil
}

// incrWindowScript bumps the counter and arms the window in one step. A key
// left without a TTL gets one on its next hit, so a window always ends.
var incrWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// Limiter counts attempts per key in fixed windows.
type Limiter struct {
	rdb    redis.Cmdable
	limit  int64
	window time.Duration
}

func NewLimiter(rdb redis.Cmdable, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: int64(limit), window: window}
}

// Allow records one attempt for key and reports whether it is within the limit.
// A Redis failure allows the attempt.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	redisKey := linkAttemptsPrefix + key

	count, err := incrWindowScript.Run(ctx, l.rdb, []string{redisKey}, l.window.Milliseconds()).Int64()
	if err != nil {
		log.Warn().Err(err).Str("key", redisKey).Msg("[redis] link limiter unavailable, allowing attempt")
		return true
	}

	if count > l.limit {
		log.Warn().Str("key", redisKey).Int64("count", count).Msg("[redis] link attempts over limit")
		return false
	}
	return true
}
