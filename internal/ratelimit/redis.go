package ratelimit

import (
	"context" // Request scoped calls
	"fmt"     // Error wrapping
	"time"    // TTL conversion

	"github.com/redis/go-redis/v9" // Redis client and scripting
)

// fixedWindow increments the counter and starts the window on the first hit.
// Returns the count and the remaining window in milliseconds.
var fixedWindow = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore is a fixed window counter shared by every API instance
type RedisStore struct {
	rdb    *redis.Client // Redis client
	tier   Tier          // Limits applied
	prefix string        // Key prefix per tier
}

// NewRedisStore creates a Redis backed store for the tier
func NewRedisStore(rdb *redis.Client, tier Tier) *RedisStore {
	return &RedisStore{rdb: rdb, tier: tier, prefix: "ratelimit:" + tier.Name + ":"}
}

// Take implements Store
func (s *RedisStore) Take(ctx context.Context, key string) (Decision, error) {
	res, err := fixedWindow.Run(ctx, s.rdb, []string{s.prefix + key}, s.tier.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit counter: unexpected reply %v", res)
	}
	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond // Hits so far and time left

	dec := Decision{Limit: s.tier.Max, Remaining: max(s.tier.Max-count, 0)}
	if count > s.tier.Max {
		dec.RetryAfter = ttl // Until the window expires
		return dec, nil
	}
	dec.Allowed = true
	return dec, nil
}
