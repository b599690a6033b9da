package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenBucket represents a token bucket rate limiter
type TokenBucket struct {
	redis    *redis.Client
	capacity int64         // Maximum number of tokens
	refill   int64         // Number of tokens to refill per window
	window   time.Duration // Time window for refilling (1 minute)
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(redisClient *redis.Client, capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		redis:    redisClient,
		capacity: capacity,
		refill:   refillRate,
		window:   time.Minute,
	}
}

// Lua script for atomic token bucket operations. Returns {allowed, remaining}
// so a single round trip serves both the decision and the response headers.
const allowScript = `
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refill_rate = tonumber(ARGV[2])
	local window = tonumber(ARGV[3])
	local now = tonumber(ARGV[4])
	local consume = tonumber(ARGV[5])

	-- Get current bucket state
	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local tokens = tonumber(bucket[1]) or capacity
	local last_refill = tonumber(bucket[2]) or now

	-- Refill based on time elapsed
	local time_passed = now - last_refill
	local tokens_to_add = math.floor((time_passed / window) * refill_rate)

	if tokens_to_add > 0 then
		tokens = math.min(capacity, tokens + tokens_to_add)
		last_refill = now
	end

	local allowed = 0
	if consume == 1 and tokens > 0 then
		tokens = tokens - 1
		allowed = 1
	elseif consume == 0 then
		allowed = 1
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill', last_refill)
	redis.call('EXPIRE', key, window * 2)
	return {allowed, tokens}
`

// Allow consumes one token for the (subject, action) pair. It reports whether
// the action is allowed and how many tokens remain.
func (tb *TokenBucket) Allow(ctx context.Context, subject, action string) (bool, int64, error) {
	return tb.run(ctx, subject, action, true)
}

// Remaining reports the current token count without consuming one.
func (tb *TokenBucket) Remaining(ctx context.Context, subject, action string) (int64, error) {
	_, remaining, err := tb.run(ctx, subject, action, false)
	return remaining, err
}

// Reset clears the rate limit for a specific subject action
func (tb *TokenBucket) Reset(ctx context.Context, subject, action string) error {
	key := fmt.Sprintf("rate_limit:%s:%s", subject, action)
	return tb.redis.Del(ctx, key).Err()
}

// Capacity returns the bucket's maximum token count.
func (tb *TokenBucket) Capacity() int64 {
	return tb.capacity
}

func (tb *TokenBucket) run(ctx context.Context, subject, action string, consume bool) (bool, int64, error) {
	key := fmt.Sprintf("rate_limit:%s:%s", subject, action)

	consumeFlag := 0
	if consume {
		consumeFlag = 1
	}

	now := time.Now().Unix()
	result, err := tb.redis.Eval(ctx, allowScript, []string{key},
		tb.capacity, tb.refill, int64(tb.window.Seconds()), now, consumeFlag).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected result shape from rate limit script")
	}

	allowed, ok1 := values[0].(int64)
	remaining, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("unexpected result type from rate limit script")
	}

	return allowed == 1, remaining, nil
}
