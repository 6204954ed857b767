// Package ratelimit implements a Redis-backed token bucket.
//
// Ingestion calls out to a metered extraction service, so the API throttles
// submissions per owner before any extraction request leaves the process. The
// bucket state lives in Redis so that all API instances share one budget.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketLua refills the bucket based on elapsed milliseconds and takes
// one token when available. Runs atomically inside Redis.
const tokenBucketLua = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

if rate <= 0 or burst <= 0 then
  return 1
end

local data = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])
if tokens == nil then
  tokens = burst
end
if ts == nil then
  ts = now
end

local delta = math.max(0, now - ts)
tokens = math.min(burst, tokens + (delta * rate) / 1000.0)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("HMSET", key, "tokens", tokens, "ts", now)
redis.call("PEXPIRE", key, math.ceil((burst / rate) * 2000.0))

return allowed
`

// Limiter is a per-key token bucket with shared state in Redis.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	rate   float64 // tokens per second
	burst  float64
	script *redis.Script
}

// New creates a Limiter. rate is tokens per second, burst the bucket capacity.
func New(rdb *redis.Client, prefix string, rate, burst float64) *Limiter {
	if prefix == "" {
		prefix = "pricetracker:ratelimit:"
	}
	return &Limiter{
		rdb:    rdb,
		prefix: prefix,
		rate:   rate,
		burst:  burst,
		script: redis.NewScript(tokenBucketLua),
	}
}

// Allow reports whether one request for key may proceed now.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixMilli()
	res, err := l.script.Run(ctx, l.rdb, []string{l.prefix + key}, l.rate, l.burst, now).Int64()
	if err != nil {
		return false, fmt.Errorf("run token bucket script: %w", err)
	}
	return res == 1, nil
}
