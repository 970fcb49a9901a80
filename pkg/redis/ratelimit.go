package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a sliding window shared by every replica on the same Redis.
// Upstream price APIs are throttled across processes with it.
type RateLimiter struct {
	client *Client
	prefix string
}

// Quota is the request budget of one upstream
type Quota struct {
	Name   string // e.g. "yahoo"
	Limit  int    // requests per window
	Window time.Duration
}

// Decision is the answer for a single request
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // when denied, until the oldest request leaves the window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

// Allow records a request if the quota has room
func (r *RateLimiter) Allow(ctx context.Context, q Quota) (Decision, error) {
	if !r.client.Enabled() {
		return Decision{Allowed: true, Remaining: q.Limit}, nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, q.Name)
	now := time.Now().UnixMilli()
	windowMs := q.Window.Milliseconds()

	res, err := slidingWindow.Run(ctx, r.client.Redis(), []string{key},
		now, windowMs, q.Limit,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", q.Name, err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit %s: unexpected reply %v", q.Name, res)
	}

	if res[0] == 1 {
		return Decision{Allowed: true, Remaining: int(res[1])}, nil
	}
	return Decision{RetryAfter: time.Duration(res[1]) * time.Millisecond}, nil
}

// slidingWindow trims, counts and records in one round trip.
// Reply: {1, remaining} when admitted, {0, wait_ms} when denied.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window_ms)

local count = redis.call('ZCARD', key)
if count < limit then
	redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
	redis.call('PEXPIRE', key, window_ms)
	return {1, limit - count - 1}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local wait = window_ms
if oldest[2] then
	wait = tonumber(oldest[2]) + window_ms - now
end
if wait < 1 then
	wait = 1
end
return {0, wait}
`)

// Wait blocks until the quota admits a request or ctx ends
func (r *RateLimiter) Wait(ctx context.Context, q Quota) error {
	for {
		d, err := r.Allow(ctx, q)
		if err != nil {
			return err
		}
		if d.Allowed {
			return nil
		}

		timer := time.NewTimer(d.RetryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Upstream quotas, kept well under the published limits
var (
	YahooQuota = Quota{Name: "yahoo", Limit: 5, Window: time.Second}

	// FRED allows 120 requests per minute per key
	FREDQuota = Quota{Name: "fred", Limit: 100, Window: time.Minute}
)
