// Package quota implements the sliding-window send quota backed by Redis.
//
// Each identifier owns a sorted set of accepted-request timestamps. A
// single Lua script trims expired entries, checks capacity, and records
// the new request, so concurrent calls for one identifier can never both
// claim the last remaining slot.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one quota check.
type Decision struct {
	Allowed  bool
	Used     int           // requests consumed in the current window, including this one if allowed
	Capacity int
	Reset    time.Duration // time until the oldest counted request leaves the window
}

var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local capacity = tonumber(ARGV[3])

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local used = redis.call("ZCARD", key)
local allowed = 0
if used < capacity then
	redis.call("ZADD", key, now, ARGV[4])
	redis.call("PEXPIRE", key, window)
	allowed = 1
	used = used + 1
end
local reset = 0
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
if #oldest >= 2 then
	reset = tonumber(oldest[2]) + window - now
end
return {allowed, used, reset}
`)

// Limiter is a sliding-window limiter over a Redis sorted set per key.
type Limiter struct {
	client   *redis.Client
	capacity int
	window   time.Duration
}

// New creates a limiter allowing capacity requests per identifier per
// rolling window.
func New(client *redis.Client, capacity int, window time.Duration) *Limiter {
	return &Limiter{client: client, capacity: capacity, window: window}
}

// Limit consumes one slot for the identifier if capacity remains and
// reports the window state either way.
func (l *Limiter) Limit(ctx context.Context, identifier string) (Decision, error) {
	now := time.Now()
	res, err := slidingWindow.Run(ctx, l.client,
		[]string{quotaKey(identifier)},
		now.UnixMilli(),
		l.window.Milliseconds(),
		l.capacity,
		fmt.Sprintf("%d", now.UnixNano()),
	).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("quota: unexpected script reply %v", res)
	}

	return Decision{
		Allowed:  res[0] == 1,
		Used:     int(res[1]),
		Capacity: l.capacity,
		Reset:    time.Duration(res[2]) * time.Millisecond,
	}, nil
}

func quotaKey(identifier string) string {
	return "quota:" + identifier
}
