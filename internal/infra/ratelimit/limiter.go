// Package ratelimit implements fixed-window request limits keyed by subject.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"highlight-api/internal/infra/cache"

	"github.com/redis/go-redis/v9"
)

type Decision struct {
	Allowed    bool
	Count      int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, scope, subject string, now time.Time) (Decision, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// Memory keeps windows in process. Expired windows are removed by Prune.
type Memory struct {
	limit   int
	window  time.Duration
	windows *cache.Store[window]
}

func NewMemory(limit int, w time.Duration) *Memory {
	return &Memory{limit: limit, window: w, windows: cache.New[window]()}
}

func (m *Memory) Allow(_ context.Context, scope, subject string, now time.Time) (Decision, error) {
	if m.limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	w := m.windows.Update(scope+":"+subject, now, func(cur window, found bool) (window, time.Time) {
		if !found {
			cur = window{resetAt: now.Add(m.window)}
		}
		cur.count++
		return cur, cur.resetAt
	})
	return decide(w.count, m.limit, w.resetAt.Sub(now)), nil
}

func (m *Memory) Prune(now time.Time) int {
	return m.windows.Prune(now)
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// Redis shares windows across API instances.
type Redis struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

func NewRedis(client redis.UniversalClient, prefix string, limit int, window time.Duration) *Redis {
	p := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if p == "" {
		p = "highlight:rate_limit"
	}
	return &Redis{client: client, prefix: p, limit: limit, window: window}
}

func (r *Redis) Allow(ctx context.Context, scope, subject string, _ time.Time) (Decision, error) {
	if r.limit <= 0 {
		return Decision{Allowed: true}, nil
	}
	windowMs := r.window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	key := fmt.Sprintf("%s:%s:%s", r.prefix, scope, strings.TrimSpace(subject))
	raw, err := rateLimitScript.Run(ctx, r.client, []string{key}, windowMs).Result()
	if err != nil {
		return Decision{}, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return Decision{}, fmt.Errorf("unexpected redis limiter response shape: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok || ttlMs < 0 {
		ttlMs = windowMs
	}
	return decide(int(count), r.limit, time.Duration(ttlMs)*time.Millisecond), nil
}

func decide(count, limit int, ttl time.Duration) Decision {
	d := Decision{Allowed: count <= limit, Count: count}
	if !d.Allowed {
		secs := math.Ceil(ttl.Seconds())
		if secs < 1 {
			secs = 1
		}
		d.RetryAfter = time.Duration(secs) * time.Second
	}
	return d
}
