package services

import (
	"hash/fnv"
	"sync"
	"time"

	"gatherly/internal/domain"
)

const rateLimitShards = 16

// slidingWindowLimiter counts request timestamps per (user, action,
// resource) key within a trailing window. State is sharded by key so
// unrelated callers never contend on one mutex, and entries expire
// through the window check itself rather than a background sweep.
type slidingWindowLimiter struct {
	rules  map[string]domain.RateLimitRule
	now    func() time.Time
	shards [rateLimitShards]*limiterShard
}

type limiterShard struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

// NewSlidingWindowLimiter returns a RateLimiter enforcing the given
// per-action rules. Actions with no rule are always allowed. now may be
// nil, in which case time.Now is used.
func NewSlidingWindowLimiter(rules map[string]domain.RateLimitRule, now func() time.Time) domain.RateLimiter {
	if now == nil {
		now = time.Now
	}
	l := &slidingWindowLimiter{rules: rules, now: now}
	for i := range l.shards {
		l.shards[i] = &limiterShard{entries: make(map[string][]time.Time)}
	}
	return l
}

func (l *slidingWindowLimiter) Allow(userID, action, resource string) domain.RateLimitDecision {
	rule, ok := l.rules[action]
	if !ok || rule.Limit <= 0 {
		return domain.RateLimitDecision{Allowed: true}
	}

	key := userID + "|" + action
	if resource != "" {
		key += "|" + resource
	}

	shard := l.shards[shardIndex(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-rule.Window)

	// Drop only timestamps strictly outside [now-window, now]; dropping a
	// boundary entry would under-count and let extra requests through.
	kept := shard.entries[key][:0]
	for _, ts := range shard.entries[key] {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= rule.Limit {
		shard.entries[key] = kept
		return domain.RateLimitDecision{
			Allowed: false,
			ResetAt: kept[0].Add(rule.Window),
		}
	}

	kept = append(kept, now)
	shard.entries[key] = kept
	return domain.RateLimitDecision{
		Allowed: true,
		ResetAt: kept[0].Add(rule.Window),
	}
}

func shardIndex(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % rateLimitShards)
}
