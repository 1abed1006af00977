package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	ActionSendMessage      = "send_message"
	ActionOpenConversation = "open_conversation"
	ActionCreateListing    = "create_listing"
	ActionSearch           = "search"
)

// Policy is a bucket of Burst tokens refilled one at a time every Every.
type Policy struct {
	Burst int
	Every time.Duration
}

var DefaultPolicies = map[string]Policy{
	ActionSendMessage:      {Burst: 10, Every: 6 * time.Second},
	ActionOpenConversation: {Burst: 10, Every: 2 * time.Minute},
	ActionCreateListing:    {Burst: 5, Every: 12 * time.Minute},
	ActionSearch:           {Burst: 30, Every: 2 * time.Second},
}

var fallbackPolicy = Policy{Burst: 20, Every: 3 * time.Second}

type TokenBucket struct {
	mu         sync.Mutex
	policy     Policy
	tokens     int
	lastRefill time.Time
	lastUsed   time.Time
}

func NewTokenBucket(policy Policy, now time.Time) *TokenBucket {
	return &TokenBucket{
		policy:     policy,
		tokens:     policy.Burst,
		lastRefill: now,
		lastUsed:   now,
	}
}

// Allow consumes a token if one is available. Otherwise it returns how long
// until the next refill.
func (tb *TokenBucket) Allow(now time.Time) (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.lastUsed = now
	if refills := int(now.Sub(tb.lastRefill) / tb.policy.Every); refills > 0 {
		tb.tokens += refills
		if tb.tokens > tb.policy.Burst {
			tb.tokens = tb.policy.Burst
		}
		tb.lastRefill = tb.lastRefill.Add(time.Duration(refills) * tb.policy.Every)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}
	return false, tb.lastRefill.Add(tb.policy.Every).Sub(now)
}

func (tb *TokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.tokens
}

func (tb *TokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastUsed
}

// RateLimiter keeps one bucket per key and action.
type RateLimiter struct {
	mu       sync.RWMutex
	buckets  map[string]*TokenBucket
	policies map[string]Policy
	now      func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWith(DefaultPolicies, time.Now)
}

func NewRateLimiterWith(policies map[string]Policy, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*TokenBucket),
		policies: policies,
		now:      now,
	}
}

func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	id := key + ":" + action

	rl.mu.RLock()
	bucket, ok := rl.buckets[id]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		if bucket, ok = rl.buckets[id]; !ok {
			policy, known := rl.policies[action]
			if !known {
				policy = fallbackPolicy
			}
			bucket = NewTokenBucket(policy, rl.now())
			rl.buckets[id] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket.Allow(rl.now())
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for id, bucket := range rl.buckets {
		if now.Sub(bucket.idleSince()) > maxIdle {
			delete(rl.buckets, id)
		}
	}
}

func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			}
		}
	}()
}
