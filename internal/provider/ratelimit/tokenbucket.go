package ratelimit

import (
	"context"
	"sync"
	"time"

	"portfoliotracker/internal/provider"
)

// TokenBucket is a token bucket limiter.
// - rate: tokens per second
// - capacity: maximum tokens the bucket can hold (burst)
type TokenBucket struct {
	rate     float64
	capacity float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
	if tokensPerSecond <= 0 { tokensPerSecond = 0.0000001 }
	if burst <= 0 { burst = 1 }
	return &TokenBucket{
		rate:     tokensPerSecond,
		capacity: float64(burst),
		tokens:   float64(burst), // start full to allow an initial burst
		last:     time.Now(),
	}
}

// PerMinute builds a bucket from a requests-per-minute quota.
func PerMinute(rpm, burst int) *TokenBucket {
	return NewTokenBucket(float64(rpm)/60, burst)
}

// Allow takes a token without waiting and reports whether one was available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(time.Now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until one token is available or ctx is canceled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		tb.refill(time.Now())
		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		deficit := 1 - tb.tokens
		tb.mu.Unlock()
		// time needed to accumulate one token
		waitDur := time.Duration(deficit/tb.rate*1e9) * time.Nanosecond
		if waitDur <= 0 { waitDur = time.Millisecond }
		timer := time.NewTimer(waitDur)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.last).Seconds()
	if elapsed <= 0 { return }
	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity { tb.tokens = tb.capacity }
	tb.last = now
}

// TokenBucketProvider wraps a stock provider and gates calls using a token bucket.
// With NoWait set, calls fail fast with provider.ErrRateLimited instead of
// queueing, so the caller can fall back immediately.
type TokenBucketProvider struct {
	P      provider.StockProvider
	TB     *TokenBucket
	NoWait bool
}

func (t *TokenBucketProvider) Name() string { return t.P.Name() }

func (t *TokenBucketProvider) Quote(ctx context.Context, symbol string) (provider.Quote, error) {
	if err := t.take(ctx); err != nil { return provider.Quote{}, err }
	return t.P.Quote(ctx, symbol)
}

func (t *TokenBucketProvider) Search(ctx context.Context, keyword string) ([]provider.SymbolMatch, error) {
	if err := t.take(ctx); err != nil { return nil, err }
	return t.P.Search(ctx, keyword)
}

func (t *TokenBucketProvider) take(ctx context.Context) error {
	if t.TB == nil { return nil }
	if t.NoWait {
		if !t.TB.Allow() { return provider.ErrRateLimited }
		return nil
	}
	return t.TB.Wait(ctx)
}
