package ocr

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Throttled bounds the request rate and the number of in-flight calls of a
// Client.
type Throttled struct {
	next    Client
	limiter *rate.Limiter
	sem     *semaphore.Weighted
}

// Throttle wraps next so that at most maxConcurrent calls run at once and
// calls start no faster than one per every, with the given burst.
// A zero every disables rate limiting; a maxConcurrent below 1 means 1.
func Throttle(next Client, every time.Duration, burst int, maxConcurrent int) *Throttled {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if every > 0 {
		limit = rate.Every(every)
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Analyze waits for a slot and a token, then calls the wrapped client.
func (t *Throttled) Analyze(ctx context.Context, pdf []byte) (*AnalyzeResult, error) {
	const op = "Analyze"

	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, WrapOCRError(op, ErrContextCanceled, "waiting for a free slot")
	}
	defer t.sem.Release(1)

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, WrapOCRError(op, ErrContextCanceled, "waiting for rate limit")
	}
	return t.next.Analyze(ctx, pdf)
}
