package engine

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RatePacer spaces writes at least interval apart. The engine waits only
// between writes, so every Wait, including the first, blocks for interval.
type RatePacer struct {
	limiter *rate.Limiter
}

// NewRatePacer creates a pacer. A non-positive interval disables pacing.
func NewRatePacer(interval time.Duration) *RatePacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	limiter := rate.NewLimiter(limit, 1)
	// Spend the initial burst token so the first wait is a full interval.
	limiter.Allow()
	return &RatePacer{limiter: limiter}
}

// Wait blocks until the next write is allowed or ctx is done.
func (p *RatePacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

type noPacer struct{}

func (noPacer) Wait(context.Context) error { return nil }
