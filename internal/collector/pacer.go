package collector

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces successive requests to one upstream by a minimum interval.
// It is a token bucket with burst 1; the first request is never delayed.
type Pacer struct {
	limiter *rate.Limiter
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer; interval <= 0 disables pacing
func NewPacer(interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Delay reserves the next slot as of now and returns how long the caller
// must wait before using it.
func (p *Pacer) Delay(now time.Time) time.Duration {
	r := p.limiter.ReserveN(now, 1)
	if !r.OK() {
		return 0
	}
	return r.DelayFrom(now)
}

// Wait blocks until the next slot. A nil Pacer never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	d := p.Delay(p.now())
	if d <= 0 {
		return nil
	}
	return p.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
