package engine

import (
	"context"
	"runtime"

	"golang.org/x/time/rate"
)

// Limiter bounds total dispatch throughput across all threads
// A zero rate disables limiting; Wait then only yields the processor
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter creates a limiter admitting perSecond dispatches with the given burst
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return &Limiter{}
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until one dispatch token is available or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.rl == nil {
		runtime.Gosched()
		return ctx.Err()
	}
	return l.rl.Wait(ctx)
}

// Unlimited reports whether limiting is disabled
func (l *Limiter) Unlimited() bool {
	return l == nil || l.rl == nil
}
