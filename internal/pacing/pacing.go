// Package pacing spaces out calls to external services.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate blocks until the next call is allowed.
type Gate interface {
	Wait(ctx context.Context) error
}

// IntervalGate admits one call immediately, then at most one call per
// interval. It is safe for concurrent use.
type IntervalGate struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// Interval returns a gate that spaces calls at least d apart.
// A non-positive d never blocks.
func Interval(d time.Duration) *IntervalGate {
	if d <= 0 {
		return &IntervalGate{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &IntervalGate{
		interval: d,
		limiter:  rate.NewLimiter(rate.Every(d), 1),
	}
}

// Wait blocks until the interval since the previous call has passed or ctx ends.
func (g *IntervalGate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Interval reports the configured spacing.
func (g *IntervalGate) Interval() time.Duration {
	return g.interval
}

// None is a Gate that never blocks.
var None Gate = noop{}

type noop struct{}

func (noop) Wait(ctx context.Context) error { return ctx.Err() }
