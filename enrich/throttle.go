package enrich

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttle paces outbound detail lookups. *rate.Limiter satisfies it.
type Throttle interface {
	Wait(ctx context.Context) error
}

// NewThrottle returns a token bucket admitting perSecond calls with a burst
// of one, so k calls take at least (k-1)/perSecond.
func NewThrottle(perSecond float64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}
