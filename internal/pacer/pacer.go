// Package pacer spaces out consecutive probes so that we do not
// look abusive to the resolver or to the web server.
package pacer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultDelay is the default delay between two consecutive probes.
const DefaultDelay = 500 * time.Millisecond

// Pacer allows one probe every Delay. The first call to Wait
// returns immediately. A zero or negative delay disables pacing.
type Pacer struct {
	limiter *rate.Limiter
}

// New creates a new [*Pacer] with the given delay.
func New(delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next probe is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
