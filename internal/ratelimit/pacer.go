// Package ratelimit paces outbound requests to the external platforms.
// Each client owns a Pacer configured with the platform's minimum request
// interval; a Pacer can additionally carry a hard request budget, after
// which it refuses further requests instead of queueing them.
package ratelimit

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrBudgetExhausted is returned by Wait once the configured request budget
// has been spent. Callers treat it as a terminal condition for the current
// discovery run, not a transient failure.
var ErrBudgetExhausted = errors.New("ratelimit: request budget exhausted")

// Status is a snapshot of a Pacer's budget accounting.
type Status struct {
	Limit     int // configured budget, 0 when unlimited
	Remaining int // requests left before exhaustion, -1 when unlimited
	Made      int // requests admitted so far
}

// Pacer serializes requests at a minimum interval and optionally enforces a
// total request budget. The zero value is not usable; use New.
type Pacer struct {
	limiter *rate.Limiter
	jitter  time.Duration

	mu    sync.Mutex
	limit int
	made  int
}

// New returns a Pacer that admits at most one request per interval. A
// non-positive interval disables pacing. budget caps the total number of
// requests admitted; 0 means unlimited. jitter, when positive, adds a
// random delay in [0, jitter) after each admitted wait.
func New(interval time.Duration, budget int, jitter time.Duration) *Pacer {
	lim := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		lim = rate.NewLimiter(rate.Every(interval), 1)
	}
	if budget < 0 {
		budget = 0
	}
	return &Pacer{limiter: lim, jitter: jitter, limit: budget}
}

// Wait blocks until the next request may proceed. It returns
// ErrBudgetExhausted once the budget is spent and the context error if ctx
// is done before the interval elapses.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	if p.limit > 0 && p.made >= p.limit {
		p.mu.Unlock()
		return ErrBudgetExhausted
	}
	p.made++
	p.mu.Unlock()

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if p.jitter > 0 {
		d := rand.N(p.jitter)
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// Status reports the current budget accounting.
func (p *Pacer) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Status{Limit: p.limit, Made: p.made, Remaining: -1}
	if p.limit > 0 {
		s.Remaining = p.limit - p.made
		if s.Remaining < 0 {
			s.Remaining = 0
		}
	}
	return s
}

// Reset clears the budget counter. Used by clients whose quota renews on a
// schedule, such as monthly search API allowances.
func (p *Pacer) Reset() {
	p.mu.Lock()
	p.made = 0
	p.mu.Unlock()
}
