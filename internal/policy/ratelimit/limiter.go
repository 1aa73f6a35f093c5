// Package ratelimit implements a rolling-window rate limiter for the
// govinfo bulk-data API quota.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lawcorpus/plawfetch/internal/clock"
	"github.com/lawcorpus/plawfetch/internal/metrics"
)

// Config holds rate limiter configuration.
type Config struct {
	// Calls is the maximum number of calls allowed per Window.
	Calls int
	// Window is the length of the rolling window.
	Window time.Duration
}

// Limiter admits at most Calls invocations per rolling Window. Callers
// over budget are blocked until the oldest admitted call ages out of the
// window; a call is never rejected.
type Limiter struct {
	mu    sync.Mutex
	cfg   Config
	clock clock.Clock
	sleep func(ctx context.Context, d time.Duration) error

	// admitted holds the admission times still inside the window,
	// oldest first.
	admitted []time.Time
}

// New creates a new Limiter.
func New(cfg Config, clk clock.Clock) *Limiter {
	if cfg.Calls <= 0 {
		cfg.Calls = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Hour
	}
	return &Limiter{
		cfg:   cfg,
		clock: clk,
		sleep: sleepContext,
	}
}

// Wait blocks until the caller may proceed under the rolling-window
// budget, respecting the context.
func (l *Limiter) Wait(ctx context.Context) error {
	start := l.clock.Now()
	for {
		l.mu.Lock()
		now := l.clock.Now()
		l.prune(now)
		if len(l.admitted) < l.cfg.Calls {
			l.admitted = append(l.admitted, now)
			l.mu.Unlock()
			if delay := now.Sub(start); delay > time.Millisecond {
				metrics.ObserveRateLimitDelay(delay)
			}
			return nil
		}
		wakeAt := l.admitted[0].Add(l.cfg.Window)
		l.mu.Unlock()

		if err := l.sleep(ctx, wakeAt.Sub(now)); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}
}

// prune drops admissions that have aged out of the window. Callers must
// hold the mutex.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.cfg.Window)
	i := 0
	for i < len(l.admitted) && !l.admitted[i].After(cutoff) {
		i++
	}
	l.admitted = l.admitted[i:]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
