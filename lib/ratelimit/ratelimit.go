// Package ratelimit implements sliding-window admission control with a
// jittered inter-request delay. One Limiter guards one upstream; callers
// block in Admit until they may fire a request.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	// Window is the trailing interval requests are counted within.
	Window = time.Minute
	// safetyMargin pads the wakeup after the window frees a slot, so a
	// marginally early wakeup can't trip the upstream limit anyway.
	safetyMargin = time.Second
)

type Limiter struct {
	mu      sync.Mutex
	ceiling int
	base    time.Duration
	stamps  []time.Time

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a limiter admitting at most requestsPerMinute requests per
// sliding minute, spacing admissions by base +/- 20% jitter.
func New(requestsPerMinute int, base time.Duration) *Limiter {
	return &Limiter{
		ceiling: requestsPerMinute,
		base:    base,
		now:     time.Now,
		sleep:   Sleep,
	}
}

// Admit blocks until the caller may issue a request, or until ctx is done.
// On success the admission is already recorded in the window.
func (l *Limiter) Admit(ctx context.Context) error {
	l.mu.Lock()
	for {
		l.evict()
		if len(l.stamps) < l.ceiling {
			break
		}
		// the window is full: sleep until the oldest stamp ages out
		wait := l.stamps[0].Add(Window + safetyMargin).Sub(l.now())
		l.mu.Unlock()
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
		l.mu.Lock()
	}
	l.stamps = append(l.stamps, l.now())
	l.mu.Unlock()

	jittered := time.Duration(float64(l.base) * (0.8 + 0.4*rand.Float64()))
	return l.sleep(ctx, jittered)
}

// InWindow reports how many admissions are currently inside the window.
func (l *Limiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict()
	return len(l.stamps)
}

// evict drops stamps older than the window. Caller must hold l.mu.
func (l *Limiter) evict() {
	cutoff := l.now().Add(-Window)
	kept := l.stamps[:0]
	for _, ts := range l.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.stamps = kept
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
