package ratelimit

import (
	"sync"
	"time"
)

// Limiter is an in-memory sliding-window rate limiter keyed by an arbitrary
// string (user id, connection id, or a shared key for a global quota).
//
// A call is admitted iff fewer than maxCalls timestamps for the key fall
// inside the trailing window. Denied calls record nothing, so a rejected
// caller does not push the window further out.
type Limiter struct {
	maxCalls int
	window   time.Duration

	mu    sync.Mutex
	calls map[string][]time.Time

	done chan struct{}
	once sync.Once

	// Injectable clock for tests.
	now func() time.Time
}

const cleanupInterval = 60 * time.Second

func NewLimiter(maxCalls int, window time.Duration) *Limiter {
	l := &Limiter{
		maxCalls: maxCalls,
		window:   window,
		calls:    make(map[string][]time.Time),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a call for key is admitted right now, and records it
// if so. It never blocks beyond the internal lock.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.calls[key][:0]
	for _, ts := range l.calls[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.calls[key] = kept

	if len(kept) >= l.maxCalls {
		return false
	}
	l.calls[key] = append(kept, now)
	return true
}

// Window returns the configured window, used by callers as a retry-after
// hint when a request is denied.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Stop terminates the background cleanup goroutine. Safe to call twice.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.done:
			return
		}
	}
}

// cleanup drops keys with no activity inside 2x the window so the map does
// not grow without bound across agent churn.
func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-2 * l.window)
	for key, timestamps := range l.calls {
		kept := timestamps[:0]
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(l.calls, key)
		} else {
			l.calls[key] = kept
		}
	}
}
