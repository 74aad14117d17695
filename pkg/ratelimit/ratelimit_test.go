package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(maxCalls int, window time.Duration) (*Limiter, *time.Time) {
	l := NewLimiter(maxCalls, window)
	current := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestAllowWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("agent-1"), "call %d should be admitted", i)
	}
	assert.False(t, l.Allow("agent-1"), "fourth call should be denied")
}

func TestDenialRecordsNothing(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)
	defer l.Stop()

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))

	// Hammering a denied key must not extend the window.
	for i := 0; i < 10; i++ {
		assert.False(t, l.Allow("k"))
	}

	*clock = clock.Add(61 * time.Second)
	assert.True(t, l.Allow("k"), "window should be fully free after it slides past")
}

func TestSlidingWindow(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)
	defer l.Stop()

	assert.True(t, l.Allow("k"))
	*clock = clock.Add(30 * time.Second)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	// First timestamp ages out, second is still inside the window.
	*clock = clock.Add(35 * time.Second)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	defer l.Stop()

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestCleanupDropsIdleKeys(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)
	defer l.Stop()

	l.Allow("stale")
	l.Allow("fresh")

	*clock = clock.Add(3 * time.Minute)
	l.Allow("fresh")
	l.cleanup()

	l.mu.Lock()
	_, staleKept := l.calls["stale"]
	_, freshKept := l.calls["fresh"]
	l.mu.Unlock()

	assert.False(t, staleKept, "key idle beyond 2x window should be purged")
	assert.True(t, freshKept)
}

func TestConcurrentAllowNeverExceedsLimit(t *testing.T) {
	l := NewLimiter(50, time.Minute)
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if l.Allow("shared") {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, admitted)
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewLimiter(1, time.Second)
	l.Stop()
	l.Stop()
}
