package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// instrument replaces the limiter's sleep with one that advances the
// fake clock and records each requested duration.
func instrument(l *Limiter, clk *fakeClock) *[]time.Duration {
	var slept []time.Duration
	l.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		clk.Advance(d)
		return nil
	}
	return &slept
}

func TestWaitWithinBudgetDoesNotSleep(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(Config{Calls: 3, Window: time.Hour}, clk)
	slept := instrument(l, clk)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	assert.Empty(t, *slept)
}

func TestWaitOverBudgetBlocksUntilOldestExpires(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(Config{Calls: 3, Window: time.Hour}, clk)
	slept := instrument(l, clk)

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx))
	clk.Advance(10 * time.Minute)
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))

	// Budget exhausted; the next call must sleep until the first
	// admission (t=0) ages out of the one-hour window.
	require.NoError(t, l.Wait(ctx))
	require.Len(t, *slept, 1)
	assert.Equal(t, 50*time.Minute, (*slept)[0])
}

func TestWaitNeverRejects(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(Config{Calls: 1, Window: time.Hour}, clk)
	slept := instrument(l, clk)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	// Every call after the first had to wait out a full window.
	assert.Len(t, *slept, 4)
	for _, d := range *slept {
		assert.Equal(t, time.Hour, d)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(Config{Calls: 1, Window: time.Hour}, clk)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, l.Wait(ctx))

	cancel()
	err := l.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitRealSleepUnblocks(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(Config{Calls: 1, Window: 20 * time.Millisecond}, clk)
	// Keep the real sleep but drive the clock forward alongside it so
	// the second admission succeeds after one window.
	go func() {
		time.Sleep(5 * time.Millisecond)
		clk.Advance(25 * time.Millisecond)
	}()

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
}
