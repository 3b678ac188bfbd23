package service

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"giveaway-bot/internal/utils/duration"
)

// CountdownHooks are invoked from the countdown goroutine.
type CountdownHooks struct {
	// OnDisplay fires only when the formatted remaining time changes.
	OnDisplay func(ctx context.Context, remaining int64, display string)
	// OnExpire fires exactly once, unless the countdown was cancelled first.
	OnExpire func(ctx context.Context)
}

// Countdown ticks a giveaway down to zero. Remaining time is derived from a
// fixed deadline so a slow hook never stretches the total duration.
type Countdown struct {
	total int64
	unit  time.Duration
	hooks CountdownHooks
	now   func() time.Time

	remaining atomic.Int64

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewCountdown creates a countdown of total units. The unit is one second in
// production; tests shrink it.
func NewCountdown(total int64, unit time.Duration, hooks CountdownHooks) *Countdown {
	c := &Countdown{
		total: total,
		unit:  unit,
		hooks: hooks,
		now:   time.Now,
		done:  make(chan struct{}),
	}
	c.remaining.Store(total)
	return c
}

// Start launches the countdown goroutine. Subsequent calls are no-ops.
func (c *Countdown) Start(parent context.Context) {
	c.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		c.cancel = cancel
		go c.run(ctx)
	})
}

// Cancel stops the countdown without waiting. Safe to call from a hook.
func (c *Countdown) Cancel() {
	c.startOnce.Do(func() {
		// never started
		c.cancel = func() {}
		close(c.done)
	})
	c.cancel()
}

// Stop cancels the countdown and waits for its goroutine to exit. Once Stop
// returns no hook will fire. Must not be called from inside a hook.
func (c *Countdown) Stop() {
	c.Cancel()
	<-c.done
}

// Done is closed when the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Remaining returns the last observed remaining units.
func (c *Countdown) Remaining() int64 {
	return c.remaining.Load()
}

func (c *Countdown) run(ctx context.Context) {
	defer close(c.done)

	deadline := c.now().Add(c.span())
	last := duration.Format(c.total)

	ticker := time.NewTicker(c.unit)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		remaining := c.remainingUntil(deadline)
		c.remaining.Store(remaining)
		if remaining <= 0 {
			break
		}

		display := duration.Format(remaining)
		if display == last {
			continue
		}
		last = display
		if ctx.Err() != nil {
			return
		}
		if c.hooks.OnDisplay != nil {
			c.hooks.OnDisplay(ctx, remaining, display)
		}
	}

	if ctx.Err() != nil {
		return
	}
	if c.hooks.OnExpire != nil {
		c.hooks.OnExpire(ctx)
	}
}

// span is total*unit, saturated at the largest representable duration.
func (c *Countdown) span() time.Duration {
	if c.total > math.MaxInt64/int64(c.unit) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(c.total) * c.unit
}

func (c *Countdown) remainingUntil(deadline time.Time) int64 {
	left := deadline.Sub(c.now())
	if left <= 0 {
		return 0
	}
	return int64((left + c.unit - 1) / c.unit)
}
