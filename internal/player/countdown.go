package player

import "context"

// ElapsedFunc runs when a countdown reaches zero.
type ElapsedFunc func(ctx context.Context) error

// Countdown is a one-second resolution timer advanced by explicit Tick
// calls. It is not safe for concurrent use; the owning Session serialises
// access. Start replaces whatever the countdown was doing, so each role
// has at most one live countdown.
type Countdown struct {
	remaining int
	active    bool
	running   bool
	onTick    func(remaining int)
	onElapsed ElapsedFunc
}

// Start arms the countdown with seconds remaining and starts it running.
// onTick may be nil.
func (c *Countdown) Start(seconds int, onTick func(remaining int), onElapsed ElapsedFunc) {
	*c = Countdown{
		remaining: max(seconds, 0),
		active:    true,
		running:   true,
		onTick:    onTick,
		onElapsed: onElapsed,
	}
}

// Cancel disarms the countdown without firing onElapsed.
func (c *Countdown) Cancel() {
	*c = Countdown{}
}

func (c *Countdown) Pause() {
	if c.active {
		c.running = false
	}
}

func (c *Countdown) Resume() {
	if c.active {
		c.running = true
	}
}

// Toggle flips between running and paused and reports whether it now runs.
func (c *Countdown) Toggle() bool {
	if !c.active {
		return false
	}
	c.running = !c.running
	return c.running
}

// Extend adds seconds to the remaining time.
func (c *Countdown) Extend(seconds int) {
	if c.active && seconds > 0 {
		c.remaining += seconds
	}
}

// Tick advances a running countdown by one second, firing onElapsed when
// it reaches zero.
func (c *Countdown) Tick(ctx context.Context) error {
	if !c.active || !c.running {
		return nil
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.onTick != nil {
		c.onTick(c.remaining)
	}
	if c.remaining > 0 {
		return nil
	}
	return c.elapse(ctx)
}

// ForceElapse sets the remaining time to zero and fires onElapsed, whether
// or not the countdown is paused.
func (c *Countdown) ForceElapse(ctx context.Context) error {
	if !c.active {
		return nil
	}
	c.remaining = 0
	return c.elapse(ctx)
}

// elapse disarms before calling back so the callback may restart c.
func (c *Countdown) elapse(ctx context.Context) error {
	fn := c.onElapsed
	*c = Countdown{}
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (c *Countdown) Active() bool   { return c.active }
func (c *Countdown) Running() bool  { return c.active && c.running }
func (c *Countdown) Remaining() int { return c.remaining }
