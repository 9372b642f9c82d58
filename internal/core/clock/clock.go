package clock

import "time"

// Clock turns wall time into per-frame deltas. Deltas never go negative and
// are clamped to maxDelta so a stalled process does not tunnel projectiles
// through obstacles on resume.
type Clock struct {
	now      func() time.Time
	last     time.Time
	started  bool
	maxDelta time.Duration
	elapsed  time.Duration
}

func New(maxDelta time.Duration) *Clock {
	return NewWithSource(time.Now, maxDelta)
}

// NewWithSource uses now as the time source. Tests pass a fake.
func NewWithSource(now func() time.Time, maxDelta time.Duration) *Clock {
	return &Clock{now: now, maxDelta: maxDelta}
}

// Update reads the time source and returns the delta since the previous
// call. The first call returns zero.
func (c *Clock) Update() time.Duration {
	t := c.now()
	if !c.started {
		c.started = true
		c.last = t
		return 0
	}
	delta := t.Sub(c.last)
	if delta < 0 {
		delta = 0
	} else {
		c.last = t
	}
	if c.maxDelta > 0 && delta > c.maxDelta {
		delta = c.maxDelta
	}
	c.elapsed += delta
	return delta
}

// Elapsed is the sum of all deltas returned so far.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}
