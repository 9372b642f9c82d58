package control

// Magazine tracks ammunition, the shot cooldown and the reload delay.
// Times are seconds on the magazine's own clock, advanced by Advance.
type Magazine struct {
	current   int
	total     int
	now       float32
	reloading bool
	reloadEnd float32
	nextShot  float32
}

func NewMagazine(capacity int) *Magazine {
	if capacity < 0 {
		capacity = 0
	}
	return &Magazine{current: capacity, total: capacity}
}

// FireResult is the outcome of a trigger pull.
type FireResult uint8

const (
	Fired   FireResult = iota // round spent
	Empty                     // no rounds left
	Blocked                   // reloading or still in shot cooldown
)

func (m *Magazine) Current() int { return m.current }

func (m *Magazine) Total() int { return m.total }

func (m *Magazine) Reloading() bool { return m.reloading }

// Fire consumes one round unless the magazine is reloading, cooling down
// or empty. interval is the minimum time until the next shot.
func (m *Magazine) Fire(interval float32) FireResult {
	if m.reloading || m.now < m.nextShot {
		return Blocked
	}
	if m.current == 0 {
		return Empty
	}
	m.current--
	m.nextShot = m.now + interval
	return Fired
}

// StartReload begins a reload of the given duration. It reports false when
// the magazine is full or already reloading.
func (m *Magazine) StartReload(duration float32) bool {
	if m.reloading || m.current >= m.total {
		return false
	}
	m.reloading = true
	m.reloadEnd = m.now + duration
	return true
}

// Advance moves the magazine clock forward by dt and reports whether a
// reload completed during this step.
func (m *Magazine) Advance(dt float32) bool {
	if dt > 0 {
		m.now += dt
	}
	if m.reloading && m.now >= m.reloadEnd {
		m.reloading = false
		m.current = m.total
		return true
	}
	return false
}
