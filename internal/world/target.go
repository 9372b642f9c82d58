package world

import (
	"github.com/rangefire/rangefire/internal/core/ecs"
	"github.com/rangefire/rangefire/internal/core/event"
)

// Timer is an optional deadline. The zero Timer is inactive.
type Timer struct {
	active bool
	end    float32
}

func (t Timer) Active() bool { return t.active }

// End returns the deadline and whether the timer is active.
func (t Timer) End() (float32, bool) { return t.end, t.active }

// TargetState is the hit flash of a target. A target is Idle while the
// flash timer is inactive and Flashing while it runs.
type TargetState struct {
	CurrentTime float32
	Duration    float32
	Flash       Timer
	Radius      float32 // scoring radius in world units
}

// Hit starts, or restarts, the flash window at the current time.
func (s *TargetState) Hit() {
	s.Flash = Timer{active: true, end: s.CurrentTime + s.Duration}
}

// Flashing reports whether the hit flash is active.
func (s *TargetState) Flashing() bool { return s.Flash.active }

// SetTime moves the target clock to t without checking expiry.
func (s *TargetState) SetTime(t float32) { s.CurrentTime = t }

// Advance adds dt to the target clock and reports whether the flash
// expired during this step.
func (s *TargetState) Advance(dt float32) bool {
	s.CurrentTime += dt
	if s.Flash.active && s.CurrentTime >= s.Flash.end {
		s.Flash = Timer{}
		return true
	}
	return false
}

// The hit marker is shared by every target: it stays up while any of them
// is flashing.
func updateTarget(w *World, e *Entity, dt float32) {
	if e.Target.Advance(dt) {
		w.flashing--
		event.Publish(w.bus, event.HitHidden, w.flashing == 0)
	}
}

func targetMessage(w *World, e *Entity, _ ecs.EntityID, msg Message) bool {
	if msg.Kind != MessageHit {
		return false
	}
	if !e.Target.Flashing() {
		w.flashing++
	}
	e.Target.Hit()
	event.Publish(w.bus, event.HitHidden, false)
	return true
}
