package clock

import (
	"testing"
	"time"
)

type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time { return f.t }

func TestClockDeltas(t *testing.T) {
	ft := &fakeTime{t: time.Unix(100, 0)}
	c := NewWithSource(ft.now, 100*time.Millisecond)

	if d := c.Update(); d != 0 {
		t.Fatalf("first delta = %v, want 0", d)
	}

	ft.t = ft.t.Add(16 * time.Millisecond)
	if d := c.Update(); d != 16*time.Millisecond {
		t.Fatalf("delta = %v, want 16ms", d)
	}

	// Stall: clamped.
	ft.t = ft.t.Add(2 * time.Second)
	if d := c.Update(); d != 100*time.Millisecond {
		t.Fatalf("clamped delta = %v, want 100ms", d)
	}

	// Time going backwards never yields a negative delta.
	ft.t = ft.t.Add(-time.Second)
	if d := c.Update(); d != 0 {
		t.Fatalf("delta after clock skew = %v, want 0", d)
	}

	if c.Elapsed() != 116*time.Millisecond {
		t.Fatalf("Elapsed() = %v, want 116ms", c.Elapsed())
	}
}
