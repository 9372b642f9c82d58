package world

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/rangefire/rangefire/internal/core/system"
)

func (w *World) registerSystems() {
	w.runner.Register(&inputSystem{w: w})
	w.runner.Register(&entitySystem{w: w})
	w.runner.Register(&renderSystem{w: w})
	w.runner.Register(&publishSystem{w: w})
	w.runner.Register(&persistSystem{w: w})
	w.runner.Register(&cleanupSystem{w: w})
}

func seconds(dt time.Duration) float32 { return float32(dt.Seconds()) }

// inputSystem drains the input queue into the controls, then advances
// them. Phase 0 (Input).
type inputSystem struct{ w *World }

func (s *inputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *inputSystem) Update(dt time.Duration) {
	w := s.w
	w.inbox = w.input.Drain(w.inbox[:0], w.cfg.MaxInputsPerFrame)
	for _, ev := range w.inbox {
		w.controls.Handle(ev)
	}
	w.controls.Update(seconds(dt))
}

// entitySystem runs each entity's update hook once. Phase 1 (Update).
type entitySystem struct{ w *World }

func (s *entitySystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *entitySystem) Update(dt time.Duration) {
	w := s.w
	sec := seconds(dt)
	w.registry.Update(func(e *Entity) {
		if fn := w.behaviors[e.Kind].update; fn != nil {
			fn(w, e, sec)
		}
	})
}

// renderSystem refreshes world matrices, copies them into render handles
// and draws the frame. Phase 2 (Output).
type renderSystem struct{ w *World }

func (s *renderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *renderSystem) Update(_ time.Duration) {
	w := s.w
	w.registry.Update(func(e *Entity) {
		e.updateMatrix()
		if e.handle != 0 {
			w.renderer.SyncTransform(e.handle, e.world, e.sync)
		}
	})
	w.renderer.RenderFrame(w.camera)
}

// publishSystem delivers this frame's bus topics. Phase 3 (Publish).
type publishSystem struct{ w *World }

func (s *publishSystem) Phase() coresys.Phase { return coresys.PhasePublish }

func (s *publishSystem) Update(_ time.Duration) {
	s.w.bus.Flush()
}

// persistSystem hands resolved shots to the shot sink. Phase 4 (Persist).
type persistSystem struct{ w *World }

func (s *persistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *persistSystem) Update(_ time.Duration) {
	w := s.w
	if w.sink != nil {
		for _, rec := range w.shots {
			w.sink.Record(rec)
		}
	}
	clear(w.shots)
	w.shots = w.shots[:0]
}

// cleanupSystem applies structural changes deferred during the frame.
// Phase 5 (Cleanup).
type cleanupSystem struct{ w *World }

func (s *cleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *cleanupSystem) Update(_ time.Duration) {
	if n := s.w.registry.Flush(); n > 0 {
		s.w.log.Debug("registry flushed", zap.Int("changes", n))
	}
}
