package control

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/audio"
	"github.com/rangefire/rangefire/internal/core/event"
	"github.com/rangefire/rangefire/internal/input"
)

// Config holds the weapon and look tuning used by Controls.
type Config struct {
	Capacity     int
	ReloadTime   float32 // seconds
	ShotInterval float32 // seconds between shots
	LookSpeed    float32 // radians per aim unit
}

// Controls is the first person control state machine. It is driven from the
// frame goroutine: Handle for each queued input event, then Update once.
type Controls struct {
	cfg      Config
	state    State
	mag      *Magazine
	move     mgl32.Vec2
	capturer Capturer
	pawn     Pawn
	bus      *event.Bus
	sounds   audio.Bank
	log      *zap.Logger
}

func New(cfg Config, capturer Capturer, pawn Pawn, bus *event.Bus, sounds audio.Bank, log *zap.Logger) *Controls {
	if sounds == nil {
		sounds = audio.Silent{}
	}
	return &Controls{
		cfg:      cfg,
		mag:      NewMagazine(cfg.Capacity),
		capturer: capturer,
		pawn:     pawn,
		bus:      bus,
		sounds:   sounds,
		log:      log,
	}
}

// Start publishes the initial presentation state.
func (c *Controls) Start() {
	c.publishCapture()
	c.publishAmmo()
}

func (c *Controls) State() State { return c.state }

func (c *Controls) Magazine() *Magazine { return c.mag }

// Handle applies one input event.
func (c *Controls) Handle(ev input.Event) {
	switch ev.Kind {
	case input.Engage:
		c.engage()
	case input.Release:
		c.release()
	}
	if c.state != Engaged {
		return
	}
	switch ev.Kind {
	case input.Move:
		c.move = mgl32.Vec2{clampUnit(ev.X), clampUnit(ev.Z)}
	case input.Aim:
		c.pawn.Look(-ev.DX*c.cfg.LookSpeed, -ev.DY*c.cfg.LookSpeed)
	case input.Fire:
		c.fire()
	case input.Reload:
		c.reload()
	}
}

// Update advances the reload timer and applies held movement.
func (c *Controls) Update(dt float32) {
	if c.mag.Advance(dt) {
		c.log.Debug("reload complete", zap.Int("rounds", c.mag.Current()))
		c.publishAmmo()
	}
	if c.state == Engaged && c.move != (mgl32.Vec2{}) {
		c.pawn.Move(c.move, dt)
	}
}

func (c *Controls) engage() {
	if c.state == Engaged {
		return
	}
	if err := c.capturer.Capture(); err != nil {
		if !errors.Is(err, ErrCaptureDenied) {
			c.log.Warn("control capture failed", zap.Error(err))
		} else {
			c.log.Debug("control capture denied")
		}
		c.publishCapture()
		return
	}
	c.state = Engaged
	c.publishCapture()
}

func (c *Controls) release() {
	if c.state != Engaged {
		return
	}
	c.state = Unengaged
	c.move = mgl32.Vec2{}
	c.capturer.Release()
	c.publishCapture()
}

func (c *Controls) fire() {
	switch c.mag.Fire(c.cfg.ShotInterval) {
	case Fired:
		c.pawn.Fire()
		c.sounds.Cue(audio.CueShot).Play()
		c.publishAmmo()
	case Empty:
		c.sounds.Cue(audio.CueEmpty).Play()
	}
}

func (c *Controls) reload() {
	if !c.mag.StartReload(c.cfg.ReloadTime) {
		return
	}
	c.sounds.Cue(audio.CueReload).Play()
	// A zero reload time completes on the next Update.
}

func (c *Controls) publishCapture() {
	engaged := c.state == Engaged
	event.Publish(c.bus, event.IntroHidden, engaged)
	event.Publish(c.bus, event.ReticleHidden, !engaged)
}

func (c *Controls) publishAmmo() {
	event.Publish(c.bus, event.Ammo, event.AmmoState{Current: c.mag.Current(), Total: c.mag.Total()})
}

func clampUnit(v float32) float32 {
	return mgl32.Clamp(v, -1, 1)
}
