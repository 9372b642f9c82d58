// Package world is the shooting range simulation: the entity registry, the
// obstacle index, the decal pool, entity behaviors and the frame loop that
// ties them to controls, rendering and the event bus.
package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/assets"
	"github.com/rangefire/rangefire/internal/audio"
	"github.com/rangefire/rangefire/internal/control"
	"github.com/rangefire/rangefire/internal/core/clock"
	"github.com/rangefire/rangefire/internal/core/ecs"
	"github.com/rangefire/rangefire/internal/core/event"
	coresys "github.com/rangefire/rangefire/internal/core/system"
	"github.com/rangefire/rangefire/internal/data"
	"github.com/rangefire/rangefire/internal/geom"
	"github.com/rangefire/rangefire/internal/input"
	"github.com/rangefire/rangefire/internal/render"
)

var (
	// ErrInitialization wraps any failure to prepare assets. The frame loop
	// never starts after it.
	ErrInitialization = errors.New("initialization failed")
	ErrNotInitialized = errors.New("world not initialized")
)

// Config tunes the simulation.
type Config struct {
	FrameInterval     time.Duration
	MaxDelta          time.Duration
	MaxInputsPerFrame int
	MaxBulletHoles    int
	TargetDuration    float32 // seconds a hit flash lasts
	BulletSpeed       float32
	BulletLifetime    float32
	MoveSpeed         float32
	HeadHeight        float32
	WeaponOffset      mgl32.Vec3 // muzzle position relative to the head
	Controls          control.Config
}

func DefaultConfig() Config {
	return Config{
		FrameInterval:     time.Second / 60,
		MaxDelta:          100 * time.Millisecond,
		MaxInputsPerFrame: 32,
		MaxBulletHoles:    20,
		TargetDuration:    1,
		BulletSpeed:       400,
		BulletLifetime:    1,
		MoveSpeed:         4,
		HeadHeight:        1.5,
		WeaponOffset:      mgl32.Vec3{0.3, -0.3, -1},
		Controls: control.Config{
			Capacity:     12,
			ReloadTime:   1.5,
			ShotInterval: 0.2,
			LookSpeed:    2,
		},
	}
}

// AssetSource prepares the model library.
type AssetSource interface {
	Load(ctx context.Context) (*assets.Library, error)
}

// AssetFunc adapts a function to AssetSource.
type AssetFunc func(ctx context.Context) (*assets.Library, error)

func (f AssetFunc) Load(ctx context.Context) (*assets.Library, error) { return f(ctx) }

// Deps are the collaborators of a World. Only Assets is required.
type Deps struct {
	Assets   AssetSource
	Renderer render.Renderer
	Capturer control.Capturer
	Sounds   audio.Bank
	Bus      *event.Bus
	Input    *input.Queue
	Scorer   Scorer
	Shots    ShotSink
	Rand     *rand.Rand
	Clock    *clock.Clock
	Now      func() time.Time
	Log      *zap.Logger
}

// World owns the registry, obstacle index and decal pool. All of its
// methods run on the frame goroutine.
type World struct {
	cfg       Config
	log       *zap.Logger
	bus       *event.Bus
	renderer  render.Renderer
	capturer  control.Capturer
	sounds    audio.Bank
	input     *input.Queue
	assets    AssetSource
	clock     *clock.Clock
	rng       *rand.Rand
	now       func() time.Time
	behaviors [kindCount]behavior

	registry  *Registry
	obstacles *ObstacleIndex
	decals    *DecalPool
	controls  *control.Controls
	score     *ScoreKeeper
	runner    *coresys.Runner

	sink    ShotSink
	shots   []ShotRecord
	shotSeq int
	inbox   []input.Event

	flashing int // targets currently flashing

	lib          *assets.Library
	player       *Entity
	camera       render.Handle
	bulletVisual *render.Descriptor
	ready        bool
}

func New(cfg Config, deps Deps) *World {
	w := &World{
		cfg:       cfg,
		log:       deps.Log,
		bus:       deps.Bus,
		renderer:  deps.Renderer,
		capturer:  deps.Capturer,
		sounds:    deps.Sounds,
		input:     deps.Input,
		assets:    deps.Assets,
		clock:     deps.Clock,
		rng:       deps.Rand,
		now:       deps.Now,
		sink:      deps.Shots,
		behaviors: behaviors(),
		runner:    coresys.NewRunner(),
		inbox:     make([]input.Event, 0, max(cfg.MaxInputsPerFrame, 1)),
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	if w.bus == nil {
		w.bus = event.NewBus()
	}
	if w.renderer == nil {
		w.renderer = render.NewScene()
	}
	if w.capturer == nil {
		w.capturer = control.NopCapturer{}
	}
	if w.sounds == nil {
		w.sounds = audio.Silent{}
	}
	if w.input == nil {
		w.input = input.NewQueue(64)
	}
	if w.clock == nil {
		w.clock = clock.New(cfg.MaxDelta)
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if w.now == nil {
		w.now = time.Now
	}
	w.obstacles = NewObstacleIndex()
	w.registry = NewRegistry(w.renderer, w.obstacles)
	w.score = NewScoreKeeper(w.bus, deps.Scorer)
	return w
}

// Init prepares assets and builds the scene. It is single-attempt: on
// failure it returns an error wrapping ErrInitialization and the loading
// indicator stays up.
func (w *World) Init(ctx context.Context) error {
	if w.assets == nil {
		return fmt.Errorf("%w: no asset source", ErrInitialization)
	}
	lib, err := w.assets.Load(ctx)
	if err == nil {
		err = lib.Validate()
	}
	if err != nil {
		w.log.Error("asset preparation failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	w.lib = lib

	hole, _ := lib.Model(assets.ModelBulletHole)
	w.decals = NewDecalPool(w.cfg.MaxBulletHoles, w.renderer, hole.Visual, w.rng)
	line, _ := lib.Model(assets.ModelBulletLine)
	w.bulletVisual = &line.Visual

	scene := lib.Scene()
	for _, p := range scene.Ground {
		w.addStatic(KindGround, p)
	}
	for _, p := range scene.Targets {
		w.addStatic(KindTarget, p)
	}
	w.initPlayer(scene)
	w.initControls()
	w.registerSystems()

	event.Publish(w.bus, event.HitHidden, true)
	event.Publish(w.bus, event.LoadingHidden, true)
	w.score.publish()
	w.ready = true

	w.log.Info("range ready",
		zap.Int("entities", w.registry.Len()),
		zap.Int("obstacles", w.obstacles.Len()),
	)
	return nil
}

func (w *World) addStatic(kind Kind, p data.Placement) *Entity {
	m, _ := w.lib.Model(p.Model)
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	t := NewTransform(mgl32.Vec3(p.Position))
	t.Rotation = eulerDegrees(p.Rotation)
	t.Scale = mgl32.Vec3{scale, scale, scale}

	e := newEntity(kind, t)
	e.Geometry = m.Mesh
	e.SetRender(w.renderer.CreateHandle(m.Visual), render.SyncMatrix)
	if kind == KindTarget {
		b := m.Mesh.Bounds()
		half := b.Max.Sub(b.Min).Mul(0.5)
		e.Target = &TargetState{
			Duration: w.cfg.TargetDuration,
			Radius:   max(half.X(), half.Y()) * scale,
		}
	}
	w.registry.Add(e)
	return e
}

func (w *World) initPlayer(scene *data.SceneLayout) {
	player := newEntity(KindPlayer, NewTransform(mgl32.Vec3(scene.Player.Position)))

	head := newEntity(KindHead, NewTransform(mgl32.Vec3{0, w.cfg.HeadHeight, 0}))
	head.Parent = player
	w.camera = w.renderer.CreateHandle(render.Descriptor{Model: "camera"})
	head.SetRender(w.camera, render.SyncWorldMatrix)

	weapon := newEntity(KindWeapon, NewTransform(w.cfg.WeaponOffset))
	weapon.Parent = head
	gun, _ := w.lib.Model(assets.ModelWeapon)
	weapon.SetRender(w.renderer.CreateHandle(gun.Visual), render.SyncMatrix)

	player.Player = &PlayerState{
		Yaw:    mgl32.DegToRad(scene.Player.Yaw),
		Speed:  w.cfg.MoveSpeed,
		Head:   head,
		Weapon: weapon,
	}
	pawn{w: w, player: player}.Look(0, 0)

	w.registry.Add(player)
	w.registry.Add(head)
	w.registry.Add(weapon)
	w.player = player
}

func (w *World) initControls() {
	w.controls = control.New(w.cfg.Controls, w.capturer, pawn{w: w, player: w.player}, w.bus, w.sounds, w.log.Named("control"))
	w.controls.Start()
}

// Tick runs one frame. It does nothing before Init succeeded.
func (w *World) Tick(dt time.Duration) {
	if !w.ready {
		return
	}
	w.runner.Tick(dt)
}

// Run drives Tick from the clock at the configured frame interval until ctx
// is cancelled. A running frame always completes.
func (w *World) Run(ctx context.Context) error {
	if !w.ready {
		return ErrNotInitialized
	}
	interval := w.cfg.FrameInterval
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.clock.Update()
	w.log.Info("frame loop started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("frame loop stopped", zap.Uint64("frames", w.runner.Frames()))
			return nil
		case <-ticker.C:
			w.Tick(w.clock.Update())
		}
	}
}

// Add registers e and returns its ID.
func (w *World) Add(e *Entity) ecs.EntityID { return w.registry.Add(e) }

// Remove unregisters id. Inside a frame the removal lands at cleanup.
func (w *World) Remove(id ecs.EntityID) { w.registry.Remove(id) }

// AddBullet spawns a projectile travelling along ray.
func (w *World) AddBullet(owner ecs.EntityID, ray geom.Ray) *Entity {
	t := NewTransform(ray.Origin)
	t.Rotation = bulletRotation(ray.Direction)
	e := newEntity(KindBullet, t)

	w.shotSeq++
	e.Bullet = &BulletState{
		Owner:    owner,
		Ray:      ray,
		Speed:    w.cfg.BulletSpeed,
		Lifetime: w.cfg.BulletLifetime,
		Seq:      w.shotSeq,
		FiredAt:  w.now(),
	}
	if w.bulletVisual != nil {
		e.SetRender(w.renderer.CreateHandle(*w.bulletVisual), render.SyncMatrix)
	}
	w.registry.Add(e)
	w.score.Shot()
	return e
}

// AddBulletHole puts a decal on a struck surface.
func (w *World) AddBulletHole(position, normal mgl32.Vec3, cue audio.Cue) {
	if w.decals == nil {
		return
	}
	w.decals.Add(position, normal, cue)
}

// IntersectRay returns the nearest obstacle hit by ray.
func (w *World) IntersectRay(ray geom.Ray) (Hit, bool) {
	return w.obstacles.Intersect(ray)
}

func (w *World) Registry() *Registry         { return w.registry }
func (w *World) Obstacles() *ObstacleIndex   { return w.obstacles }
func (w *World) Decals() *DecalPool          { return w.decals }
func (w *World) Controls() *control.Controls { return w.controls }
func (w *World) Score() *ScoreKeeper         { return w.score }
func (w *World) Bus() *event.Bus             { return w.bus }
func (w *World) Input() *input.Queue         { return w.input }
func (w *World) Player() *Entity             { return w.player }
func (w *World) Camera() render.Handle       { return w.camera }
func (w *World) Frames() uint64              { return w.runner.Frames() }
func (w *World) Library() *assets.Library    { return w.lib }
func (w *World) Renderer() render.Renderer   { return w.renderer }
func (w *World) Ready() bool                 { return w.ready }
func (w *World) Config() Config              { return w.cfg }

func eulerDegrees(deg [3]float32) mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(deg[0]),
		mgl32.DegToRad(deg[1]),
		mgl32.DegToRad(deg[2]),
		mgl32.XYZ,
	)
}
