package world

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/mock/gomock"
	"pgregory.net/rapid"

	"github.com/rangefire/rangefire/internal/assets"
	"github.com/rangefire/rangefire/internal/audio"
	"github.com/rangefire/rangefire/internal/control"
	controlmocks "github.com/rangefire/rangefire/internal/control/mocks"
	"github.com/rangefire/rangefire/internal/core/ecs"
	"github.com/rangefire/rangefire/internal/core/event"
	"github.com/rangefire/rangefire/internal/data"
	"github.com/rangefire/rangefire/internal/geom"
	"github.com/rangefire/rangefire/internal/input"
	"github.com/rangefire/rangefire/internal/render"
	"github.com/rangefire/rangefire/internal/render/mocks"
)

func TestInitBuildsScene(t *testing.T) {
	r := newTestWorld(t, data.DefaultScene())

	if got := len(findKind(r.w, KindTarget)); got != 1 {
		t.Fatalf("targets = %d, want 1", got)
	}
	target := findKind(r.w, KindTarget)[0]
	if target.WorldPosition() != (mgl32.Vec3{0, 5, -20}) {
		t.Fatalf("target at %v", target.WorldPosition())
	}
	if target.Target.Radius != 1 || target.Target.Duration != 1 {
		t.Fatalf("target state = %+v", target.Target)
	}
	// Ground and target are obstacles; player, head and weapon are not.
	if r.w.Obstacles().Len() != 2 || r.w.Registry().Len() != 5 {
		t.Fatalf("obstacles %d, entities %d", r.w.Obstacles().Len(), r.w.Registry().Len())
	}
	if v, _ := event.Latest(r.w.Bus(), event.LoadingHidden); !v {
		t.Fatal("loading.hidden not published")
	}
	if v, _ := event.Latest(r.w.Bus(), event.IntroHidden); v {
		t.Fatal("intro hidden before engaging")
	}
	if ammo, _ := event.Latest(r.w.Bus(), event.Ammo); ammo != (event.AmmoState{Current: 12, Total: 12}) {
		t.Fatalf("ammo = %+v", ammo)
	}
	// The camera is synced by world matrix and never attached to the root.
	if r.scene.Attached(r.w.Camera()) {
		t.Fatal("camera attached to the scene root")
	}
	head := r.w.Player().Player.Head
	if got := head.WorldPosition(); got != (mgl32.Vec3{0, 1.5, 0}) {
		t.Fatalf("head at %v", got)
	}
}

func TestInitFailureWrapsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	w := New(DefaultConfig(), Deps{
		Assets: AssetFunc(func(context.Context) (*assets.Library, error) { return nil, cause }),
	})
	err := w.Init(context.Background())
	if !errors.Is(err, ErrInitialization) || !errors.Is(err, cause) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := event.Latest(w.Bus(), event.LoadingHidden); ok {
		t.Fatal("loading indicator hidden after failed init")
	}
	w.Tick(frame)
	if w.Frames() != 0 {
		t.Fatal("frame ran before init")
	}
	if err := w.Run(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Run err = %v", err)
	}
}

func TestInitFailureOnMissingModel(t *testing.T) {
	lib := assets.NewLibrary(nil, model("ground", wallQuad(t, 1)))
	w := New(DefaultConfig(), Deps{
		Assets: AssetFunc(func(context.Context) (*assets.Library, error) { return lib, nil }),
	})
	err := w.Init(context.Background())
	if !errors.Is(err, ErrInitialization) || !errors.Is(err, assets.ErrMissingModel) {
		t.Fatalf("err = %v", err)
	}
}

func TestInitFailureFromLoader(t *testing.T) {
	bus := event.NewBus()
	w := New(DefaultConfig(), Deps{
		Assets: assets.Loader{ModelsPath: filepath.Join(t.TempDir(), "models.yaml")},
		Bus:    bus,
	})
	err := w.Init(context.Background())
	if !errors.Is(err, ErrInitialization) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := event.Latest(bus, event.LoadingHidden); ok {
		t.Fatal("loading.hidden published after a failed init")
	}
}

func TestSendMessage(t *testing.T) {
	r := newTestWorld(t, data.DefaultScene())
	ground := findKind(r.w, KindGround)[0]
	target := findKind(r.w, KindTarget)[0]
	player := r.w.Player()
	hit := Message{Kind: MessageHit}

	if !r.w.SendMessage(player.ID, ground.ID, hit) {
		t.Fatal("ground did not consume")
	}
	if !r.w.SendMessage(player.ID, target.ID, hit) || !target.Target.Flashing() {
		t.Fatal("target did not consume")
	}
	if r.w.SendMessage(ground.ID, player.ID, hit) {
		t.Fatal("player consumed a hit")
	}
	if r.w.SendMessage(player.ID, ecs.NewEntityID(999, 1), hit) {
		t.Fatal("absent receiver consumed")
	}

	r.w.Remove(target.ID)
	if r.w.SendMessage(player.ID, target.ID, hit) {
		t.Fatal("removed receiver consumed")
	}
}

func TestRegistryAttachesAndDetaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	rend := mocks.NewMockRenderer(ctrl)
	idx := NewObstacleIndex()
	reg := NewRegistry(rend, idx)

	static := newEntity(KindGround, NewTransform(mgl32.Vec3{}))
	static.Geometry = floorQuad(t, 1)
	static.SetRender(7, render.SyncMatrix)
	camera := newEntity(KindHead, NewTransform(mgl32.Vec3{}))
	camera.SetRender(8, render.SyncWorldMatrix)

	rend.EXPECT().Attach(render.Handle(7))
	reg.Add(static)
	reg.Add(camera)
	if !idx.Contains(static.ID) || idx.Contains(camera.ID) {
		t.Fatal("obstacle membership wrong after add")
	}

	rend.EXPECT().Detach(render.Handle(7))
	reg.Remove(static.ID)
	reg.Remove(static.ID)
	reg.Remove(camera.ID)
	if idx.Len() != 0 || reg.Len() != 0 {
		t.Fatalf("obstacles %d, entities %d after removal", idx.Len(), reg.Len())
	}
}

func TestRemovalDuringUpdateIsDeferred(t *testing.T) {
	idx := NewObstacleIndex()
	reg := NewRegistry(render.NewScene(), idx)
	a := newEntity(KindGround, NewTransform(mgl32.Vec3{}))
	a.Geometry = floorQuad(t, 1)
	reg.Add(a)

	var spawned *Entity
	visits := 0
	reg.Update(func(e *Entity) {
		visits++
		reg.Remove(e.ID)
		spawned = newEntity(KindGround, NewTransform(mgl32.Vec3{0, 1, 0}))
		spawned.Geometry = floorQuad(t, 1)
		reg.Add(spawned)
	})
	if visits != 1 {
		t.Fatalf("visits = %d", visits)
	}
	if !idx.Contains(a.ID) || idx.Contains(spawned.ID) {
		t.Fatal("membership changed inside the pass")
	}
	if !a.Removed() {
		t.Fatal("removal request not visible on the entity")
	}

	reg.Flush()
	if idx.Contains(a.ID) || !idx.Contains(spawned.ID) || reg.Len() != 1 {
		t.Fatal("deferred changes not applied at flush")
	}
}

// After every frame boundary the obstacle index holds exactly the active
// entities that own geometry.
func TestObstacleMembershipProperty(t *testing.T) {
	mesh := floorQuad(t, 1)
	rapid.Check(t, func(t *rapid.T) {
		idx := NewObstacleIndex()
		reg := NewRegistry(render.NewScene(), idx)
		var known []ecs.EntityID

		step := func() {
			if len(known) == 0 || rapid.IntRange(0, 2).Draw(t, "op") > 0 {
				e := newEntity(KindGround, NewTransform(mgl32.Vec3{}))
				if rapid.Bool().Draw(t, "geometry") {
					e.Geometry = mesh
				}
				known = append(known, reg.Add(e))
				return
			}
			reg.Remove(known[rapid.IntRange(0, len(known)-1).Draw(t, "victim")])
		}

		frames := rapid.IntRange(1, 15).Draw(t, "frames")
		for f := 0; f < frames; f++ {
			ops := rapid.IntRange(0, 6).Draw(t, "ops")
			if rapid.Bool().Draw(t, "inPass") && reg.Len() > 0 {
				done := false
				reg.Each(func(*Entity) {
					if done {
						return
					}
					done = true
					for i := 0; i < ops; i++ {
						step()
					}
				})
			} else {
				for i := 0; i < ops; i++ {
					step()
				}
			}
			reg.Flush()

			want := 0
			reg.Each(func(e *Entity) {
				if e.Geometry != nil {
					want++
					if !idx.Contains(e.ID) {
						t.Fatalf("obstacle %s missing from index", e.ID)
					}
				}
			})
			if idx.Len() != want {
				t.Fatalf("index has %d entries, registry %d obstacles", idx.Len(), want)
			}
		}
	})
}

func TestFireHitsTarget(t *testing.T) {
	r := newTestWorld(t, eyeLevelScene())
	q := r.w.Input()
	q.Push(input.Event{Kind: input.Engage})
	q.Push(input.Event{Kind: input.Fire})

	r.tick(1)
	if len(findKind(r.w, KindBullet)) != 1 {
		t.Fatal("no bullet in flight after firing")
	}
	r.tick(4)

	if n := len(findKind(r.w, KindBullet)); n != 0 {
		t.Fatalf("%d bullets still registered", n)
	}
	target := findKind(r.w, KindTarget)[0]
	if !target.Target.Flashing() {
		t.Fatal("target not flashing after the hit")
	}
	if v, _ := event.Latest(r.w.Bus(), event.HitHidden); v {
		t.Fatal("hit.hidden still true")
	}
	if got := r.w.Score().State(); got != (event.ScoreState{Shots: 1, Hits: 1, Points: 1}) {
		t.Fatalf("score = %+v", got)
	}
	if ammo, _ := event.Latest(r.w.Bus(), event.Ammo); ammo.Current != 11 {
		t.Fatalf("ammo = %+v", ammo)
	}

	decals := r.w.Decals().Decals()
	if len(decals) != 1 {
		t.Fatalf("decals = %d, want 1", len(decals))
	}
	if p := decals[0].Position; p.Z() > -19.99 || p.Z() < -20.01 || p.Y() < 0.5 || p.Y() > 2.5 {
		t.Fatalf("hole at %v, not on the target", p)
	}
	impacts := 0
	for i := 1; i <= audio.ImpactCues; i++ {
		impacts += r.sounds.Plays[audio.ImpactCue(i)]
	}
	if impacts != 1 || r.sounds.Plays[audio.CueShot] != 1 {
		t.Fatalf("plays = %v", r.sounds.Plays)
	}

	if len(r.shots.records) != 1 {
		t.Fatalf("shot records = %d", len(r.shots.records))
	}
	rec := r.shots.records[0]
	if !rec.Hit || rec.Kind != "target" || rec.Seq != 1 || rec.Points != 1 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestBulletExpiresWithoutHit(t *testing.T) {
	r := newTestWorld(t, data.DefaultScene())
	ray := geom.NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 1, 0})
	r.w.AddBullet(r.w.Player().ID, ray)

	r.tick(61)
	if n := len(findKind(r.w, KindBullet)); n != 0 {
		t.Fatalf("%d bullets alive after their lifetime", n)
	}
	if r.w.Decals().Len() != 0 {
		t.Fatal("decal from a miss")
	}
	if len(r.shots.records) != 1 || r.shots.records[0].Hit {
		t.Fatalf("records = %+v", r.shots.records)
	}
}

func TestTwentyShotsFillPool(t *testing.T) {
	r := newTestWorld(t, data.DefaultScene())
	var points []mgl32.Vec3
	for i := 0; i < 25; i++ {
		p := mgl32.Vec3{float32(i%5) - 2, 0, float32(i/5) - 2}
		points = append(points, p)
		r.w.AddBulletHole(p, mgl32.Vec3{0, 1, 0}, nil)
	}
	decals := r.w.Decals().Decals()
	if len(decals) != 20 {
		t.Fatalf("pool holds %d, want 20", len(decals))
	}
	for i, d := range decals {
		if d.Position != points[5+i] {
			t.Fatalf("decal %d at %v, want %v", i, d.Position, points[5+i])
		}
	}
	if n := r.scene.Count(assets.ModelBulletHole); n != 20 {
		t.Fatalf("scene holds %d holes", n)
	}
}

func TestMoveAndLook(t *testing.T) {
	r := newTestWorld(t, data.DefaultScene())
	q := r.w.Input()
	q.Push(input.Event{Kind: input.Engage})
	q.Push(input.Event{Kind: input.Move, Z: 1})
	r.tick(60)

	pos := r.w.Player().Transform.Position
	if pos.Z() > -3.9 || pos.Z() < -4.1 || pos.Y() != 0 {
		t.Fatalf("after 1s forward at 4 m/s player at %v", pos)
	}

	// Turning a quarter to the left makes forward walk along -X.
	p := pawn{w: r.w, player: r.w.Player()}
	p.Look(float32(mgl32.DegToRad(90)), 10)
	if pitch := r.w.Player().Player.Pitch; pitch > maxPitch+1e-6 {
		t.Fatalf("pitch %v exceeds clamp", pitch)
	}
	before := r.w.Player().Transform.Position
	p.Move(mgl32.Vec2{0, 1}, 1)
	delta := r.w.Player().Transform.Position.Sub(before)
	if !delta.ApproxEqualThreshold(mgl32.Vec3{-4, 0, 0}, 1e-3) {
		t.Fatalf("moved %v, want -X", delta)
	}
}

func TestCaptureDeniedKeepsOverlay(t *testing.T) {
	ctrl := gomock.NewController(t)
	capturer := controlmocks.NewMockCapturer(ctrl)
	capturer.EXPECT().Capture().Return(control.ErrCaptureDenied)
	lib := testLibrary(t, data.DefaultScene())
	w := New(DefaultConfig(), Deps{
		Assets:   AssetFunc(func(context.Context) (*assets.Library, error) { return lib, nil }),
		Capturer: capturer,
	})
	if err := w.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Input().Push(input.Event{Kind: input.Engage})
	w.Input().Push(input.Event{Kind: input.Fire})
	w.Tick(frame)

	if w.Controls().State() != control.Unengaged {
		t.Fatal("engaged despite denied capture")
	}
	intro, _ := event.Latest(w.Bus(), event.IntroHidden)
	reticle, _ := event.Latest(w.Bus(), event.ReticleHidden)
	if intro || !reticle {
		t.Fatalf("intro.hidden=%v reticle.hidden=%v", intro, reticle)
	}
	if len(findKind(w, KindBullet)) != 0 {
		t.Fatal("fired while unengaged")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newTestWorld(t, data.DefaultScene())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if r.scene.Frames() == 0 {
		t.Fatal("no frames rendered")
	}
}
