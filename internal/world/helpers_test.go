package world

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/assets"
	"github.com/rangefire/rangefire/internal/audio"
	"github.com/rangefire/rangefire/internal/data"
	"github.com/rangefire/rangefire/internal/geom"
	"github.com/rangefire/rangefire/internal/render"
)

const frame = time.Second / 60

// wallQuad is a square of half-size s in the XY plane facing +Z.
func wallQuad(t testing.TB, s float32) *geom.Mesh {
	t.Helper()
	m, err := geom.NewMesh(
		[]float32{-s, -s, 0, s, -s, 0, s, s, 0, -s, s, 0},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// floorQuad is a square of half-size s in the XZ plane facing +Y.
func floorQuad(t testing.TB, s float32) *geom.Mesh {
	t.Helper()
	m, err := geom.NewMesh(
		[]float32{-s, 0, s, s, 0, s, s, 0, -s, -s, 0, -s},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func model(name string, mesh *geom.Mesh) *assets.Model {
	return &assets.Model{Name: name, Mesh: mesh, Visual: render.Descriptor{Model: name, Glyph: '#'}}
}

func testLibrary(t testing.TB, scene *data.SceneLayout) *assets.Library {
	t.Helper()
	return assets.NewLibrary(scene,
		model("ground", floorQuad(t, 50)),
		model("target", wallQuad(t, 1)),
		model("wall", wallQuad(t, 3)),
		model(assets.ModelBulletHole, wallQuad(t, 0.05)),
		model(assets.ModelBulletLine, wallQuad(t, 0.01)),
		model(assets.ModelWeapon, wallQuad(t, 0.1)),
	)
}

// eyeLevelScene puts one target straight ahead of the player's eyes.
func eyeLevelScene() *data.SceneLayout {
	s := data.DefaultScene()
	s.Targets[0].Position = [3]float32{0, 1.5, -20}
	return s
}

type testRig struct {
	w      *World
	scene  *render.Scene
	sounds *audio.Counter
	shots  *shotCollector
}

type shotCollector struct{ records []ShotRecord }

func (c *shotCollector) Record(r ShotRecord) { c.records = append(c.records, r) }

func newTestWorld(t testing.TB, layout *data.SceneLayout) *testRig {
	t.Helper()
	r := &testRig{
		scene:  render.NewScene(),
		sounds: audio.NewCounter(),
		shots:  &shotCollector{},
	}
	lib := testLibrary(t, layout)
	r.w = New(DefaultConfig(), Deps{
		Assets:   AssetFunc(func(context.Context) (*assets.Library, error) { return lib, nil }),
		Renderer: r.scene,
		Sounds:   r.sounds,
		Shots:    r.shots,
		Rand:     rand.New(rand.NewSource(7)),
		Now:      func() time.Time { return time.Unix(1700000000, 0) },
		Log:      zap.NewNop(),
	})
	if err := r.w.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	return r
}

func (r *testRig) tick(n int) {
	for i := 0; i < n; i++ {
		r.w.Tick(frame)
	}
}

func findKind(w *World, kind Kind) []*Entity {
	var out []*Entity
	w.registry.Each(func(e *Entity) {
		if e.Kind == kind {
			out = append(out, e)
		}
	})
	return out
}
