package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rangefire/rangefire/internal/data"
	"github.com/rangefire/rangefire/internal/geom"
)

func near(a, b mgl32.Vec3) bool { return a.ApproxEqualThreshold(b, 1e-3) }

func TestIntersectWallBlocksTarget(t *testing.T) {
	layout := data.DefaultScene()
	layout.Ground = append(layout.Ground, data.Placement{Model: "wall", Position: [3]float32{0, 5, -10}})
	r := newTestWorld(t, layout)

	hit, ok := r.w.IntersectRay(geom.NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 0, -1}))
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Entity.Kind != KindGround {
		t.Fatalf("struck %v, want the wall", hit.Entity.Kind)
	}
	if !near(hit.Point, mgl32.Vec3{0, 5, -10}) {
		t.Fatalf("point = %v", hit.Point)
	}
	if !near(hit.Normal, mgl32.Vec3{0, 0, 1}) {
		t.Fatalf("normal = %v", hit.Normal)
	}
}

func TestIntersectHitsTarget(t *testing.T) {
	r := newTestWorld(t, data.DefaultScene())
	hit, ok := r.w.IntersectRay(geom.NewRay(mgl32.Vec3{0.5, 5.5, 0}, mgl32.Vec3{0, 0, -1}))
	if !ok || hit.Entity.Kind != KindTarget {
		t.Fatalf("hit = %+v, %v", hit, ok)
	}
	if !near(hit.Point, mgl32.Vec3{0.5, 5.5, -20}) {
		t.Fatalf("point = %v", hit.Point)
	}
}

func TestIntersectGroundFromAbove(t *testing.T) {
	r := newTestWorld(t, data.DefaultScene())
	hit, ok := r.w.IntersectRay(geom.NewRay(mgl32.Vec3{3, 2, 3}, mgl32.Vec3{0, -1, 0}))
	if !ok || hit.Entity.Kind != KindGround || !near(hit.Point, mgl32.Vec3{3, 0, 3}) {
		t.Fatalf("hit = %+v, %v", hit, ok)
	}
	// Looking up from below the floor sees its back face only.
	if _, ok := r.w.IntersectRay(geom.NewRay(mgl32.Vec3{3, -2, 3}, mgl32.Vec3{0, 1, 0})); ok {
		t.Fatal("back face of the ground was hit")
	}
}

func TestIntersectMiss(t *testing.T) {
	r := newTestWorld(t, data.DefaultScene())
	if hit, ok := r.w.IntersectRay(geom.NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 1, 0})); ok {
		t.Fatalf("unexpected hit %+v", hit)
	}
}

func TestIntersectDeterministic(t *testing.T) {
	layout := data.DefaultScene()
	layout.Ground = append(layout.Ground, data.Placement{Model: "wall", Position: [3]float32{1, 5, -12}, Rotation: [3]float32{0, 25, 0}})
	r := newTestWorld(t, layout)

	ray := geom.NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0.05, 0, -1})
	first, ok := r.w.IntersectRay(ray)
	if !ok {
		t.Fatal("expected a hit")
	}
	for i := 0; i < 100; i++ {
		again, _ := r.w.IntersectRay(ray)
		if again != first {
			t.Fatalf("query %d = %+v, first %+v", i, again, first)
		}
	}
}

func TestIntersectTieKeepsFirstRegistered(t *testing.T) {
	idx := NewObstacleIndex()
	reg := NewRegistry(nil, idx)
	a := newEntity(KindGround, NewTransform(mgl32.Vec3{0, 0, -5}))
	a.Geometry = wallQuad(t, 1)
	b := newEntity(KindTarget, NewTransform(mgl32.Vec3{0, 0, -5}))
	b.Geometry = wallQuad(t, 1)
	b.Target = &TargetState{Duration: 1}
	reg.Add(a)
	reg.Add(b)

	hit, ok := idx.Intersect(geom.NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}))
	if !ok || hit.Entity != a {
		t.Fatalf("tie resolved to %v", hit.Entity)
	}
}

func BenchmarkIntersect(b *testing.B) {
	layout := data.DefaultScene()
	layout.Ground = append(layout.Ground, data.Placement{Model: "wall", Position: [3]float32{0, 5, -10}})
	r := newTestWorld(b, layout)
	ray := geom.NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 0, -1})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.w.IntersectRay(ray)
	}
}
