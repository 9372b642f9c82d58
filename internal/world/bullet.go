package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/audio"
	"github.com/rangefire/rangefire/internal/core/ecs"
	"github.com/rangefire/rangefire/internal/geom"
)

// BulletState is a projectile in flight along Ray.
type BulletState struct {
	Owner    ecs.EntityID
	Ray      geom.Ray
	Speed    float32 // metres per second
	Lifetime float32 // seconds
	Elapsed  float32
	Seq      int // shot number within the session
	FiredAt  time.Time
}

// updateBullet moves the bullet one step and resolves a hit against the
// segment travelled this frame.
func updateBullet(w *World, e *Entity, dt float32) {
	b := e.Bullet
	b.Elapsed += dt
	if b.Elapsed > b.Lifetime {
		w.recordShot(b, nil, 0, mgl32.Vec3{})
		w.Remove(e.ID)
		return
	}

	prev := e.Transform.Position
	step := b.Speed * dt
	e.Transform.Position = prev.Add(b.Ray.Direction.Mul(step))

	hit, ok := w.obstacles.Intersect(geom.Ray{Origin: prev, Direction: b.Ray.Direction})
	if !ok || geom.DistanceSq(hit.Point, prev) > step*step {
		return
	}

	cue := w.sounds.Cue(audio.ImpactCue(1 + w.rng.Intn(audio.ImpactCues)))
	w.AddBulletHole(hit.Point, hit.Normal, cue)

	consumed := w.SendMessage(e.ID, hit.Entity.ID, Message{Kind: MessageHit, Point: hit.Point, Normal: hit.Normal})
	points := 0
	if consumed && hit.Entity.Kind == KindTarget {
		points = w.score.Hit(
			hit.Point.Sub(b.Ray.Origin).Len(),
			hit.Point.Sub(hit.Entity.WorldPosition()).Len(),
			hit.Entity.Target.Radius,
		)
	}
	if !consumed {
		w.log.Debug("hit not consumed", zap.Stringer("entity", hit.Entity.ID), zap.Stringer("kind", hit.Entity.Kind))
	}
	w.recordShot(b, hit.Entity, points, hit.Point)
	w.Remove(e.ID)
}

// bulletRotation turns the bullet line model, which points along -Z, onto dir.
func bulletRotation(dir mgl32.Vec3) mgl32.Quat {
	return mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, -1}, dir)
}
