package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/rangefire/rangefire/internal/core/ecs"
	"github.com/rangefire/rangefire/internal/geom"
)

// Hit is the nearest obstacle struck by a ray.
type Hit struct {
	Entity *Entity
	Point  mgl32.Vec3
	Normal mgl32.Vec3
}

// ObstacleIndex holds every active entity that owns geometry. Membership is
// maintained by the Registry only.
type ObstacleIndex struct {
	entries []*Entity
}

func NewObstacleIndex() *ObstacleIndex {
	return &ObstacleIndex{entries: make([]*Entity, 0, 16)}
}

func (o *ObstacleIndex) Len() int { return len(o.entries) }

// Contains reports whether id is an obstacle.
func (o *ObstacleIndex) Contains(id ecs.EntityID) bool {
	for _, e := range o.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Intersect returns the obstacle nearest to the ray origin. Equidistant hits
// keep the obstacle registered first.
func (o *ObstacleIndex) Intersect(ray geom.Ray) (Hit, bool) {
	var (
		best  Hit
		bestD float32
		found bool
	)
	for _, e := range o.entries {
		is, ok := e.Geometry.IntersectRay(ray, e.world, e.inverse)
		if !ok {
			continue
		}
		d := geom.DistanceSq(is.Point, ray.Origin)
		if !found || d < bestD {
			best = Hit{Entity: e, Point: is.Point, Normal: is.Normal}
			bestD = d
			found = true
		}
	}
	return best, found
}

func (o *ObstacleIndex) add(e *Entity) {
	o.entries = append(o.entries, e)
}

func (o *ObstacleIndex) remove(e *Entity) {
	for i, other := range o.entries {
		if other == e {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return
		}
	}
}
