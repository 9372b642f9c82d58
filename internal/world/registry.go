package world

import (
	"github.com/rangefire/rangefire/internal/core/ecs"
	"github.com/rangefire/rangefire/internal/render"
)

// Registry is the active entity set. Adding an entity attaches its render
// handle and, when it owns geometry, registers it as an obstacle; removal is
// the exact inverse. Changes requested during Update are applied by Flush.
type Registry struct {
	entities  *ecs.Registry[Entity]
	renderer  render.Renderer
	obstacles *ObstacleIndex
}

func NewRegistry(renderer render.Renderer, obstacles *ObstacleIndex) *Registry {
	r := &Registry{renderer: renderer, obstacles: obstacles}
	r.entities = ecs.NewRegistry(ecs.Hooks[Entity]{
		Added:   r.added,
		Removed: r.removed,
	})
	return r
}

// Add assigns e an ID and activates it. Inside Update the activation is
// deferred to the next Flush; the ID is valid immediately.
func (r *Registry) Add(e *Entity) ecs.EntityID {
	e.ID = r.entities.Create()
	r.entities.Add(e.ID, e)
	return e.ID
}

// Remove deactivates id. Removing an absent entity is a no-op.
func (r *Registry) Remove(id ecs.EntityID) {
	if e, ok := r.entities.Get(id); ok {
		e.removed = true
	}
	r.entities.Remove(id)
}

func (r *Registry) Get(id ecs.EntityID) (*Entity, bool) {
	return r.entities.Get(id)
}

func (r *Registry) Len() int { return r.entities.Len() }

// Each visits every active entity in registration order.
func (r *Registry) Each(fn func(*Entity)) {
	r.entities.Each(func(_ ecs.EntityID, e *Entity) { fn(e) })
}

// Update runs fn once for every active entity not pending removal.
func (r *Registry) Update(fn func(*Entity)) {
	r.entities.Each(func(_ ecs.EntityID, e *Entity) {
		if !e.removed {
			fn(e)
		}
	})
}

// Flush applies deferred structural changes and returns how many.
func (r *Registry) Flush() int {
	return r.entities.Flush()
}

func (r *Registry) added(_ ecs.EntityID, e *Entity) {
	e.removed = false
	e.updateMatrix()
	if e.handle != 0 && e.sync == render.SyncMatrix {
		r.renderer.Attach(e.handle)
	}
	if e.Geometry != nil {
		r.obstacles.add(e)
	}
}

func (r *Registry) removed(_ ecs.EntityID, e *Entity) {
	e.removed = true
	if e.handle != 0 && e.sync == render.SyncMatrix {
		r.renderer.Detach(e.handle)
	}
	if e.Geometry != nil {
		r.obstacles.remove(e)
	}
}
