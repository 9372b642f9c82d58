package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/rangefire/rangefire/internal/core/ecs"
)

// MessageKind identifies the payload of a Message.
type MessageKind uint8

const (
	MessageHit MessageKind = iota + 1
)

// Message is a point-to-point notification between entities.
type Message struct {
	Kind   MessageKind
	Point  mgl32.Vec3
	Normal mgl32.Vec3
}

type (
	updateFunc  func(w *World, e *Entity, dt float32)
	messageFunc func(w *World, e *Entity, sender ecs.EntityID, msg Message) bool
)

// behavior is the update and message handler of one entity kind.
type behavior struct {
	update  updateFunc
	message messageFunc
}

// behaviors returns the dispatch table indexed by Kind. It is built per
// World rather than held in a package var: the handlers call back into the
// World, which would make a package-level table an initialization cycle.
func behaviors() [kindCount]behavior {
	return [kindCount]behavior{
		KindGround: {message: groundMessage},
		KindTarget: {update: updateTarget, message: targetMessage},
		KindBullet: {update: updateBullet},
	}
}

// SendMessage delivers msg synchronously to receiver and reports whether it
// was consumed. Absent or removed receivers, and kinds without a message
// handler, report false.
func (w *World) SendMessage(sender, receiver ecs.EntityID, msg Message) bool {
	e, ok := w.registry.Get(receiver)
	if !ok || e.removed {
		return false
	}
	h := w.behaviors[e.Kind].message
	if h == nil {
		return false
	}
	return h(w, e, sender, msg)
}
