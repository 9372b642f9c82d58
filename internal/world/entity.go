package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rangefire/rangefire/internal/core/ecs"
	"github.com/rangefire/rangefire/internal/geom"
	"github.com/rangefire/rangefire/internal/render"
)

// Kind is the closed set of entity variants in the range.
type Kind uint8

const (
	KindGround Kind = iota + 1
	KindTarget
	KindPlayer
	KindHead
	KindWeapon
	KindBullet
	kindCount
)

var kindNames = [kindCount]string{
	KindGround: "ground",
	KindTarget: "target",
	KindPlayer: "player",
	KindHead:   "head",
	KindWeapon: "weapon",
	KindBullet: "bullet",
}

func (k Kind) String() string {
	if k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Transform is a local position, rotation and scale.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform(position mgl32.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix composes translation * rotation * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Entity is one simulation object. Kind selects its behavior; the per-kind
// state pointer matching Kind is non-nil.
type Entity struct {
	ID        ecs.EntityID
	Kind      Kind
	Transform Transform
	Parent    *Entity

	// Geometry makes the entity an obstacle for ray queries.
	Geometry *geom.Mesh

	handle render.Handle
	sync   render.SyncMode

	world   mgl32.Mat4
	inverse mgl32.Mat4

	// removed is set as soon as removal is requested, before the registry
	// applies it, so the entity stops receiving messages and updates.
	removed bool

	Target *TargetState
	Bullet *BulletState
	Player *PlayerState
}

func newEntity(kind Kind, t Transform) *Entity {
	e := &Entity{Kind: kind, Transform: t}
	e.updateMatrix()
	return e
}

// SetRender binds a render handle and how it is synced.
func (e *Entity) SetRender(h render.Handle, mode render.SyncMode) {
	e.handle = h
	e.sync = mode
}

func (e *Entity) Handle() render.Handle { return e.handle }

// Removed reports whether removal of the entity has been requested.
func (e *Entity) Removed() bool { return e.removed }

// WorldMatrix returns the world matrix as of the last matrix update.
func (e *Entity) WorldMatrix() mgl32.Mat4 { return e.world }

func (e *Entity) WorldPosition() mgl32.Vec3 { return e.world.Col(3).Vec3() }

// WorldForward returns the entity's world -Z axis, normalized.
func (e *Entity) WorldForward() mgl32.Vec3 {
	return e.world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3().Normalize()
}

// updateMatrix recomputes the world matrix and its inverse, parents first.
func (e *Entity) updateMatrix() {
	local := e.Transform.Matrix()
	if e.Parent != nil {
		e.Parent.updateMatrix()
		e.world = e.Parent.world.Mul4(local)
	} else {
		e.world = local
	}
	e.inverse = e.world.Inv()
}
