package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rangefire/rangefire/internal/geom"
)

// maxPitch keeps the head just short of straight up or down.
const maxPitch = math.Pi / 2 * 0.99

// PlayerState is the player's orientation and its sub-entities. Yaw turns
// the player entity; pitch turns the head.
type PlayerState struct {
	Yaw    float32
	Pitch  float32
	Speed  float32 // metres per second at full input
	Head   *Entity
	Weapon *Entity
}

// pawn drives the player entity on behalf of the controls.
type pawn struct {
	w      *World
	player *Entity
}

// Move walks the player in its yaw frame. dir.X strafes right, dir.Y walks
// forward. Height is fixed.
func (p pawn) Move(dir mgl32.Vec2, dt float32) {
	st := p.player.Player
	yaw := mgl32.QuatRotate(st.Yaw, mgl32.Vec3{0, 1, 0})
	forward := yaw.Rotate(mgl32.Vec3{0, 0, -1})
	right := yaw.Rotate(mgl32.Vec3{1, 0, 0})

	step := right.Mul(dir.X()).Add(forward.Mul(dir.Y()))
	if l := step.Len(); l > 1 {
		step = step.Mul(1 / l)
	}
	pos := p.player.Transform.Position.Add(step.Mul(st.Speed * dt))
	pos[1] = p.player.Transform.Position[1]
	p.player.Transform.Position = pos
}

// Look adds yaw and pitch in radians. Pitch is clamped.
func (p pawn) Look(yaw, pitch float32) {
	st := p.player.Player
	st.Yaw = wrapAngle(st.Yaw + yaw)
	st.Pitch = mgl32.Clamp(st.Pitch+pitch, -maxPitch, maxPitch)
	p.player.Transform.Rotation = mgl32.QuatRotate(st.Yaw, mgl32.Vec3{0, 1, 0})
	st.Head.Transform.Rotation = mgl32.QuatRotate(st.Pitch, mgl32.Vec3{1, 0, 0})
}

// Fire spawns a bullet from the weapon muzzle toward the point under the
// reticle, so shots converge on what the head is looking at.
func (p pawn) Fire() {
	st := p.player.Player
	st.Head.updateMatrix()
	st.Weapon.updateMatrix()

	eye := st.Head.WorldPosition()
	look := geom.NewRay(eye, st.Head.WorldForward())
	aim := look.At(p.w.cfg.BulletSpeed * p.w.cfg.BulletLifetime)
	if hit, ok := p.w.obstacles.Intersect(look); ok {
		aim = hit.Point
	}

	muzzle := st.Weapon.WorldPosition()
	dir := aim.Sub(muzzle)
	if dir.Len() < 1e-4 {
		dir = look.Direction
	}
	p.w.AddBullet(p.player.ID, geom.NewRay(muzzle, dir))
}

func wrapAngle(a float32) float32 {
	const twoPi = 2 * math.Pi
	for a > math.Pi {
		a -= twoPi
	}
	for a < -math.Pi {
		a += twoPi
	}
	return a
}
