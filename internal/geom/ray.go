package geom

import "github.com/go-gl/mathgl/mgl32"

// Ray is a half-line. Direction is expected to be unit length; the
// intersection code tolerates other lengths because distances are compared
// on the ray parameter before conversion.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

func NewRay(origin, direction mgl32.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Transform maps the ray through m. The direction is not renormalized so the
// ray parameter keeps its meaning across spaces.
func (r Ray) Transform(m mgl32.Mat4) Ray {
	return Ray{
		Origin:    m.Mul4x1(r.Origin.Vec4(1)).Vec3(),
		Direction: m.Mul4x1(r.Direction.Vec4(0)).Vec3(),
	}
}

// DistanceSq returns the squared distance between a and b.
func DistanceSq(a, b mgl32.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}
