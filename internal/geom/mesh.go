package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-6

var ErrInvalidMesh = errors.New("invalid mesh")

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Mesh is an indexed triangle list in entity-local space. Triangles wind
// counter-clockwise when seen from their front side; only front faces are hit.
type Mesh struct {
	vertices []mgl32.Vec3
	indices  []uint32
	bounds   AABB
}

// NewMesh builds a mesh from a flat xyz position buffer and a triangle index
// buffer, the layout models are stored in.
func NewMesh(positions []float32, indices []uint32) (*Mesh, error) {
	if len(positions) == 0 || len(positions)%3 != 0 {
		return nil, fmt.Errorf("%w: %d position components", ErrInvalidMesh, len(positions))
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices", ErrInvalidMesh, len(indices))
	}
	n := len(positions) / 3
	verts := make([]mgl32.Vec3, n)
	for i := range verts {
		verts[i] = mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
	}
	for _, idx := range indices {
		if int(idx) >= n {
			return nil, fmt.Errorf("%w: index %d out of range (%d vertices)", ErrInvalidMesh, idx, n)
		}
	}

	m := &Mesh{vertices: verts, indices: append([]uint32(nil), indices...)}
	m.bounds = AABB{Min: verts[0], Max: verts[0]}
	for _, v := range verts[1:] {
		for k := 0; k < 3; k++ {
			m.bounds.Min[k] = min(m.bounds.Min[k], v[k])
			m.bounds.Max[k] = max(m.bounds.Max[k], v[k])
		}
	}
	return m, nil
}

func (m *Mesh) Bounds() AABB       { return m.bounds }
func (m *Mesh) TriangleCount() int { return len(m.indices) / 3 }

// Intersection is a ray hit in world space.
type Intersection struct {
	Point  mgl32.Vec3
	Normal mgl32.Vec3
	T      float32 // ray parameter of Point
}

// IntersectRay casts a world-space ray against the mesh placed by world
// (inverse must be world's inverse). It returns the nearest front-face hit.
func (m *Mesh) IntersectRay(ray Ray, world, inverse mgl32.Mat4) (Intersection, bool) {
	local := ray.Transform(inverse)
	if !m.bounds.hit(local) {
		return Intersection{}, false
	}

	best := float32(math.MaxFloat32)
	var bestNormal mgl32.Vec3
	found := false
	for i := 0; i+2 < len(m.indices); i += 3 {
		a := m.vertices[m.indices[i]]
		b := m.vertices[m.indices[i+1]]
		c := m.vertices[m.indices[i+2]]
		t, n, ok := intersectTriangle(local, a, b, c)
		if ok && t < best {
			best, bestNormal, found = t, n, true
		}
	}
	if !found {
		return Intersection{}, false
	}

	point := world.Mul4x1(local.At(best).Vec4(1)).Vec3()
	normal := inverse.Transpose().Mat3().Mul3x1(bestNormal).Normalize()
	return Intersection{Point: point, Normal: normal, T: best}, true
}

// intersectTriangle is Möller-Trumbore with back-face culling.
func intersectTriangle(r Ray, a, b, c mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	p := r.Direction.Cross(edge2)
	det := edge1.Dot(p)
	if det < epsilon {
		return 0, mgl32.Vec3{}, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, mgl32.Vec3{}, false
	}
	q := s.Cross(edge1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, mgl32.Vec3{}, false
	}
	t := edge2.Dot(q) * inv
	if t < 0 {
		return 0, mgl32.Vec3{}, false
	}
	return t, edge1.Cross(edge2), true
}

// hit is the slab test against a ray in the box's space.
func (b AABB) hit(r Ray) bool {
	tmin := float32(0)
	tmax := float32(math.MaxFloat32)
	for k := 0; k < 3; k++ {
		o, d := r.Origin[k], r.Direction[k]
		if d > -epsilon && d < epsilon {
			if o < b.Min[k]-epsilon || o > b.Max[k]+epsilon {
				return false
			}
			continue
		}
		t1 := (b.Min[k] - o) / d
		t2 := (b.Max[k] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1-epsilon)
		tmax = min(tmax, t2+epsilon)
		if tmin > tmax {
			return false
		}
	}
	return true
}
