package world

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rangefire/rangefire/internal/audio"
	"github.com/rangefire/rangefire/internal/render"
)

// Decal is one bullet hole.
type Decal struct {
	Handle   render.Handle
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Scale    float32
	Matrix   mgl32.Mat4
	Cue      audio.Cue
}

// DecalPool keeps at most max decals in the scene. Adding to a full pool
// detaches the oldest decal before the new one is attached.
type DecalPool struct {
	max      int
	ring     []Decal
	head     int // index of the oldest decal
	size     int
	renderer render.Renderer
	visual   render.Descriptor
	rng      *rand.Rand
}

func NewDecalPool(capacity int, renderer render.Renderer, visual render.Descriptor, rng *rand.Rand) *DecalPool {
	if capacity < 1 {
		capacity = 1
	}
	return &DecalPool{
		max:      capacity,
		ring:     make([]Decal, capacity),
		renderer: renderer,
		visual:   visual,
		rng:      rng,
	}
}

// Add places a decal at position facing along normal and plays cue from it.
func (p *DecalPool) Add(position, normal mgl32.Vec3, cue audio.Cue) Decal {
	h := p.renderer.CreateHandle(p.visual)
	s := 1 + p.rng.Float32()*0.5

	d := Decal{
		Handle:   h,
		Position: position,
		Normal:   normal,
		Scale:    s,
		Matrix:   decalMatrix(position, normal, s),
		Cue:      cue,
	}
	p.renderer.SyncTransform(h, d.Matrix, render.SyncMatrix)

	if p.size == p.max {
		p.renderer.Detach(p.ring[p.head].Handle)
		p.ring[p.head] = Decal{}
		p.head = (p.head + 1) % p.max
		p.size--
	}
	p.ring[(p.head+p.size)%p.max] = d
	p.size++
	p.renderer.Attach(h)

	if cue != nil {
		cue.Play()
	}
	return d
}

func (p *DecalPool) Len() int { return p.size }

func (p *DecalPool) Cap() int { return p.max }

// Decals returns the pooled decals, oldest first.
func (p *DecalPool) Decals() []Decal {
	out := make([]Decal, p.size)
	for i := range out {
		out[i] = p.ring[(p.head+i)%p.max]
	}
	return out
}

// decalMatrix places a decal at position with its +Z axis looking toward
// position+normal.
func decalMatrix(position, normal mgl32.Vec3, scale float32) mgl32.Mat4 {
	rot := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, 1}, normal.Normalize())
	return mgl32.Translate3D(position[0], position[1], position[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale, scale, scale))
}
