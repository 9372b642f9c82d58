package render

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Object is the scene's copy of one handle.
type Object struct {
	Handle    Handle
	Desc      Descriptor
	Transform mgl32.Mat4
	Mode      SyncMode // how Transform was last written
	Attached  bool
}

// Position returns the translation part of the object's transform.
func (o Object) Position() mgl32.Vec3 {
	return o.Transform.Col(3).Vec3()
}

// Scene is an in-memory scene graph mirror. It is the renderer used when no
// display is available and doubles as the reference implementation in tests.
// Not safe for concurrent use.
type Scene struct {
	next    Handle
	objects map[Handle]*Object
	frames  int
	camera  Handle
}

func NewScene() *Scene {
	return &Scene{objects: make(map[Handle]*Object, 64)}
}

func (s *Scene) CreateHandle(desc Descriptor) Handle {
	s.next++
	s.objects[s.next] = &Object{Handle: s.next, Desc: desc}
	return s.next
}

func (s *Scene) Attach(h Handle) {
	if o, ok := s.objects[h]; ok {
		o.Attached = true
	}
}

// Detach removes the object from the scene root and forgets the handle;
// handles are never re-attached after detach.
func (s *Scene) Detach(h Handle) {
	delete(s.objects, h)
}

func (s *Scene) SyncTransform(h Handle, world mgl32.Mat4, mode SyncMode) {
	o, ok := s.objects[h]
	if !ok {
		return
	}
	o.Transform = world
	o.Mode = mode
}

func (s *Scene) RenderFrame(camera Handle) {
	s.camera = camera
	s.frames++
}

// Frames returns how many frames were rendered.
func (s *Scene) Frames() int { return s.frames }

// Camera returns the camera handle of the last rendered frame.
func (s *Scene) Camera() Handle { return s.camera }

// Attached reports whether h is currently attached to the scene root.
func (s *Scene) Attached(h Handle) bool {
	o, ok := s.objects[h]
	return ok && o.Attached
}

// Get returns a copy of the object behind h.
func (s *Scene) Get(h Handle) (Object, bool) {
	o, ok := s.objects[h]
	if !ok {
		return Object{}, false
	}
	return *o, true
}

// Objects returns all attached objects ordered by handle.
func (s *Scene) Objects() []Object {
	out := make([]Object, 0, len(s.objects))
	for _, o := range s.objects {
		if o.Attached {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Count returns the number of attached objects built from model.
func (s *Scene) Count(model string) int {
	n := 0
	for _, o := range s.objects {
		if o.Attached && o.Desc.Model == model {
			n++
		}
	}
	return n
}
