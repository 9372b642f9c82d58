// Package render defines the contract between the simulation and whatever
// draws it. The simulation creates handles for visual descriptors, attaches
// them to the scene root, copies entity transforms into them once per frame
// and asks for a frame to be drawn from the camera's point of view.
package render

//go:generate go tool mockgen -source=render.go -destination=mocks/render_mock.go -package=mocks

import "github.com/go-gl/mathgl/mgl32"

// Handle identifies one render object. The zero Handle means "no visual".
type Handle uint32

// SyncMode selects how an entity transform is copied into its handle.
type SyncMode uint8

const (
	// SyncMatrix copies the entity world matrix into the object's local
	// matrix. Used for objects attached directly to the scene root.
	SyncMatrix SyncMode = iota
	// SyncWorldMatrix overwrites the object's world matrix. Used for the
	// camera, which is not parented to the scene root.
	SyncWorldMatrix
)

// Descriptor describes what a handle should look like. Renderers are free to
// interpret it; the terminal renderer only uses Glyph and Color.
type Descriptor struct {
	Model string
	Glyph rune
	Color string
}

// Renderer is the render subsystem contract.
type Renderer interface {
	CreateHandle(desc Descriptor) Handle
	Attach(h Handle)
	Detach(h Handle)
	SyncTransform(h Handle, world mgl32.Mat4, mode SyncMode)
	RenderFrame(camera Handle)
}
