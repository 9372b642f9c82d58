// Package term draws the range on a character terminal with tcell and turns
// keyboard and mouse events into control input.
package term

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/control"
	"github.com/rangefire/rangefire/internal/core/event"
	"github.com/rangefire/rangefire/internal/input"
	"github.com/rangefire/rangefire/internal/render"
)

// ErrQuit is returned by Run when the player asked to leave.
var ErrQuit = errors.New("quit requested")

const (
	fovY   = 70 * math.Pi / 180
	zNear  = 0.1
	zFar   = 200
	cellAR = 2 // terminal cells are about twice as tall as wide
)

// Terminal is a render.Renderer and control.Capturer backed by a tcell
// screen. Scene bookkeeping is delegated to an in-memory render.Scene; the
// terminal only projects attached objects to cells at RenderFrame.
type Terminal struct {
	screen tcell.Screen
	scene  *render.Scene
	hud    hud
	inputs *input.Queue

	captured   atomic.Bool
	resetMouse atomic.Bool
	closed     atomic.Bool

	log *zap.Logger
}

// Open creates and initialises the process terminal.
func Open() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	screen.HideCursor()
	return screen, nil
}

// New wraps an initialised screen. The HUD follows presentation topics on bus.
func New(screen tcell.Screen, bus *event.Bus, inputs *input.Queue, log *zap.Logger) *Terminal {
	t := &Terminal{
		screen: screen,
		scene:  render.NewScene(),
		inputs: inputs,
		log:    log,
	}
	t.hud.subscribe(bus)
	return t
}

func (t *Terminal) CreateHandle(desc render.Descriptor) render.Handle { return t.scene.CreateHandle(desc) }
func (t *Terminal) Attach(h render.Handle)                            { t.scene.Attach(h) }
func (t *Terminal) Detach(h render.Handle)                            { t.scene.Detach(h) }

func (t *Terminal) SyncTransform(h render.Handle, world mgl32.Mat4, mode render.SyncMode) {
	t.scene.SyncTransform(h, world, mode)
}

// RenderFrame draws every attached object as seen from camera, then the HUD.
func (t *Terminal) RenderFrame(camera render.Handle) {
	t.scene.RenderFrame(camera)
	if t.closed.Load() {
		return
	}
	t.screen.Clear()
	w, h := t.screen.Size()
	if cam, ok := t.scene.Get(camera); ok && w > 0 && h > 0 {
		t.drawScene(cam, w, h)
	}
	t.hud.draw(t.screen, w, h)
	t.screen.Show()
}

// Capture grabs the mouse for aiming.
func (t *Terminal) Capture() error {
	if t.closed.Load() {
		return control.ErrCaptureDenied
	}
	t.screen.EnableMouse(tcell.MouseMotionEvents)
	t.resetMouse.Store(true)
	t.captured.Store(true)
	return nil
}

func (t *Terminal) Release() {
	t.captured.Store(false)
	if !t.closed.Load() {
		t.screen.DisableMouse()
	}
}

func (t *Terminal) Captured() bool { return t.captured.Load() }

// Close restores the terminal. Run returns once the screen is finalised.
func (t *Terminal) Close() {
	if t.closed.Swap(true) {
		return
	}
	t.screen.Fini()
}

type projected struct {
	x, y  int
	depth float32
	glyph rune
	style tcell.Style
}

func (t *Terminal) drawScene(cam render.Object, w, h int) {
	vp := viewProjection(cam.Transform, w, h)
	objs := t.scene.Objects()
	cells := make([]projected, 0, len(objs))
	for _, o := range objs {
		if o.Handle == cam.Handle || o.Desc.Glyph == 0 {
			continue
		}
		x, y, depth, ok := project(vp, o.Position(), w, h)
		if !ok {
			continue
		}
		cells = append(cells, projected{x: x, y: y, depth: depth, glyph: o.Desc.Glyph, style: styleFor(o.Desc.Color)})
	}
	// Far to near so closer objects overwrite.
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].depth > cells[j].depth })
	for _, c := range cells {
		t.screen.SetContent(c.x, c.y, c.glyph, nil, c.style)
	}
}

// viewProjection builds the clip transform for a camera with the given world
// matrix on a w x h cell grid.
func viewProjection(camera mgl32.Mat4, w, h int) mgl32.Mat4 {
	aspect := float32(w) / float32(h*cellAR)
	return mgl32.Perspective(fovY, aspect, zNear, zFar).Mul4(camera.Inv())
}

// project maps a world position to a cell. ok is false for points behind
// the camera or outside the view.
func project(vp mgl32.Mat4, pos mgl32.Vec3, w, h int) (x, y int, depth float32, ok bool) {
	clip := vp.Mul4x1(pos.Vec4(1))
	if clip.W() < zNear {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
		return 0, 0, 0, false
	}
	x = int((ndc.X() + 1) / 2 * float32(w))
	y = int((1 - ndc.Y()) / 2 * float32(h))
	return min(x, w-1), min(y, h-1), clip.W(), true
}

func styleFor(color string) tcell.Style {
	if color == "" {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Foreground(tcell.GetColor(color))
}
