package term

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/control"
	"github.com/rangefire/rangefire/internal/core/event"
	"github.com/rangefire/rangefire/internal/input"
	"github.com/rangefire/rangefire/internal/render"
)

func newTestTerminal(t *testing.T) (*Terminal, *event.Bus, *input.Queue) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(80, 24)
	bus := event.NewBus()
	inputs := input.NewQueue(16)
	term := New(screen, bus, inputs, zap.NewNop())
	t.Cleanup(term.Close)
	return term, bus, inputs
}

func cell(term *Terminal, x, y int) rune {
	r, _, _, _ := term.screen.GetContent(x, y)
	return r
}

func row(term *Terminal, y int) string {
	w, _ := term.screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		b.WriteRune(cell(term, x, y))
	}
	return b.String()
}

func place(term *Terminal, glyph rune, pos mgl32.Vec3) render.Handle {
	h := term.CreateHandle(render.Descriptor{Model: "target", Glyph: glyph, Color: "red"})
	term.Attach(h)
	term.SyncTransform(h, mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()), render.SyncMatrix)
	return h
}

func TestProjectCentre(t *testing.T) {
	vp := viewProjection(mgl32.Ident4(), 80, 24)
	x, y, depth, ok := project(vp, mgl32.Vec3{0, 0, -10}, 80, 24)
	if !ok || x != 40 || y != 12 {
		t.Fatalf("project = (%d,%d,%v), want (40,12,true)", x, y, ok)
	}
	if depth < 9.9 || depth > 10.1 {
		t.Fatalf("depth = %v, want ~10", depth)
	}
	if _, _, _, ok := project(vp, mgl32.Vec3{0, 0, 10}, 80, 24); ok {
		t.Fatal("point behind the camera projected")
	}
	if _, _, _, ok := project(vp, mgl32.Vec3{100, 0, -1}, 80, 24); ok {
		t.Fatal("point outside the frustum projected")
	}
}

func TestRenderFrameDrawsNearestGlyph(t *testing.T) {
	term, bus, _ := newTestTerminal(t)
	event.Publish(bus, event.LoadingHidden, true)
	event.Publish(bus, event.ReticleHidden, true)
	bus.Flush()

	camera := term.CreateHandle(render.Descriptor{})
	term.SyncTransform(camera, mgl32.Ident4(), render.SyncWorldMatrix)
	place(term, 'F', mgl32.Vec3{0, 0, -30})
	place(term, 'N', mgl32.Vec3{0, 0, -10})
	place(term, 'B', mgl32.Vec3{0, 0, 10})

	term.RenderFrame(camera)
	if got := cell(term, 40, 12); got != 'N' {
		t.Fatalf("centre cell = %q, want 'N'", got)
	}
}

func TestLoadingFrameWithoutCamera(t *testing.T) {
	term, _, _ := newTestTerminal(t)
	term.RenderFrame(0)
	if !strings.Contains(row(term, 12), "loading...") {
		t.Fatalf("loading overlay missing: %q", row(term, 12))
	}
}

func TestHUD(t *testing.T) {
	term, bus, _ := newTestTerminal(t)
	camera := term.CreateHandle(render.Descriptor{})

	term.RenderFrame(camera)
	if !strings.Contains(row(term, 12), "loading...") {
		t.Fatalf("loading overlay missing: %q", row(term, 12))
	}

	event.Publish(bus, event.LoadingHidden, true)
	event.Publish(bus, event.Ammo, event.AmmoState{Current: 7, Total: 12})
	event.Publish(bus, event.Score, event.ScoreState{Shots: 5, Hits: 2, Points: 17})
	bus.Flush()
	term.RenderFrame(camera)

	if got := cell(term, 40, 12); got != '+' {
		t.Fatalf("reticle = %q", got)
	}
	bottom := row(term, 23)
	if !strings.Contains(bottom, "ammo 7/12") || !strings.Contains(bottom, "score 17  hits 2/5") {
		t.Fatalf("status line = %q", bottom)
	}
	if !strings.Contains(row(term, 14), "[enter] engage") {
		t.Fatal("intro text missing while intro is shown")
	}

	event.Publish(bus, event.HitHidden, false)
	event.Publish(bus, event.IntroHidden, true)
	bus.Flush()
	term.RenderFrame(camera)
	if got := cell(term, 40, 12); got != 'X' {
		t.Fatalf("hit marker = %q", got)
	}
	if strings.Contains(row(term, 14), "[enter] engage") {
		t.Fatal("intro text drawn while hidden")
	}
}

func TestCapture(t *testing.T) {
	term, _, _ := newTestTerminal(t)
	if err := term.Capture(); err != nil {
		t.Fatal(err)
	}
	if !term.Captured() {
		t.Fatal("not captured after Capture")
	}
	term.Release()
	if term.Captured() {
		t.Fatal("still captured after Release")
	}

	term.Close()
	if err := term.Capture(); !errors.Is(err, control.ErrCaptureDenied) {
		t.Fatalf("Capture after Close = %v", err)
	}
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want input.Event
		ok   bool
	}{
		{tcell.KeyEnter, 0, input.Event{Kind: input.Engage}, true},
		{tcell.KeyEscape, 0, input.Event{Kind: input.Release}, true},
		{tcell.KeyRight, 0, input.Event{Kind: input.Aim, DX: aimStep}, true},
		{tcell.KeyUp, 0, input.Event{Kind: input.Aim, DY: -aimStep}, true},
		{tcell.KeyRune, ' ', input.Event{Kind: input.Fire}, true},
		{tcell.KeyRune, 'r', input.Event{Kind: input.Reload}, true},
		{tcell.KeyRune, 'w', input.Event{Kind: input.Move, Z: 1}, true},
		{tcell.KeyRune, 'a', input.Event{Kind: input.Move, X: -1}, true},
		{tcell.KeyRune, 'z', input.Event{}, false},
		{tcell.KeyTab, 0, input.Event{}, false},
	}
	for _, tt := range tests {
		got, ok := keyEvent(tt.key, tt.r)
		if ok != tt.ok || got != tt.want {
			t.Errorf("keyEvent(%v, %q) = %+v, %v; want %+v, %v", tt.key, tt.r, got, ok, tt.want, tt.ok)
		}
	}
	if !isQuit(tcell.KeyRune, 'q') || !isQuit(tcell.KeyCtrlC, 0) || isQuit(tcell.KeyRune, 'w') {
		t.Fatal("isQuit mapping wrong")
	}
}

func TestMoverHoldsThenStops(t *testing.T) {
	var m mover
	t0 := time.Unix(0, 0)

	m.press(input.Event{Kind: input.Move, Z: 1}, t0)
	m.press(input.Event{Kind: input.Move, X: -1}, t0.Add(50*time.Millisecond))
	ev, ok := m.changed()
	if !ok || ev.X != -1 || ev.Z != 1 {
		t.Fatalf("changed = %+v, %v", ev, ok)
	}
	if _, ok := m.changed(); ok {
		t.Fatal("unchanged vector re-sent")
	}

	m.expire(t0.Add(moveHold))
	ev, ok = m.changed()
	if !ok || ev.X != -1 || ev.Z != 0 {
		t.Fatalf("after forward expiry = %+v, %v", ev, ok)
	}

	m.expire(t0.Add(time.Second))
	ev, ok = m.changed()
	if !ok || ev.X != 0 || ev.Z != 0 {
		t.Fatalf("after full expiry = %+v, %v", ev, ok)
	}
}

func TestPointer(t *testing.T) {
	var p pointer
	if _, _, ok := p.move(10, 10, 80, 24); ok {
		t.Fatal("first sample produced a delta")
	}
	dx, dy, ok := p.move(18, 4, 80, 24)
	if !ok || dx != 0.1 || dy != -0.25 {
		t.Fatalf("delta = %v, %v, %v", dx, dy, ok)
	}
	p.reset()
	if _, _, ok := p.move(0, 0, 80, 24); ok {
		t.Fatal("delta across reset")
	}

	if !p.pressed(tcell.Button1, tcell.Button1) {
		t.Fatal("press not detected")
	}
	if p.pressed(tcell.Button1, tcell.Button1) {
		t.Fatal("held button reported as new press")
	}
	if p.pressed(tcell.ButtonNone, tcell.Button1) {
		t.Fatal("release reported as press")
	}
}
