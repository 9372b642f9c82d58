package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/input"
)

const (
	// Terminals report key presses, not releases; a movement key counts as
	// held until it has not repeated for moveHold.
	moveHold = 250 * time.Millisecond
	aimStep  = 0.03 // aim delta per arrow key press
)

// keyEvent maps a key press to a control event. Move events carry only the
// axis the key drives.
func keyEvent(key tcell.Key, r rune) (input.Event, bool) {
	switch key {
	case tcell.KeyEnter:
		return input.Event{Kind: input.Engage}, true
	case tcell.KeyEscape:
		return input.Event{Kind: input.Release}, true
	case tcell.KeyLeft:
		return input.Event{Kind: input.Aim, DX: -aimStep}, true
	case tcell.KeyRight:
		return input.Event{Kind: input.Aim, DX: aimStep}, true
	case tcell.KeyUp:
		return input.Event{Kind: input.Aim, DY: -aimStep}, true
	case tcell.KeyDown:
		return input.Event{Kind: input.Aim, DY: aimStep}, true
	case tcell.KeyRune:
	default:
		return input.Event{}, false
	}
	switch r {
	case ' ':
		return input.Event{Kind: input.Fire}, true
	case 'r', 'R':
		return input.Event{Kind: input.Reload}, true
	case 'w', 'W':
		return input.Event{Kind: input.Move, Z: 1}, true
	case 's', 'S':
		return input.Event{Kind: input.Move, Z: -1}, true
	case 'a', 'A':
		return input.Event{Kind: input.Move, X: -1}, true
	case 'd', 'D':
		return input.Event{Kind: input.Move, X: 1}, true
	}
	return input.Event{}, false
}

func isQuit(key tcell.Key, r rune) bool {
	return key == tcell.KeyCtrlC || (key == tcell.KeyRune && (r == 'q' || r == 'Q'))
}

// mover tracks held movement axes.
type mover struct {
	x, z     float32
	xAt, zAt time.Time
	sent     [2]float32
}

func (m *mover) press(ev input.Event, now time.Time) {
	if ev.X != 0 {
		m.x, m.xAt = ev.X, now
	}
	if ev.Z != 0 {
		m.z, m.zAt = ev.Z, now
	}
}

func (m *mover) expire(now time.Time) {
	if m.x != 0 && now.Sub(m.xAt) >= moveHold {
		m.x = 0
	}
	if m.z != 0 && now.Sub(m.zAt) >= moveHold {
		m.z = 0
	}
}

// changed returns the current vector when it differs from the last one sent.
func (m *mover) changed() (input.Event, bool) {
	if m.sent == [2]float32{m.x, m.z} {
		return input.Event{}, false
	}
	m.sent = [2]float32{m.x, m.z}
	return input.Event{Kind: input.Move, X: m.x, Z: m.z}, true
}

// pointer turns absolute mouse positions into aim deltas.
type pointer struct {
	x, y    int
	seen    bool
	buttons tcell.ButtonMask
}

func (p *pointer) reset() { p.seen = false }

// move returns the aim delta as a fraction of the screen size.
func (p *pointer) move(x, y, w, h int) (dx, dy float32, ok bool) {
	defer func() { p.x, p.y, p.seen = x, y, true }()
	if !p.seen || w <= 0 || h <= 0 || (x == p.x && y == p.y) {
		return 0, 0, false
	}
	return float32(x-p.x) / float32(w), float32(y-p.y) / float32(h), true
}

// pressed reports whether button went down since the last event.
func (p *pointer) pressed(buttons, button tcell.ButtonMask) bool {
	down := buttons&button != 0 && p.buttons&button == 0
	p.buttons = buttons
	return down
}

// Run reads terminal events and pushes control events until ctx is
// cancelled, the screen is closed, or the player quits (ErrQuit).
func (t *Terminal) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(moveHold / 5)
	defer ticker.Stop()

	var (
		mv  mover
		ptr pointer
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if t.handle(ev, &mv, &ptr) {
				return ErrQuit
			}
		case now := <-ticker.C:
			mv.expire(now)
			if ev, ok := mv.changed(); ok {
				t.push(ev)
			}
		}
	}
}

// handle processes one terminal event and reports whether to quit.
func (t *Terminal) handle(ev tcell.Event, mv *mover, ptr *pointer) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuit(ev.Key(), ev.Rune()) {
			return true
		}
		cmd, ok := keyEvent(ev.Key(), ev.Rune())
		if !ok {
			return false
		}
		if cmd.Kind == input.Move {
			mv.press(cmd, ev.When())
			cmd, ok = mv.changed()
			if !ok {
				return false
			}
		}
		t.push(cmd)
	case *tcell.EventMouse:
		if t.resetMouse.Swap(false) {
			ptr.reset()
		}
		if !t.captured.Load() {
			if ptr.pressed(ev.Buttons(), tcell.Button1) {
				t.push(input.Event{Kind: input.Engage})
			}
			return false
		}
		w, h := t.screen.Size()
		x, y := ev.Position()
		if dx, dy, ok := ptr.move(x, y, w, h); ok {
			t.push(input.Event{Kind: input.Aim, DX: dx, DY: dy})
		}
		if ptr.pressed(ev.Buttons(), tcell.Button1) {
			t.push(input.Event{Kind: input.Fire})
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return false
}

func (t *Terminal) push(ev input.Event) {
	if !t.inputs.Push(ev) {
		t.log.Debug("input queue full", zap.Stringer("kind", ev.Kind))
	}
}
