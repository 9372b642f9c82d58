// Package control turns player input into pawn actions and presentation
// state. It owns the engage/release state and the weapon magazine.
package control

//go:generate go tool mockgen -source=control.go -destination=mocks/control_mock.go -package=mocks

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrCaptureDenied is returned by a Capturer that refused to capture.
var ErrCaptureDenied = errors.New("control capture denied")

// Capturer grabs and releases exclusive control of the input device.
type Capturer interface {
	Capture() error
	Release()
}

// Pawn is what the controls drive.
type Pawn interface {
	// Move walks the pawn by dir (x strafe, y forward) scaled by dt seconds.
	Move(dir mgl32.Vec2, dt float32)
	// Look turns the pawn by yaw and pitch deltas in radians.
	Look(yaw, pitch float32)
	// Fire spawns a projectile from the pawn's weapon.
	Fire()
}

// State is the capture state of the controls.
type State uint8

const (
	Unengaged State = iota
	Engaged
)

func (s State) String() string {
	if s == Engaged {
		return "engaged"
	}
	return "unengaged"
}

// NopCapturer always grants capture. Used when no input device needs
// grabbing, e.g. headless runs driven over the bridge.
type NopCapturer struct{}

func (NopCapturer) Capture() error { return nil }
func (NopCapturer) Release()       {}
