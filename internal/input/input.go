// Package input carries discrete control events from adapter goroutines
// (terminal, websocket) to the frame goroutine.
package input

import "fmt"

// Kind is the type of one control event.
type Kind uint8

const (
	Engage  Kind = iota + 1 // request control capture
	Release                 // capture was lost externally
	Move                    // X strafe, Z forward; both in [-1, 1]
	Aim                     // DX yaw delta, DY pitch delta
	Fire                    // pull the trigger
	Reload                  // start a reload
)

var kindNames = [...]string{
	Engage:  "engage",
	Release: "release",
	Move:    "move",
	Aim:     "aim",
	Fire:    "fire",
	Reload:  "reload",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind maps a wire name to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name != "" && name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Event is one control event.
type Event struct {
	Kind   Kind
	X, Z   float32
	DX, DY float32
}
