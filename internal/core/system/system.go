package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput   Phase = iota // 0: drain input, resolve controls
	PhaseUpdate               // 1: entity update hooks, projectile queries
	PhaseOutput               // 2: transform sync + render
	PhasePublish              // 3: deliver bus topics to subscribers
	PhasePersist              // 4: hand shot records to the writer
	PhaseCleanup              // 5: apply deferred registry changes
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhaseOutput:
		return "output"
	case PhasePublish:
		return "publish"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
