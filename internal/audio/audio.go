// Package audio provides the named playable cues the simulation triggers:
// weapon sounds and bullet impacts.
package audio

import "strconv"

// Cue is one playable sound.
type Cue interface {
	Play()
}

// Bank resolves cues by name. Unknown names resolve to a silent cue.
type Bank interface {
	Cue(name string) Cue
}

// Cue names used by the simulation.
const (
	CueShot   = "shot"
	CueReload = "reload"
	CueEmpty  = "empty"
)

// ImpactCues is the number of impact variations, named impact1..impactN.
const ImpactCues = 7

// ImpactCue returns the name of impact variation i, counted from 1.
func ImpactCue(i int) string {
	return "impact" + strconv.Itoa(i)
}

type silentCue struct{}

func (silentCue) Play() {}

// Silent is a bank whose cues do nothing. Used when no audio device is
// available or audio is disabled.
type Silent struct{}

func (Silent) Cue(string) Cue { return silentCue{} }

// Counter is a bank that counts plays per cue name.
type Counter struct {
	Plays map[string]int
}

func NewCounter() *Counter {
	return &Counter{Plays: make(map[string]int)}
}

func (c *Counter) Cue(name string) Cue {
	return countedCue{c: c, name: name}
}

type countedCue struct {
	c    *Counter
	name string
}

func (q countedCue) Play() { q.c.Plays[q.name]++ }
