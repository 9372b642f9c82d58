package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rangefire/rangefire/internal/core/event"
)

// Scorer rates a target hit. distance is from the muzzle to the hit point,
// offset from the target centre to the hit point.
type Scorer interface {
	HitScore(distance, offset, radius float32) int
}

// FlatScorer gives one point per hit.
type FlatScorer struct{}

func (FlatScorer) HitScore(float32, float32, float32) int { return 1 }

// ScoreKeeper tallies shots, hits and points and publishes the tally.
type ScoreKeeper struct {
	bus    *event.Bus
	scorer Scorer
	state  event.ScoreState
}

func NewScoreKeeper(bus *event.Bus, scorer Scorer) *ScoreKeeper {
	if scorer == nil {
		scorer = FlatScorer{}
	}
	return &ScoreKeeper{bus: bus, scorer: scorer}
}

// Shot counts a fired bullet.
func (k *ScoreKeeper) Shot() {
	k.state.Shots++
	k.publish()
}

// Hit counts a target hit and returns the points awarded.
func (k *ScoreKeeper) Hit(distance, offset, radius float32) int {
	points := max(k.scorer.HitScore(distance, offset, radius), 0)
	k.state.Hits++
	k.state.Points += points
	k.publish()
	return points
}

func (k *ScoreKeeper) State() event.ScoreState { return k.state }

func (k *ScoreKeeper) publish() {
	event.Publish(k.bus, event.Score, k.state)
}

// ShotRecord is the outcome of one bullet, handed to a ShotSink.
type ShotRecord struct {
	Seq     int
	FiredAt time.Time
	Hit     bool
	Kind    string // struck entity kind, empty on a miss
	Points  int
	Point   mgl32.Vec3
}

// ShotSink receives resolved shots. Record must not block.
type ShotSink interface {
	Record(ShotRecord)
}

func (w *World) recordShot(b *BulletState, struck *Entity, points int, at mgl32.Vec3) {
	rec := ShotRecord{Seq: b.Seq, FiredAt: b.FiredAt, Points: points, Point: at}
	if struck != nil {
		rec.Hit = true
		rec.Kind = struck.Kind.String()
	}
	w.shots = append(w.shots, rec)
}
