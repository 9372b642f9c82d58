package event

// Presentation topics. Overlay flags are "hidden" booleans so the zero value
// of a missing topic reads as "visible", matching a fresh UI.
var (
	LoadingHidden = NewTopic[bool]("loading.hidden")
	IntroHidden   = NewTopic[bool]("intro.hidden")
	ReticleHidden = NewTopic[bool]("reticle.hidden")
	HitHidden     = NewTopic[bool]("hit.hidden")
	Ammo          = NewTopic[AmmoState]("ammo")
	Score         = NewTopic[ScoreState]("score")
)

// AmmoState is the magazine as shown to the player.
type AmmoState struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ScoreState is the running tally of the range session.
type ScoreState struct {
	Shots  int `json:"shots"`
	Hits   int `json:"hits"`
	Points int `json:"points"`
}
