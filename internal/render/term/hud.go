package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/rangefire/rangefire/internal/core/event"
)

const introText = "[enter] engage  [wasd] move  [arrows/mouse] aim  [space/click] fire  [r] reload  [esc] release  [q] quit"

// hud mirrors presentation topics. Bus handlers and draw both run on the
// frame goroutine.
type hud struct {
	loadingHidden bool
	introHidden   bool
	reticleHidden bool
	hitHidden     bool
	ammo          event.AmmoState
	score         event.ScoreState
}

func (h *hud) subscribe(bus *event.Bus) {
	h.hitHidden = true
	event.Subscribe(bus, event.LoadingHidden, func(v bool) { h.loadingHidden = v })
	event.Subscribe(bus, event.IntroHidden, func(v bool) { h.introHidden = v })
	event.Subscribe(bus, event.ReticleHidden, func(v bool) { h.reticleHidden = v })
	event.Subscribe(bus, event.HitHidden, func(v bool) { h.hitHidden = v })
	event.Subscribe(bus, event.Ammo, func(v event.AmmoState) { h.ammo = v })
	event.Subscribe(bus, event.Score, func(v event.ScoreState) { h.score = v })
}

func (h *hud) draw(s tcell.Screen, w, hgt int) {
	if w <= 0 || hgt <= 0 {
		return
	}
	if !h.loadingHidden {
		drawCentered(s, w, hgt/2, "loading...", tcell.StyleDefault.Bold(true))
		return
	}

	cx, cy := w/2, hgt/2
	if !h.reticleHidden {
		s.SetContent(cx, cy, '+', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite))
	}
	if !h.hitHidden {
		s.SetContent(cx, cy, 'X', nil, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
	}

	ammo := fmt.Sprintf(" ammo %d/%d ", h.ammo.Current, h.ammo.Total)
	drawText(s, 0, hgt-1, ammo, tcell.StyleDefault.Reverse(true))
	score := fmt.Sprintf(" score %d  hits %d/%d ", h.score.Points, h.score.Hits, h.score.Shots)
	drawText(s, w-len(score), hgt-1, score, tcell.StyleDefault.Reverse(true))

	if !h.introHidden {
		drawCentered(s, w, cy+2, introText, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawCentered(s tcell.Screen, w, y int, text string, style tcell.Style) {
	drawText(s, max((w-len(text))/2, 0), y, text, style)
}
