package audio

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

type wave uint8

const (
	waveSine wave = iota
	waveSquare
	waveNoise
)

// tone is a single decaying oscillator burst.
type tone struct {
	wave     wave
	freq     float64
	duration time.Duration
	decay    float64 // exponential decay rate per second
}

// Synth is a Bank that synthesizes every cue procedurally and plays it
// through the system speaker.
type Synth struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	volume  float64
	mixer   *beep.Mixer
	sounds  map[string][]tone
	rng     *rand.Rand
	started bool
	log     *zap.Logger
}

func NewSynth(sampleRate int, volume float64, log *zap.Logger) *Synth {
	s := &Synth{
		rate:   beep.SampleRate(sampleRate),
		volume: volume,
		mixer:  &beep.Mixer{},
		sounds: make(map[string][]tone, 3+ImpactCues),
		rng:    rand.New(rand.NewSource(1)),
		log:    log,
	}
	s.sounds[CueShot] = []tone{{wave: waveNoise, duration: 90 * time.Millisecond, decay: 40}}
	s.sounds[CueEmpty] = []tone{{wave: waveSquare, freq: 1200, duration: 15 * time.Millisecond, decay: 200}}
	s.sounds[CueReload] = []tone{
		{wave: waveSquare, freq: 600, duration: 30 * time.Millisecond, decay: 120},
		{duration: 150 * time.Millisecond},
		{wave: waveSquare, freq: 900, duration: 30 * time.Millisecond, decay: 120},
	}
	for i := 1; i <= ImpactCues; i++ {
		s.sounds[ImpactCue(i)] = []tone{
			{wave: waveSine, freq: 140 + float64(i)*35, duration: 70 * time.Millisecond, decay: 60},
		}
	}
	return s
}

// Start opens the speaker. Failing to open it is not fatal for the caller:
// cues simply stay silent.
func (s *Synth) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := speaker.Init(s.rate, s.rate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(s.mixer)
	s.started = true
	return nil
}

// Close stops playback and releases the speaker.
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	speaker.Clear()
	speaker.Close()
	s.started = false
}

func (s *Synth) Cue(name string) Cue {
	if _, ok := s.sounds[name]; !ok {
		return silentCue{}
	}
	return synthCue{s: s, name: name}
}

type synthCue struct {
	s    *Synth
	name string
}

func (c synthCue) Play() { c.s.play(c.name) }

func (s *Synth) play(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	st := s.streamer(name)
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
	s.log.Debug("cue", zap.String("name", name))
}

// streamer builds a fresh stream for the named cue. Caller holds s.mu.
func (s *Synth) streamer(name string) beep.Streamer {
	tones := s.sounds[name]
	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		if t.freq == 0 && t.wave != waveNoise {
			parts = append(parts, beep.Silence(s.rate.N(t.duration)))
			continue
		}
		parts = append(parts, s.burst(t))
	}
	return volume(beep.Seq(parts...), s.volume)
}

func (s *Synth) burst(t tone) beep.Streamer {
	total := s.rate.N(t.duration)
	pos := 0
	phase := 0.0
	rng := rand.New(rand.NewSource(s.rng.Int63()))
	step := t.freq / float64(s.rate)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			var v float64
			switch t.wave {
			case waveSine:
				v = math.Sin(2 * math.Pi * phase)
			case waveSquare:
				if phase < 0.5 {
					v = 1
				} else {
					v = -1
				}
			case waveNoise:
				v = rng.Float64()*2 - 1
			}
			env := math.Exp(-t.decay * float64(pos) / float64(s.rate))
			samples[i][0] = v * env
			samples[i][1] = v * env
			phase += step
			phase -= math.Floor(phase)
			pos++
			n++
		}
		return n, true
	})
}

// volume scales s linearly; beep's Volume effect works in log space.
func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}
