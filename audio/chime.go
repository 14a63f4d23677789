// Package audio plays short tones for arrival and stuck events
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/pedsim/engine"
)

const (
	SampleRate = beep.SampleRate(44100)

	ArrivalFreq = 880.0
	StuckFreq   = 220.0
	toneLength  = 60 * time.Millisecond
	minGap      = 40 * time.Millisecond // Wall time between tones, bursts collapse into one
)

// Tone returns a sine of freq Hz lasting d at volume (log2 scale, 0 is full scale)
func Tone(rate beep.SampleRate, freq float64, d time.Duration, volume float64) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, fmt.Errorf("failed to create %.0fHz tone: %w", freq, err)
	}
	return &effects.Volume{Streamer: beep.Take(rate.N(d), sine), Base: 2, Volume: volume}, nil
}

// Chime plays event tones on the system speaker
type Chime struct {
	mu   sync.Mutex
	last time.Time
	play func(beep.Streamer)

	Played  int
	Skipped int
}

// NewChime initializes the speaker, failure means no audio device
func NewChime() (*Chime, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("speaker init failed: %w", err)
	}
	return &Chime{play: func(s beep.Streamer) { speaker.Play(s) }}, nil
}

// newChimeWith plays through fn instead of the speaker
func newChimeWith(fn func(beep.Streamer)) *Chime {
	return &Chime{play: fn}
}

// Ring plays a tone unless one started less than minGap ago
func (c *Chime) Ring(freq float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if !c.last.IsZero() && now.Sub(c.last) < minGap {
		c.Skipped++
		return
	}
	tone, err := Tone(SampleRate, freq, toneLength, -1.5)
	if err != nil {
		engine.Logf("audio: %v", err)
		return
	}
	c.last = now
	c.Played++
	c.play(tone)
}

func (c *Chime) EventTypes() []engine.EventType {
	return []engine.EventType{engine.EventArrival, engine.EventStuck}
}

func (c *Chime) HandleEvent(_ *engine.World, ev engine.Event) {
	switch ev.Type {
	case engine.EventArrival:
		c.Ring(ArrivalFreq)
	case engine.EventStuck:
		c.Ring(StuckFreq)
	}
}

// Close stops playback
func (c *Chime) Close() {
	speaker.Clear()
}
