package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

type Wave int

const (
	WaveSine Wave = iota
	WaveSaw
	WaveNoise
)

// sweep is an oscillator whose frequency glides linearly from one value to
// another over its duration.
type sweep struct {
	from, to float64
	wave     Wave
	rate     beep.SampleRate
	total    int
	pos      int
	phase    float64
	rng      *rand.Rand
}

func newSweep(from, to float64, d time.Duration, wave Wave, rate beep.SampleRate) *sweep {
	return &sweep{
		from:  from,
		to:    to,
		wave:  wave,
		rate:  rate,
		total: rate.N(d),
		rng:   rand.New(rand.NewPCG(uint64(from), uint64(to))),
	}
}

func (s *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.pos >= s.total {
			return i, i > 0
		}
		var v float64
		switch s.wave {
		case WaveSaw:
			v = 2 * (s.phase - 0.5)
		case WaveNoise:
			v = s.rng.Float64()*2 - 1
		default:
			v = math.Sin(2 * math.Pi * s.phase)
		}
		samples[i][0], samples[i][1] = v, v

		progress := float64(s.pos) / float64(s.total)
		freq := s.from + (s.to-s.from)*progress
		s.phase += freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.pos++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// decay fades its streamer out exponentially; k is the decay per second.
type decay struct {
	streamer beep.Streamer
	rate     beep.SampleRate
	k        float64
	pos      int
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := math.Exp(-d.k * float64(d.pos) / float64(d.rate))
		samples[i][0] *= g
		samples[i][1] *= g
		d.pos++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

const (
	swingDuration = 180 * time.Millisecond
	zapDuration   = 140 * time.Millisecond
)

// Swing is the attack cue: a falling whoosh of filtered noise over a low tone.
func Swing(rate beep.SampleRate, vol float64) beep.Streamer {
	noise := &decay{streamer: newSweep(0, 0, swingDuration, WaveNoise, rate), rate: rate, k: 14}
	body := &decay{streamer: newSweep(220, 90, swingDuration, WaveSine, rate), rate: rate, k: 10}
	return withVolume(beep.Mix(withVolume(noise, 0.35), withVolume(body, 0.65)), vol)
}

// Zap is the fire cue: a fast downward saw chirp.
func Zap(rate beep.SampleRate, vol float64) beep.Streamer {
	chirp := &decay{streamer: newSweep(1400, 300, zapDuration, WaveSaw, rate), rate: rate, k: 18}
	return withVolume(chirp, vol*0.5)
}
