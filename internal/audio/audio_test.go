package audio

import (
	"math"
	"testing"
	"time"

	"github.com/Versifine/knights/internal/event"
	"github.com/gopxl/beep"
)

// drain streams s to the end and returns the sample count and peak level.
func drain(t *testing.T, s beep.Streamer, limit int) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for total < limit {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
	t.Fatalf("stream did not end within %d samples", limit)
	return 0, 0
}

func TestSweepLength(t *testing.T) {
	rate := beep.SampleRate(8000)
	s := newSweep(440, 220, 100*time.Millisecond, WaveSine, rate)
	n, peak := drain(t, s, 10000)
	if n != rate.N(100*time.Millisecond) {
		t.Fatalf("streamed %d samples want %d", n, rate.N(100*time.Millisecond))
	}
	if peak > 1 || peak == 0 {
		t.Fatalf("peak=%v", peak)
	}
}

func TestSweepWavesInRange(t *testing.T) {
	rate := beep.SampleRate(8000)
	for _, w := range []Wave{WaveSine, WaveSaw, WaveNoise} {
		_, peak := drain(t, newSweep(300, 600, 50*time.Millisecond, w, rate), 10000)
		if peak > 1 {
			t.Fatalf("wave %d peak %v above 1", w, peak)
		}
	}
}

func TestCuesEnd(t *testing.T) {
	rate := beep.SampleRate(8000)
	tests := []struct {
		name string
		s    beep.Streamer
		max  time.Duration
	}{
		{"swing", Swing(rate, 1), swingDuration},
		{"zap", Zap(rate, 1), zapDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, peak := drain(t, tt.s, rate.N(time.Second))
			if n == 0 || n > rate.N(tt.max)+512 {
				t.Fatalf("streamed %d samples", n)
			}
			if peak == 0 || peak > 1 {
				t.Fatalf("peak=%v", peak)
			}
		})
	}
}

func TestSilentVolume(t *testing.T) {
	rate := beep.SampleRate(8000)
	_, peak := drain(t, Zap(rate, 0), rate.N(time.Second))
	if peak != 0 {
		t.Fatalf("muted cue peak=%v", peak)
	}
}

func TestPlayBeforeInitIsDropped(t *testing.T) {
	p := NewPlayer(DefaultParams())
	if p.Play(CueSwing) {
		t.Fatalf("Play before Init should be dropped")
	}
	if p.mixer.Len() != 0 {
		t.Fatalf("mixer has %d streamers", p.mixer.Len())
	}
}

func TestDisabledInitIsNoop(t *testing.T) {
	p := NewPlayer(Params{Enabled: false})
	if err := p.Init(); err != nil {
		t.Fatalf("Init() disabled: %v", err)
	}
	if p.Play(CueZap) {
		t.Fatalf("disabled player played a cue")
	}
}

func TestSubscribePlaysCues(t *testing.T) {
	p := NewPlayer(DefaultParams())
	p.ready = true

	bus := event.NewBus()
	p.Subscribe(bus)
	bus.Publish(event.EventAttackStart, &event.AttackEvent{Cycle: 1})
	bus.Publish(event.EventProjectileSpawn, &event.ProjectileEvent{})
	bus.Publish(event.EventEnemyLost, &event.EnemyEvent{})
	bus.Wait()

	if p.mixer.Len() != 2 {
		t.Fatalf("mixer has %d streamers want 2", p.mixer.Len())
	}
	if p.Play("gong") {
		t.Fatalf("unknown cue accepted")
	}

	p.Close()
	if p.mixer.Len() != 0 || p.Play(CueZap) {
		t.Fatalf("Close left the player live")
	}
}
