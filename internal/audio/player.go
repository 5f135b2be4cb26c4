package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Versifine/knights/internal/event"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

type Cue string

const (
	CueSwing Cue = "swing"
	CueZap   Cue = "zap"
)

type Params struct {
	Enabled    bool
	SampleRate int
	Volume     float64
}

func DefaultParams() Params {
	return Params{Enabled: true, SampleRate: 44100, Volume: 0.6}
}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Player mixes one-shot cues into the speaker. Until Init succeeds every Play
// is dropped, so a machine without an audio device still runs.
type Player struct {
	params Params
	rate   beep.SampleRate
	mixer  *beep.Mixer

	mu    sync.Mutex
	lock  sync.Locker
	ready bool
}

func NewPlayer(params Params) *Player {
	if params.SampleRate <= 0 {
		params.SampleRate = DefaultParams().SampleRate
	}
	return &Player{
		params: params,
		rate:   beep.SampleRate(params.SampleRate),
		mixer:  &beep.Mixer{},
		lock:   &sync.Mutex{},
	}
}

func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready || !p.params.Enabled {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.lock = speakerLock{}
	p.ready = true
	return nil
}

func (p *Player) Play(cue Cue) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return false
	}

	var s beep.Streamer
	switch cue {
	case CueSwing:
		s = Swing(p.rate, p.params.Volume)
	case CueZap:
		s = Zap(p.rate, p.params.Volume)
	default:
		slog.Warn("Unknown audio cue", "cue", cue)
		return false
	}

	p.lock.Lock()
	p.mixer.Add(s)
	p.lock.Unlock()
	return true
}

// Subscribe plays the swing on every attack and the zap on every shot.
func (p *Player) Subscribe(bus *event.Bus) {
	event.On(bus, event.EventAttackStart, func(*event.AttackEvent) { p.Play(CueSwing) })
	event.On(bus, event.EventProjectileSpawn, func(*event.ProjectileEvent) { p.Play(CueZap) })
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return
	}
	p.lock.Lock()
	p.mixer.Clear()
	p.lock.Unlock()
	p.ready = false
}
