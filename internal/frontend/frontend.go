package frontend

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/Versifine/knights/internal/game"
	"github.com/Versifine/knights/internal/input"
	"github.com/go-gl/mathgl/mgl64"
)

// Sim is the part of a game session every frontend drives.
type Sim interface {
	OnKeyEdge(a input.Action, pressed bool)
	Tick(dt time.Duration)
	Snapshot() game.Snapshot
}

// GroundSource is implemented by sims whose terrain has rendered geometry.
type GroundSource interface {
	Ground() []mgl64.Vec3
}

// EdgeSink receives synthesized key edges.
type EdgeSink interface {
	OnKeyEdge(a input.Action, pressed bool)
}

// Opposite returns the action that cancels a, if any.
func Opposite(a input.Action) (input.Action, bool) {
	switch a {
	case input.Forward:
		return input.Backward, true
	case input.Backward:
		return input.Forward, true
	case input.Left:
		return input.Right, true
	case input.Right:
		return input.Left, true
	}
	return 0, false
}

// Pulser turns key presses from hosts without key-up events into held
// actions that release themselves after a fixed width. Movement presses
// extend the hold and drop the opposite direction; attack and fire presses
// always produce a fresh press edge.
type Pulser struct {
	sink  EdgeSink
	width time.Duration

	mu    sync.Mutex
	until map[input.Action]time.Time
}

func NewPulser(sink EdgeSink, width time.Duration) *Pulser {
	return &Pulser{sink: sink, width: width, until: make(map[input.Action]time.Time)}
}

func (p *Pulser) Press(a input.Action, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if opp, ok := Opposite(a); ok {
		if _, held := p.until[opp]; held {
			delete(p.until, opp)
			p.sink.OnKeyEdge(opp, false)
		}
	}

	_, held := p.until[a]
	if held && (a == input.Attack || a == input.Fire) {
		p.sink.OnKeyEdge(a, false)
		held = false
	}
	if !held {
		p.sink.OnKeyEdge(a, true)
	}
	p.until[a] = now.Add(p.width)
}

// Expire releases every action whose hold ran out and reports how many.
func (p *Pulser) Expire(now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, a := range input.Actions() {
		until, ok := p.until[a]
		if ok && !now.Before(until) {
			delete(p.until, a)
			p.sink.OnKeyEdge(a, false)
			n++
		}
	}
	return n
}

func (p *Pulser) ReleaseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range input.Actions() {
		if _, ok := p.until[a]; ok {
			delete(p.until, a)
			p.sink.OnKeyEdge(a, false)
		}
	}
}

func (p *Pulser) Held(a input.Action) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.until[a]
	return ok
}

// Loop ticks sim at rate frames per second until ctx ends, calling frame
// after each tick. before, if set, runs ahead of every tick.
func Loop(ctx context.Context, sim Sim, rate int, before func(now time.Time), frame func(game.Snapshot)) {
	if rate <= 0 {
		rate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Frame loop stopped")
			return
		case now := <-ticker.C:
			if before != nil {
				before(now)
			}
			sim.Tick(now.Sub(last))
			last = now
			if frame != nil {
				frame(sim.Snapshot())
			}
		}
	}
}

// Projector maps the world square [-Bound, Bound]² onto a W×H grid seen from
// above, with -z (forward) pointing up the screen.
type Projector struct {
	Bound float64
	W, H  int
}

func (p Projector) ToScreen(x, z float64) (col, row int, ok bool) {
	if p.Bound <= 0 || p.W <= 0 || p.H <= 0 {
		return 0, 0, false
	}
	u := (x + p.Bound) / (2 * p.Bound)
	v := (z + p.Bound) / (2 * p.Bound)
	col = int(math.Floor(u * float64(p.W)))
	row = int(math.Floor(v * float64(p.H)))
	if col == p.W && u <= 1 {
		col--
	}
	if row == p.H && v <= 1 {
		row--
	}
	ok = col >= 0 && col < p.W && row >= 0 && row < p.H
	return col, row, ok
}

// ToWorld returns the world point at the centre of cell (col, row).
func (p Projector) ToWorld(col, row int) (x, z float64) {
	x = (float64(col)+0.5)/float64(p.W)*2*p.Bound - p.Bound
	z = (float64(row)+0.5)/float64(p.H)*2*p.Bound - p.Bound
	return x, z
}

// HeadingGlyph picks an arrow for a yaw, where yaw 0 faces up the screen.
func HeadingGlyph(yaw float64) rune {
	glyphs := []rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}
	i := int(math.Round(yaw/(math.Pi/4))) % 8
	if i < 0 {
		i += 8
	}
	return glyphs[i]
}

// GroundShade buckets ground vertices into the projector's cells and returns
// each cell's mean height scaled to [0, 1], row-major. Cells no vertex falls
// in hold -1.
func GroundShade(samples []mgl64.Vec3, p Projector) []float64 {
	if p.W <= 0 || p.H <= 0 {
		return nil
	}
	sum := make([]float64, p.W*p.H)
	count := make([]int, p.W*p.H)
	for _, v := range samples {
		col, row, ok := p.ToScreen(v.X(), v.Z())
		if !ok {
			continue
		}
		sum[row*p.W+col] += v.Y()
		count[row*p.W+col]++
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, n := range count {
		if n == 0 {
			continue
		}
		sum[i] /= float64(n)
		lo = math.Min(lo, sum[i])
		hi = math.Max(hi, sum[i])
	}
	for i, n := range count {
		switch {
		case n == 0:
			sum[i] = -1
		case hi > lo:
			sum[i] = (sum[i] - lo) / (hi - lo)
		default:
			sum[i] = 0
		}
	}
	return sum
}
