package combat

import (
	"log/slog"
	"time"

	"github.com/Versifine/knights/internal/asset"
	"github.com/Versifine/knights/internal/body"
	"github.com/Versifine/knights/internal/clock"
)

const (
	DefaultDuration        = 500 * time.Millisecond
	DefaultScaleMultiplier = 1.3
	DefaultImpactColor     = 0xff0000
)

type Params struct {
	Duration        time.Duration
	ScaleMultiplier float64
	ImpactColor     uint32
}

func DefaultParams() Params {
	return Params{
		Duration:        DefaultDuration,
		ScaleMultiplier: DefaultScaleMultiplier,
		ImpactColor:     DefaultImpactColor,
	}
}

// Snapshot is what an attack cycle must put back: the pre-attack scale and
// every part's original appearance, keyed by part id.
type Snapshot struct {
	Scale float64
	Parts []asset.Part
}

// Controller runs the one-shot attack effect. State only changes on a
// trigger and on the scheduled restore, never on the frame tick.
type Controller struct {
	params Params
	sched  *clock.Scheduler

	active *Snapshot
	cycles int

	OnStart func(a *body.Avatar, now time.Time)
	OnEnd   func(a *body.Avatar, now time.Time)
}

func NewController(params Params, sched *clock.Scheduler) *Controller {
	return &Controller{params: params, sched: sched}
}

// Trigger starts an attack cycle on a press edge. It returns false when the
// avatar is missing or a cycle is already in flight.
func (c *Controller) Trigger(a *body.Avatar, now time.Time) bool {
	if a == nil {
		return false
	}
	if c.active != nil {
		slog.Debug("Attack ignored, cycle in flight", "cycle", c.cycles)
		return false
	}

	snap := &Snapshot{Scale: a.Scale, Parts: a.Parts()}
	c.active = snap
	c.cycles++

	a.Scale *= c.params.ScaleMultiplier
	for _, p := range snap.Parts {
		a.SetAppearance(p.ID, asset.Appearance{Color: c.params.ImpactColor, Opacity: p.Opacity})
	}
	a.Attack = body.Attacking
	slog.Debug("Attack started", "cycle", c.cycles, "parts", len(snap.Parts))
	if c.OnStart != nil {
		c.OnStart(a, now)
	}

	c.sched.After(now, c.params.Duration, "attack.restore", func(at time.Time) {
		c.restore(a, snap, at)
	})
	return true
}

func (c *Controller) restore(a *body.Avatar, snap *Snapshot, now time.Time) {
	if c.active != snap {
		return
	}
	a.Scale = snap.Scale
	for _, p := range snap.Parts {
		a.SetAppearance(p.ID, p.Appearance)
	}
	a.Attack = body.Idle
	c.active = nil
	slog.Debug("Attack ended", "cycle", c.cycles)
	if c.OnEnd != nil {
		c.OnEnd(a, now)
	}
}

func (c *Controller) Active() bool {
	return c.active != nil
}

// Cycles counts attack cycles started so far.
func (c *Controller) Cycles() int {
	return c.cycles
}
