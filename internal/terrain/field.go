package terrain

import (
	"log/slog"
	"math"
)

// HeightField maps a ground-plane coordinate to elevation. Implementations
// must be deterministic and free of side effects.
type HeightField interface {
	Height(x, z float64) float64
}

// Func adapts a plain function to HeightField.
type Func func(x, z float64) float64

func (f Func) Height(x, z float64) float64 {
	return f(x, z)
}

// Flat is a constant-elevation field.
type Flat struct {
	Level float64
}

func (f Flat) Height(_, _ float64) float64 {
	return f.Level
}

type Wave struct {
	Amplitude float64
	FreqX     float64
	FreqZ     float64
	Phase     float64
}

// Waves is a closed-form sum of sinusoids. The same function feeds mesh
// generation and live queries, so feet and rendered surface always agree.
type Waves struct {
	Base   float64
	Layers []Wave
}

func DefaultWaves() Waves {
	return Waves{
		Layers: []Wave{
			{Amplitude: 2.0, FreqX: 0.05, FreqZ: 0.05},
			{Amplitude: 0.8, FreqX: 0.13, FreqZ: 0.11, Phase: 1.3},
			{Amplitude: 0.3, FreqX: 0.31, FreqZ: 0.29, Phase: 0.7},
		},
	}
}

func (w Waves) Height(x, z float64) float64 {
	h := w.Base
	for _, l := range w.Layers {
		h += l.Amplitude * math.Sin(x*l.FreqX+l.Phase) * math.Cos(z*l.FreqZ+l.Phase)
	}
	return h
}

// Caster answers a vertical ray cast from above (x, z) against rendered geometry.
type Caster interface {
	CastDown(x, z float64) (float64, bool)
}

// Probed prefers the caster's hit and falls back to Base on a miss, a nil
// caster, a non-finite hit or a panicking caster.
type Probed struct {
	Base   HeightField
	Caster Caster
}

func (p Probed) Height(x, z float64) float64 {
	if h, ok := p.cast(x, z); ok {
		return h
	}
	if p.Base == nil {
		return 0
	}
	return p.Base.Height(x, z)
}

func (p Probed) cast(x, z float64) (h float64, ok bool) {
	if p.Caster == nil {
		return 0, false
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Terrain ray cast panicked, using base height", "x", x, "z", z, "panic", r)
			h, ok = 0, false
		}
	}()
	h, ok = p.Caster.CastDown(x, z)
	if !ok || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, false
	}
	return h, true
}

// HeightAt treats a nil field as flat ground at zero.
func HeightAt(field HeightField, x, z float64) float64 {
	if field == nil {
		return 0
	}
	return field.Height(x, z)
}
