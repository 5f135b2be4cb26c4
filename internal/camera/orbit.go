package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrbitParams mirror a damped orbit control: gestures add to a pending delta
// and each frame applies Damping of it.
type OrbitParams struct {
	Damping     float64
	MinDistance float64
	MaxDistance float64
	MinPolar    float64
	MaxPolar    float64
	RotateSpeed float64
	ZoomSpeed   float64
	PanSpeed    float64
}

func DefaultOrbitParams() OrbitParams {
	return OrbitParams{
		Damping:     0.05,
		MinDistance: 5,
		MaxDistance: 100,
		MinPolar:    0,
		MaxPolar:    math.Pi / 2,
		RotateSpeed: 0.4,
		ZoomSpeed:   0.6,
		PanSpeed:    0.8,
	}
}

// orbitState keeps the camera in spherical coordinates around target.
// polar is measured from +y, azimuth from +z towards +x.
type orbitState struct {
	target   mgl64.Vec3
	radius   float64
	polar    float64
	azimuth  float64
	dAzimuth float64
	dPolar   float64
	scale    float64
	panDelta mgl64.Vec3
}

func newOrbitState(from Pose, p OrbitParams) orbitState {
	off := from.Position.Sub(from.Target)
	radius := off.Len()
	s := orbitState{target: from.Target, radius: radius, scale: 1}
	if radius > 0 {
		s.polar = math.Acos(clamp(off.Y()/radius, -1, 1))
		s.azimuth = math.Atan2(off.X(), off.Z())
	}
	s.radius = clamp(s.radius, p.MinDistance, p.MaxDistance)
	s.polar = clamp(s.polar, p.MinPolar, p.MaxPolar)
	return s
}

func (s *orbitState) rotate(dAzimuth, dPolar float64, p OrbitParams) {
	s.dAzimuth += dAzimuth * p.RotateSpeed
	s.dPolar += dPolar * p.RotateSpeed
}

// zoom with positive steps moves closer.
func (s *orbitState) zoom(steps float64, p OrbitParams) {
	s.scale *= math.Pow(0.95, steps*p.ZoomSpeed)
}

func (s *orbitState) pan(right, forward float64, p OrbitParams) {
	r := mgl64.Vec3{math.Cos(s.azimuth), 0, -math.Sin(s.azimuth)}
	f := mgl64.Vec3{-math.Sin(s.azimuth), 0, -math.Cos(s.azimuth)}
	s.panDelta = s.panDelta.Add(r.Mul(right * p.PanSpeed)).Add(f.Mul(forward * p.PanSpeed))
}

func (s *orbitState) step(p OrbitParams) Pose {
	damping := p.Damping
	if damping <= 0 || damping > 1 {
		damping = 1
	}

	s.azimuth += s.dAzimuth * damping
	s.polar = clamp(s.polar+s.dPolar*damping, p.MinPolar, p.MaxPolar)
	s.radius = clamp(s.radius*s.scale, p.MinDistance, p.MaxDistance)
	s.target = s.target.Add(s.panDelta.Mul(damping))

	s.dAzimuth *= 1 - damping
	s.dPolar *= 1 - damping
	s.panDelta = s.panDelta.Mul(1 - damping)
	s.scale = 1

	sinP := math.Sin(s.polar)
	off := mgl64.Vec3{
		s.radius * sinP * math.Sin(s.azimuth),
		s.radius * math.Cos(s.polar),
		s.radius * sinP * math.Cos(s.azimuth),
	}
	return Pose{Position: s.target.Add(off), Target: s.target}
}
