package camera

import (
	"fmt"
	"math"

	"github.com/Versifine/knights/internal/body"
	"github.com/Versifine/knights/internal/physics"
	"github.com/Versifine/knights/internal/terrain"
	"github.com/go-gl/mathgl/mgl64"
)

type Mode string

const (
	ModeFollow Mode = "follow"
	ModeOrbit  Mode = "orbit"
)

func (m Mode) Valid() bool {
	return m == ModeFollow || m == ModeOrbit
}

// Pose is where the camera sits and what it looks at.
type Pose struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

// View returns the world-to-camera matrix for a y-up world.
func (p Pose) View() mgl64.Mat4 {
	return mgl64.LookAtV(p.Position, p.Target, mgl64.Vec3{0, 1, 0})
}

func (p Pose) String() string {
	return fmt.Sprintf("eye=(%.2f,%.2f,%.2f) at=(%.2f,%.2f,%.2f)",
		p.Position.X(), p.Position.Y(), p.Position.Z(),
		p.Target.X(), p.Target.Y(), p.Target.Z())
}

// FollowParams place the camera Height above and Distance behind the avatar.
// With Relative unset "behind" is world +z, otherwise it turns with the avatar.
type FollowParams struct {
	Height     float64
	Distance   float64
	Smoothing  float64
	LookLift   float64
	FootOffset float64
	Relative   bool
	Stabilize  bool
}

func DefaultFollowParams() FollowParams {
	return FollowParams{
		Height:    15,
		Distance:  20,
		Smoothing: 0.05,
		LookLift:  2,
	}
}

type Params struct {
	Mode   Mode
	Start  Pose
	Follow FollowParams
	Orbit  OrbitParams
}

func DefaultParams() Params {
	return Params{
		Mode: ModeFollow,
		Start: Pose{
			Position: mgl64.Vec3{15, 20, 25},
			Target:   mgl64.Vec3{0, 2, 0},
		},
		Follow: DefaultFollowParams(),
		Orbit:  DefaultOrbitParams(),
	}
}

// Rig is long-lived: it re-reads the avatar pose on every Update instead of
// caching a reference to the avatar.
type Rig struct {
	params Params
	field  terrain.HeightField
	mode   Mode
	pose   Pose
	orbit  orbitState
}

func NewRig(params Params, field terrain.HeightField) *Rig {
	mode := params.Mode
	if !mode.Valid() {
		mode = ModeFollow
	}
	r := &Rig{params: params, field: field, mode: mode, pose: params.Start}
	r.orbit = newOrbitState(params.Start, params.Orbit)
	return r
}

func (r *Rig) Mode() Mode {
	return r.mode
}

// SetMode switches modes. Entering orbit re-centres the orbit on the current
// look-at target so the view does not jump.
func (r *Rig) SetMode(m Mode) bool {
	if !m.Valid() {
		return false
	}
	if m == ModeOrbit && r.mode != ModeOrbit {
		r.orbit = newOrbitState(r.pose, r.params.Orbit)
	}
	r.mode = m
	return true
}

func (r *Rig) Pose() Pose {
	return r.pose
}

// Update advances the camera by one frame. avatar may be nil before the
// avatar has loaded; follow mode then holds still.
func (r *Rig) Update(avatar *body.Pose) Pose {
	switch r.mode {
	case ModeOrbit:
		r.pose = r.orbit.step(r.params.Orbit)
	default:
		if avatar != nil {
			r.pose = r.follow(*avatar)
		}
	}
	return r.pose
}

func (r *Rig) follow(avatar body.Pose) Pose {
	fp := r.params.Follow
	anchor := avatar.Position
	if fp.Stabilize {
		anchor[1] = terrain.HeightAt(r.field, anchor.X(), anchor.Z()) + fp.FootOffset
	}

	behind := mgl64.Vec3{0, 0, 1}
	if fp.Relative {
		behind = physics.Heading(avatar.Yaw).Mul(-1)
	}
	desired := anchor.Add(behind.Mul(fp.Distance)).Add(mgl64.Vec3{0, fp.Height, 0})

	pos := lerp(r.pose.Position, desired, fp.Smoothing)
	target := anchor.Add(mgl64.Vec3{0, fp.LookLift, 0})
	return Pose{Position: pos, Target: target}
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Orbit, Zoom and Pan feed user gestures into orbit mode; they are ignored
// while following.
func (r *Rig) Orbit(dAzimuth, dPolar float64) {
	if r.mode != ModeOrbit {
		return
	}
	r.orbit.rotate(dAzimuth, dPolar, r.params.Orbit)
}

func (r *Rig) Zoom(steps float64) {
	if r.mode != ModeOrbit {
		return
	}
	r.orbit.zoom(steps, r.params.Orbit)
}

func (r *Rig) Pan(right, forward float64) {
	if r.mode != ModeOrbit {
		return
	}
	r.orbit.pan(right, forward, r.params.Orbit)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
