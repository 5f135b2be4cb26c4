package body

import (
	"fmt"

	"github.com/Versifine/knights/internal/asset"
	"github.com/go-gl/mathgl/mgl64"
)

type AttackState uint8

const (
	Idle AttackState = iota
	Attacking
)

func (s AttackState) String() string {
	if s == Attacking {
		return "attacking"
	}
	return "idle"
}

// Pose is the read-only view of the avatar consumed by the camera, the
// projectile spawner and the render step.
type Pose struct {
	Position mgl64.Vec3
	Yaw      float64
	Scale    float64
}

func (p Pose) String() string {
	return fmt.Sprintf("pos=(%.2f,%.2f,%.2f) yaw=%.3f scale=%.2f",
		p.Position.X(), p.Position.Y(), p.Position.Z(), p.Yaw, p.Scale)
}

// Avatar is the player-controlled entity. It is owned by the simulation tick
// and never shared across goroutines.
type Avatar struct {
	Position mgl64.Vec3
	Yaw      float64
	Scale    float64
	Attack   AttackState
	Ref      string
	Fallback bool

	parts []asset.Part
}

func New(r *asset.Renderable, position mgl64.Vec3, scale float64) *Avatar {
	a := &Avatar{
		Position: position,
		Scale:    scale,
	}
	if r != nil {
		a.Ref = r.Ref
		a.Fallback = r.Fallback
		a.parts = append([]asset.Part(nil), r.Parts...)
	}
	return a
}

func (a *Avatar) Pose() Pose {
	if a == nil {
		return Pose{}
	}
	return Pose{Position: a.Position, Yaw: a.Yaw, Scale: a.Scale}
}

// Parts returns a copy of the visible parts and their current appearance.
func (a *Avatar) Parts() []asset.Part {
	if a == nil {
		return nil
	}
	return append([]asset.Part(nil), a.parts...)
}

func (a *Avatar) Appearance(id string) (asset.Appearance, bool) {
	if a == nil {
		return asset.Appearance{}, false
	}
	for _, p := range a.parts {
		if p.ID == id {
			return p.Appearance, true
		}
	}
	return asset.Appearance{}, false
}

// SetAppearance replaces the appearance of part id and reports whether it exists.
func (a *Avatar) SetAppearance(id string, app asset.Appearance) bool {
	if a == nil {
		return false
	}
	for i := range a.parts {
		if a.parts[i].ID == id {
			a.parts[i].Appearance = app
			return true
		}
	}
	return false
}

