package enemy

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/Versifine/knights/internal/asset"
	"github.com/Versifine/knights/internal/physics"
	"github.com/Versifine/knights/internal/terrain"
	"github.com/go-gl/mathgl/mgl64"
)

type State string

const (
	StatePatrol    State = "patrol"
	StateFollowing State = "following"
	StateIdle      State = "idle"
)

type Params struct {
	Count             int
	DetectionDistance float64
	FollowDistance    float64
	ChaseSpeed        float64
	PatrolSpeed       float64
	SpawnBound        float64
	PatrolMin         float64
	PatrolMax         float64
	ArriveDistance    float64
	HeightOffset      float64
	Scale             float64
}

func DefaultParams() Params {
	return Params{
		Count:             5,
		DetectionDistance: 15,
		FollowDistance:    20,
		ChaseSpeed:        0.1,
		PatrolSpeed:       0.05,
		SpawnBound:        80,
		PatrolMin:         5,
		PatrolMax:         20,
		ArriveDistance:    2,
		HeightOffset:      3,
		Scale:             2.5,
	}
}

type Enemy struct {
	ID           int
	Position     mgl64.Vec3
	Yaw          float64
	Scale        float64
	State        State
	Origin       mgl64.Vec3
	PatrolTarget mgl64.Vec3
	LastSeen     mgl64.Vec3
	Renderable   *asset.Renderable
}

func (e Enemy) String() string {
	return fmt.Sprintf("#%d %s pos=(%.1f,%.1f)", e.ID, e.State, e.Position.X(), e.Position.Z())
}

// Manager runs the patrol/chase AI. Distances are measured in the ground
// plane since enemies float HeightOffset above the terrain.
type Manager struct {
	params  Params
	field   terrain.HeightField
	rng     *rand.Rand
	enemies []*Enemy
	nextID  int

	OnSpotted func(e Enemy)
	OnLost    func(e Enemy)
}

// NewManager uses rng for spawn points and patrol targets. A nil rng draws
// from an unseeded source.
func NewManager(params Params, field terrain.HeightField, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Manager{params: params, field: field, rng: rng}
}

// Spawn places an enemy wearing r at a random point inside the spawn bound.
func (m *Manager) Spawn(r *asset.Renderable) *Enemy {
	b := m.params.SpawnBound
	x := (m.rng.Float64() - 0.5) * 2 * b
	z := (m.rng.Float64() - 0.5) * 2 * b
	m.nextID++
	e := &Enemy{
		ID:         m.nextID,
		Position:   mgl64.Vec3{x, 0, z},
		Scale:      m.params.Scale,
		State:      StatePatrol,
		Origin:     mgl64.Vec3{x, 0, z},
		Renderable: r,
	}
	e.PatrolTarget = m.patrolTarget(e.Origin)
	m.settle(e)
	m.enemies = append(m.enemies, e)
	slog.Debug("Enemy spawned", "id", e.ID, "x", x, "z", z)
	return e
}

func (m *Manager) patrolTarget(center mgl64.Vec3) mgl64.Vec3 {
	angle := m.rng.Float64() * 2 * math.Pi
	dist := m.params.PatrolMin + m.rng.Float64()*(m.params.PatrolMax-m.params.PatrolMin)
	b := physics.Square(m.params.SpawnBound)
	x, z := b.Clamp(center.X()+math.Cos(angle)*dist, center.Z()+math.Sin(angle)*dist)
	return mgl64.Vec3{x, 0, z}
}

// Update runs one frame of AI and movement. player is nil until the avatar
// exists; enemies keep patrolling meanwhile.
func (m *Manager) Update(player *mgl64.Vec3) {
	for _, e := range m.enemies {
		if player != nil {
			m.think(e, *player)
		}
		m.move(e)
	}
}

func (m *Manager) think(e *Enemy, player mgl64.Vec3) {
	if e.State == StateIdle {
		return
	}
	d := planarDistance(e.Position, player)

	if d <= m.params.DetectionDistance && e.State != StateFollowing {
		e.State = StateFollowing
		slog.Info("Enemy spotted player", "id", e.ID, "distance", d)
		if m.OnSpotted != nil {
			m.OnSpotted(*e)
		}
	}
	if d > m.params.FollowDistance && e.State == StateFollowing {
		e.State = StatePatrol
		e.PatrolTarget = m.patrolTarget(e.Origin)
		slog.Info("Enemy lost player", "id", e.ID, "distance", d)
		if m.OnLost != nil {
			m.OnLost(*e)
		}
	}

	switch e.State {
	case StateFollowing:
		e.LastSeen = player
	case StatePatrol:
		if planarDistance(e.Position, e.PatrolTarget) < m.params.ArriveDistance {
			e.PatrolTarget = m.patrolTarget(e.Origin)
		}
	}
}

func (m *Manager) move(e *Enemy) {
	var target mgl64.Vec3
	var speed float64
	switch e.State {
	case StateFollowing:
		target, speed = e.LastSeen, m.params.ChaseSpeed
	case StatePatrol:
		target, speed = e.PatrolTarget, m.params.PatrolSpeed
	default:
		m.settle(e)
		return
	}

	dx, dz := target.X()-e.Position.X(), target.Z()-e.Position.Z()
	length := math.Hypot(dx, dz)
	if length > 0 {
		nx, nz := e.Position.X()+dx/length*speed, e.Position.Z()+dz/length*speed
		if physics.Square(m.params.SpawnBound).Contains(nx, nz) {
			e.Position[0], e.Position[2] = nx, nz
			e.Yaw = physics.YawOf(dx, dz)
		}
	}
	m.settle(e)
}

func (m *Manager) settle(e *Enemy) {
	e.Position[1] = terrain.HeightAt(m.field, e.Position.X(), e.Position.Z()) + m.params.HeightOffset
}

// SetState forces every enemy into s, e.g. idle to freeze the field.
func (m *Manager) SetState(s State) {
	for _, e := range m.enemies {
		if e.State == s {
			continue
		}
		e.State = s
		switch s {
		case StatePatrol:
			e.PatrolTarget = m.patrolTarget(e.Origin)
		case StateFollowing:
			// hold position until the player is next seen
			e.LastSeen = e.Position
		}
	}
}

func (m *Manager) Enemies() []Enemy {
	out := make([]Enemy, 0, len(m.enemies))
	for _, e := range m.enemies {
		out = append(out, *e)
	}
	return out
}

func (m *Manager) Len() int {
	return len(m.enemies)
}

func (m *Manager) Clear() {
	m.enemies = nil
}

func planarDistance(a, b mgl64.Vec3) float64 {
	return math.Hypot(a.X()-b.X(), a.Z()-b.Z())
}
