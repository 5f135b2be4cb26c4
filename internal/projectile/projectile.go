package projectile

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Versifine/knights/internal/asset"
	"github.com/Versifine/knights/internal/body"
	"github.com/Versifine/knights/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const (
	DefaultSpeed       = 1.5
	DefaultSpawnOffset = 1.5
	DefaultTimeout     = 4 * time.Second
)

type Params struct {
	Speed       float64
	SpawnOffset float64
	Timeout     time.Duration
	Bounds      physics.Bounds
}

func DefaultParams() Params {
	return Params{
		Speed:       DefaultSpeed,
		SpawnOffset: DefaultSpawnOffset,
		Timeout:     DefaultTimeout,
		Bounds:      physics.Square(physics.DefaultWorldBound),
	}
}

// Projectile flies along the heading it was fired with. Renderable stays nil
// until the asset loader resolves it; the simulation does not wait for it.
type Projectile struct {
	ID         uuid.UUID
	Position   mgl64.Vec3
	Direction  mgl64.Vec3
	Speed      float64
	SpawnedAt  time.Time
	Renderable *asset.Renderable
}

func (p *Projectile) Age(now time.Time) time.Duration {
	return now.Sub(p.SpawnedAt)
}

func (p *Projectile) String() string {
	return fmt.Sprintf("%s pos=(%.2f,%.2f,%.2f) dir=(%.2f,%.2f)",
		p.ID.String()[:8], p.Position.X(), p.Position.Y(), p.Position.Z(), p.Direction.X(), p.Direction.Z())
}

// Manager owns the live set. It is driven from the tick goroutine only.
type Manager struct {
	params Params
	live   []*Projectile
}

func NewManager(params Params) *Manager {
	return &Manager{params: params}
}

func (m *Manager) Params() Params {
	return m.params
}

// Spawn appends a projectile in front of origin, travelling along the
// origin's facing. A non-positive speed uses the configured one.
func (m *Manager) Spawn(origin body.Pose, speed float64, now time.Time) *Projectile {
	if speed <= 0 {
		speed = m.params.Speed
	}
	dir := physics.Heading(origin.Yaw)
	p := &Projectile{
		ID:        uuid.New(),
		Position:  origin.Position.Add(dir.Mul(m.params.SpawnOffset)),
		Direction: dir,
		Speed:     speed,
		SpawnedAt: now,
	}
	m.live = append(m.live, p)
	slog.Debug("Projectile spawned", "id", p.ID, "yaw", origin.Yaw, "live", len(m.live))
	return p
}

// Attach hands a resolved renderable to a projectile that may already be gone.
func (m *Manager) Attach(id uuid.UUID, r *asset.Renderable) bool {
	for _, p := range m.live {
		if p.ID == id {
			p.Renderable = r
			return true
		}
	}
	return false
}

// Advance moves every live projectile one frame along its direction.
func (m *Manager) Advance() {
	for _, p := range m.live {
		p.Position = p.Position.Add(p.Direction.Mul(p.Speed))
	}
}

// Retire drops projectiles past their timeout or outside the bounds and
// returns them. The survivors keep their order.
func (m *Manager) Retire(now time.Time) []*Projectile {
	var retired []*Projectile
	kept := m.live[:0]
	for _, p := range m.live {
		if m.expired(p, now) {
			retired = append(retired, p)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(m.live); i++ {
		m.live[i] = nil
	}
	m.live = kept
	return retired
}

func (m *Manager) expired(p *Projectile, now time.Time) bool {
	if p.Age(now) > m.params.Timeout {
		return true
	}
	return !m.params.Bounds.Contains(p.Position.X(), p.Position.Z())
}

// Live returns copies of the live projectiles.
func (m *Manager) Live() []Projectile {
	out := make([]Projectile, 0, len(m.live))
	for _, p := range m.live {
		out = append(out, *p)
	}
	return out
}

func (m *Manager) Len() int {
	return len(m.live)
}
