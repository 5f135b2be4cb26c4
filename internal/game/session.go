package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Versifine/knights/internal/asset"
	"github.com/Versifine/knights/internal/body"
	"github.com/Versifine/knights/internal/camera"
	"github.com/Versifine/knights/internal/clock"
	"github.com/Versifine/knights/internal/combat"
	"github.com/Versifine/knights/internal/enemy"
	"github.com/Versifine/knights/internal/event"
	"github.com/Versifine/knights/internal/input"
	"github.com/Versifine/knights/internal/logger"
	"github.com/Versifine/knights/internal/physics"
	"github.com/Versifine/knights/internal/projectile"
	"github.com/Versifine/knights/internal/terrain"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type Params struct {
	Movement   physics.Params
	Combat     combat.Params
	Projectile projectile.Params
	Camera     camera.Params
	Enemies    enemy.Params

	AvatarScale   float64
	AvatarRef     string
	ProjectileRef string
	EnemyRef      string
	Workers       int
}

func DefaultParams() Params {
	return Params{
		Movement:      physics.DefaultParams(),
		Combat:        combat.DefaultParams(),
		Projectile:    projectile.DefaultParams(),
		Camera:        camera.DefaultParams(),
		Enemies:       enemy.DefaultParams(),
		AvatarScale:   1.2,
		AvatarRef:     "knight.yaml",
		ProjectileRef: "bolt.yaml",
		EnemyRef:      "ross.yaml",
		Workers:       4,
	}
}

// Deps are the collaborators a session talks to. Zero values get the real
// clock, no assets (every acquisition falls back) and no event bus.
type Deps struct {
	Clock  clock.Clock
	Source asset.Source
	Bus    *event.Bus
	Rand   *rand.Rand
}

// Session is the whole simulation: one avatar, its projectiles, the enemies
// and the camera. Every public method takes the session lock, so frontends
// may deliver input from their own goroutines while another drives Tick.
type Session struct {
	mu sync.Mutex

	params Params
	field  terrain.HeightField
	clock  clock.Clock
	sched  *clock.Scheduler
	loader *asset.Loader
	bus    *event.Bus
	log    *slog.Logger

	input       *input.State
	avatar      *body.Avatar
	combat      *combat.Controller
	projectiles *projectile.Manager
	enemies     *enemy.Manager
	camera      *camera.Rig

	started bool
	frame   uint64
	elapsed time.Duration
}

func New(params Params, field terrain.HeightField, deps Deps) (*Session, error) {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	loader, err := asset.NewLoader(deps.Source, params.Workers)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s := &Session{
		params:      params,
		field:       field,
		clock:       deps.Clock,
		sched:       clock.NewScheduler(),
		loader:      loader,
		bus:         deps.Bus,
		log:         logger.Component("session"),
		input:       input.NewState(),
		projectiles: projectile.NewManager(params.Projectile),
		enemies:     enemy.NewManager(params.Enemies, field, deps.Rand),
		camera:      camera.NewRig(params.Camera, field),
	}
	s.combat = combat.NewController(params.Combat, s.sched)
	s.combat.OnStart = func(_ *body.Avatar, now time.Time) {
		s.bus.Publish(event.EventAttackStart, &event.AttackEvent{Cycle: s.combat.Cycles(), At: now})
	}
	s.combat.OnEnd = func(_ *body.Avatar, now time.Time) {
		s.bus.Publish(event.EventAttackEnd, &event.AttackEvent{Cycle: s.combat.Cycles(), At: now})
	}
	s.enemies.OnSpotted = func(e enemy.Enemy) {
		s.bus.Publish(event.EventEnemySpotted, &event.EnemyEvent{EnemyID: e.ID, Position: e.Position})
	}
	s.enemies.OnLost = func(e enemy.Enemy) {
		s.bus.Publish(event.EventEnemyLost, &event.EnemyEvent{EnemyID: e.ID, Position: e.Position})
	}
	return s, nil
}

// Start requests the avatar and enemy visuals. Controllers no-op until the
// avatar arrives on a later tick.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.loader.Request(s.params.AvatarRef, s.onAvatarLoaded)
	for i := 0; i < s.params.Enemies.Count; i++ {
		s.loader.Request(s.params.EnemyRef, s.onEnemyLoaded)
	}
	s.log.Info("Session started", "avatar", s.params.AvatarRef, "enemies", s.params.Enemies.Count)
}

func (s *Session) onAvatarLoaded(res asset.Result) {
	if res.Err != nil {
		s.bus.Publish(event.EventAssetFallback, &event.AssetEvent{Ref: res.Ref, Error: res.Err.Error()})
	}
	y := terrain.HeightAt(s.field, 0, 0) + s.params.Movement.FootOffset
	s.avatar = body.New(res.Renderable, mgl64.Vec3{0, y, 0}, s.params.AvatarScale)
	s.log.Info("Avatar ready", "ref", res.Ref, "fallback", s.avatar.Fallback, "parts", len(s.avatar.Parts()))
}

func (s *Session) onEnemyLoaded(res asset.Result) {
	if res.Err != nil {
		s.log.Warn("Enemy dropped, model unavailable", "ref", res.Ref, "error", res.Err)
		s.bus.Publish(event.EventAssetFallback, &event.AssetEvent{Ref: res.Ref, Error: res.Err.Error()})
		return
	}
	s.enemies.Spawn(res.Renderable)
}

// OnKeyEdge records a press or release. Attack and fire act on the press
// edge itself; holding the key does not repeat.
func (s *Session) OnKeyEdge(a input.Action, pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.input.Set(a, pressed) || !pressed {
		return
	}
	switch a {
	case input.Attack:
		s.combat.Trigger(s.avatar, s.clock.Now())
	case input.Fire:
		s.fire()
	}
}

func (s *Session) fire() {
	if s.avatar == nil {
		return
	}
	now := s.clock.Now()
	p := s.projectiles.Spawn(s.avatar.Pose(), s.params.Projectile.Speed, now)
	id := p.ID
	s.loader.Request(s.params.ProjectileRef, func(res asset.Result) {
		s.attachProjectile(id, res)
	})
	s.bus.Publish(event.EventProjectileSpawn, &event.ProjectileEvent{ID: p.ID, Position: p.Position, At: now})
}

func (s *Session) attachProjectile(id uuid.UUID, res asset.Result) {
	if !s.projectiles.Attach(id, res.Renderable) {
		s.log.Debug("Projectile retired before its model arrived", "id", id)
	}
}

// Tick advances one frame: scheduled restores, finished asset loads,
// movement, projectiles, enemies, camera. Movement is per frame, so dt only
// feeds the elapsed counter.
func (s *Session) Tick(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sched.Fire(now)
	s.loader.Drain()

	physics.MovementTick(s.avatar, s.input.Snapshot(), s.params.Movement, s.field)

	s.projectiles.Advance()
	for _, p := range s.projectiles.Retire(now) {
		s.bus.Publish(event.EventProjectileRetire, &event.ProjectileEvent{ID: p.ID, Position: p.Position, Age: p.Age(now), At: now})
	}

	var player *mgl64.Vec3
	var pose *body.Pose
	if s.avatar != nil {
		pos := s.avatar.Position
		player = &pos
		ap := s.avatar.Pose()
		pose = &ap
	}
	s.enemies.Update(player)
	s.camera.Update(pose)

	s.frame++
	s.elapsed += dt
}

// Pump runs due scheduled work and finished loads without simulating a
// frame, for hosts whose frames can stall.
func (s *Session) Pump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Fire(s.clock.Now())
	s.loader.Drain()
}

// Avatar returns the avatar pose, or false until it has loaded.
func (s *Session) Avatar() (body.Pose, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.avatar == nil {
		return body.Pose{}, false
	}
	return s.avatar.Pose(), true
}

func (s *Session) Camera() camera.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.Pose()
}

func (s *Session) Projectiles() []projectile.Projectile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectiles.Live()
}

func (s *Session) Enemies() []enemy.Enemy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enemies.Enemies()
}

// Height samples the terrain the session walks on.
func (s *Session) Height(x, z float64) float64 {
	return terrain.HeightAt(s.field, x, z)
}

func (s *Session) Bounds() physics.Bounds {
	return s.params.Movement.Bounds
}

// Teleport moves the avatar to (x, z), clamped to the bounds and put back on
// the ground.
func (s *Session) Teleport(x, z float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.avatar == nil {
		return false
	}
	x, z = s.params.Movement.Bounds.Clamp(x, z)
	y := terrain.HeightAt(s.field, x, z) + s.params.Movement.FootOffset
	s.avatar.Position = mgl64.Vec3{x, y, z}
	return true
}

func (s *Session) SetCameraMode(m camera.Mode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.SetMode(m)
}

func (s *Session) OrbitCamera(dAzimuth, dPolar float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Orbit(dAzimuth, dPolar)
}

func (s *Session) ZoomCamera(steps float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Zoom(steps)
}

func (s *Session) PanCamera(right, forward float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Pan(right, forward)
}

// SetEnemyState forces every enemy into st; idle freezes the field.
func (s *Session) SetEnemyState(st enemy.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enemies.SetState(st)
}

// NextDue reports when the earliest scheduled callback fires, so a driver
// can wake for it instead of polling.
func (s *Session) NextDue() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Next()
}

// Ground returns the terrain mesh vertices, or nil when the field is analytic.
func (s *Session) Ground() []mgl64.Vec3 {
	p, ok := s.field.(terrain.Probed)
	if !ok {
		return nil
	}
	m, ok := p.Caster.(*terrain.Mesh)
	if !ok {
		return nil
	}
	return m.Samples()
}

// Close stops the asset workers. Loads still in flight are abandoned.
func (s *Session) Close() {
	s.mu.Lock()
	s.log.Info("Session closed", "frames", s.frame, "scheduled", s.sched.Pending(), "attack_active", s.combat.Active())
	s.mu.Unlock()
	s.loader.Release()
}
