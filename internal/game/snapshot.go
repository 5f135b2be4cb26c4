package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/Versifine/knights/internal/body"
	"github.com/Versifine/knights/internal/camera"
	"github.com/Versifine/knights/internal/enemy"
	"github.com/Versifine/knights/internal/input"
	"github.com/Versifine/knights/internal/projectile"
)

// Snapshot is a copy of the session state for rendering and debugging.
type Snapshot struct {
	Frame       uint64
	Elapsed     time.Duration
	Avatar      body.Pose
	HasAvatar   bool
	Fallback    bool
	Attack      body.AttackState
	Input       input.Snapshot
	Camera      camera.Pose
	CameraMode  camera.Mode
	Projectiles []projectile.Projectile
	Enemies     []enemy.Enemy
	Bound       float64
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Frame:       s.frame,
		Elapsed:     s.elapsed,
		Input:       s.input.Snapshot(),
		Camera:      s.camera.Pose(),
		CameraMode:  s.camera.Mode(),
		Projectiles: s.projectiles.Live(),
		Enemies:     s.enemies.Enemies(),
		Bound:       s.params.Movement.Bounds.HalfX,
	}
	if s.avatar != nil {
		snap.HasAvatar = true
		snap.Avatar = s.avatar.Pose()
		snap.Attack = s.avatar.Attack
		snap.Fallback = s.avatar.Fallback
	}
	return snap
}

func (s Snapshot) String() string {
	avatar := "loading"
	if s.HasAvatar {
		avatar = s.Avatar.String()
		if s.Fallback {
			avatar += " (fallback)"
		}
	}

	var held []string
	for _, a := range input.Actions() {
		if s.Input.Held(a) {
			held = append(held, a.String())
		}
	}

	var enemies []string
	following := 0
	for _, e := range s.Enemies {
		if e.State == enemy.StateFollowing {
			following++
		}
		enemies = append(enemies, e.String())
	}

	return fmt.Sprintf(
		"Snapshot [Frame: %d] | [Avatar: %s] | [Attack: %s] | [Keys: %s] | [Camera(%s): %s] | [Projectiles: %d] | [Enemies(%d, %d following): %s]",
		s.Frame,
		avatar,
		s.Attack,
		strings.Join(held, "+"),
		s.CameraMode, s.Camera,
		len(s.Projectiles),
		len(s.Enemies), following, strings.Join(enemies, ", "),
	)
}
