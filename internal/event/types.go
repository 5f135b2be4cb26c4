package event

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const (
	EventAttackStart      = "attack.start"
	EventAttackEnd        = "attack.end"
	EventProjectileSpawn  = "projectile.spawn"
	EventProjectileRetire = "projectile.retire"
	EventEnemySpotted     = "enemy.spotted"
	EventEnemyLost        = "enemy.lost"
	EventAssetFallback    = "asset.fallback"
)

type AttackEvent struct {
	Cycle int
	At    time.Time
}

type ProjectileEvent struct {
	ID       uuid.UUID
	Position mgl64.Vec3
	Age      time.Duration
	At       time.Time
}

type EnemyEvent struct {
	EnemyID  int
	Position mgl64.Vec3
}

type AssetEvent struct {
	Ref   string
	Error string
}
