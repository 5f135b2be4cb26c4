package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/Versifine/knights/internal/asset"
	"github.com/Versifine/knights/internal/camera"
	"github.com/Versifine/knights/internal/clock"
	"github.com/Versifine/knights/internal/combat"
	"github.com/Versifine/knights/internal/config"
	"github.com/Versifine/knights/internal/enemy"
	"github.com/Versifine/knights/internal/event"
	"github.com/Versifine/knights/internal/physics"
	"github.com/Versifine/knights/internal/projectile"
	"github.com/Versifine/knights/internal/terrain"
)

// ParamsFromConfig maps the loaded config onto the controllers' tuning.
func ParamsFromConfig(cfg *config.Config) Params {
	bounds := physics.Square(cfg.World.Bound)
	return Params{
		Movement: physics.Params{
			MoveSpeed:         cfg.Movement.Speed,
			FootOffset:        cfg.World.FootOffset,
			TurnLerp:          cfg.Movement.TurnLerp,
			Bounds:            bounds,
			Facing:            physics.FacingPolicy(cfg.Movement.Facing),
			NormalizeDiagonal: cfg.Movement.NormalizeDiagonal,
		},
		Combat: combat.Params{
			Duration:        cfg.Combat.Duration,
			ScaleMultiplier: cfg.Combat.ScaleMultiplier,
			ImpactColor:     cfg.Combat.ImpactColor,
		},
		Projectile: projectile.Params{
			Speed:       cfg.Projectile.Speed,
			SpawnOffset: cfg.Projectile.SpawnOffset,
			Timeout:     cfg.Projectile.Timeout,
			Bounds:      bounds,
		},
		Camera: camera.Params{
			Mode:  camera.Mode(cfg.Camera.Mode),
			Start: camera.DefaultParams().Start,
			Follow: camera.FollowParams{
				Height:     cfg.Camera.Height,
				Distance:   cfg.Camera.Distance,
				Smoothing:  cfg.Camera.Smoothing,
				LookLift:   cfg.Camera.LookLift,
				FootOffset: cfg.World.FootOffset,
				Relative:   cfg.Camera.Relative,
				Stabilize:  cfg.Camera.Stabilize,
			},
			Orbit: camera.OrbitParams{
				Damping:     cfg.Camera.Orbit.Damping,
				MinDistance: cfg.Camera.Orbit.MinDistance,
				MaxDistance: cfg.Camera.Orbit.MaxDistance,
				MinPolar:    cfg.Camera.Orbit.MinPolar,
				MaxPolar:    cfg.Camera.Orbit.MaxPolar,
				RotateSpeed: cfg.Camera.Orbit.RotateSpeed,
				ZoomSpeed:   cfg.Camera.Orbit.ZoomSpeed,
				PanSpeed:    cfg.Camera.Orbit.PanSpeed,
			},
		},
		Enemies: enemy.Params{
			Count:             cfg.Enemies.Count,
			DetectionDistance: cfg.Enemies.DetectionDistance,
			FollowDistance:    cfg.Enemies.FollowDistance,
			ChaseSpeed:        cfg.Enemies.ChaseSpeed,
			PatrolSpeed:       cfg.Enemies.PatrolSpeed,
			SpawnBound:        cfg.Enemies.SpawnBound,
			PatrolMin:         enemy.DefaultParams().PatrolMin,
			PatrolMax:         enemy.DefaultParams().PatrolMax,
			ArriveDistance:    enemy.DefaultParams().ArriveDistance,
			HeightOffset:      cfg.Enemies.HeightOffset,
			Scale:             cfg.Enemies.Scale,
		},
		AvatarScale:   cfg.World.AvatarScale,
		AvatarRef:     cfg.Assets.Avatar,
		ProjectileRef: cfg.Assets.Projectile,
		EnemyRef:      cfg.Assets.Enemy,
		Workers:       cfg.Assets.Workers,
	}
}

// FieldFromConfig builds the height field. With mesh enabled the closed form
// is probed through its triangulated mesh, as a renderer would see it.
func FieldFromConfig(cfg config.TerrainConfig) terrain.HeightField {
	var base terrain.HeightField
	switch cfg.Kind {
	case "flat":
		base = terrain.Flat{Level: cfg.Level}
	default:
		w := terrain.Waves{Base: cfg.Level}
		for _, l := range cfg.Waves {
			w.Layers = append(w.Layers, terrain.Wave{Amplitude: l.Amplitude, FreqX: l.FreqX, FreqZ: l.FreqZ, Phase: l.Phase})
		}
		base = w
	}
	if !cfg.Mesh {
		return base
	}
	return terrain.Probed{Base: base, Caster: terrain.NewMesh(base, cfg.Size, cfg.Segments)}
}

// FromConfig wires a session from cfg. Assets come from cfg.Assets.Dir.
func FromConfig(cfg *config.Config, clk clock.Clock, bus *event.Bus) (*Session, error) {
	var rng *rand.Rand
	if cfg.Enemies.Seed != 0 {
		rng = rand.New(rand.NewPCG(cfg.Enemies.Seed, cfg.Enemies.Seed^0x9e3779b97f4a7c15))
	}
	s, err := New(ParamsFromConfig(cfg), FieldFromConfig(cfg.Terrain), Deps{
		Clock:  clk,
		Source: asset.FileSource{Root: cfg.Assets.Dir},
		Bus:    bus,
		Rand:   rng,
	})
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}
	return s, nil
}
