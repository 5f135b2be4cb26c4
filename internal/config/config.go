package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure returned by Load and Validate.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Logging    LoggingConfig     `yaml:"logging"`
	Frontend   FrontendConfig    `yaml:"frontend"`
	World      WorldConfig       `yaml:"world"`
	Terrain    TerrainConfig     `yaml:"terrain"`
	Movement   MovementConfig    `yaml:"movement"`
	Combat     CombatConfig      `yaml:"combat"`
	Projectile ProjectileConfig  `yaml:"projectile"`
	Camera     CameraConfig      `yaml:"camera"`
	Enemies    EnemiesConfig     `yaml:"enemies"`
	Assets     AssetsConfig      `yaml:"assets"`
	Audio      AudioConfig       `yaml:"audio"`
	Keys       map[string]string `yaml:"keys"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type FrontendConfig struct {
	Kind     string        `yaml:"kind"` // window, terminal, console
	Title    string        `yaml:"title"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	TickRate int           `yaml:"tick_rate"`
	Pulse    time.Duration `yaml:"pulse"`
}

type WorldConfig struct {
	Bound       float64 `yaml:"bound"`
	FootOffset  float64 `yaml:"foot_offset"`
	AvatarScale float64 `yaml:"avatar_scale"`
}

type TerrainConfig struct {
	Kind     string       `yaml:"kind"` // flat, waves
	Level    float64      `yaml:"level"`
	Mesh     bool         `yaml:"mesh"`
	Size     float64      `yaml:"size"`
	Segments int          `yaml:"segments"`
	Waves    []WaveConfig `yaml:"waves"`
}

type WaveConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	FreqX     float64 `yaml:"freq_x"`
	FreqZ     float64 `yaml:"freq_z"`
	Phase     float64 `yaml:"phase"`
}

type MovementConfig struct {
	Speed             float64 `yaml:"speed"`
	TurnLerp          float64 `yaml:"turn_lerp"`
	Facing            string  `yaml:"facing"` // snap, smooth, direct
	NormalizeDiagonal bool    `yaml:"normalize_diagonal"`
}

type CombatConfig struct {
	Duration        time.Duration `yaml:"duration"`
	ScaleMultiplier float64       `yaml:"scale_multiplier"`
	ImpactColor     uint32        `yaml:"impact_color"`
}

type ProjectileConfig struct {
	Speed       float64       `yaml:"speed"`
	SpawnOffset float64       `yaml:"spawn_offset"`
	Timeout     time.Duration `yaml:"timeout"`
}

type CameraConfig struct {
	Mode      string      `yaml:"mode"` // follow, orbit
	Height    float64     `yaml:"height"`
	Distance  float64     `yaml:"distance"`
	Smoothing float64     `yaml:"smoothing"`
	LookLift  float64     `yaml:"look_lift"`
	Relative  bool        `yaml:"relative"`
	Stabilize bool        `yaml:"stabilize"`
	Orbit     OrbitConfig `yaml:"orbit"`
}

type OrbitConfig struct {
	Damping     float64 `yaml:"damping"`
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	MinPolar    float64 `yaml:"min_polar"`
	MaxPolar    float64 `yaml:"max_polar"`
	RotateSpeed float64 `yaml:"rotate_speed"`
	ZoomSpeed   float64 `yaml:"zoom_speed"`
	PanSpeed    float64 `yaml:"pan_speed"`
}

type EnemiesConfig struct {
	Count             int     `yaml:"count"`
	Seed              uint64  `yaml:"seed"` // 0 picks a random seed
	DetectionDistance float64 `yaml:"detection_distance"`
	FollowDistance    float64 `yaml:"follow_distance"`
	ChaseSpeed        float64 `yaml:"chase_speed"`
	PatrolSpeed       float64 `yaml:"patrol_speed"`
	SpawnBound        float64 `yaml:"spawn_bound"`
	HeightOffset      float64 `yaml:"height_offset"`
	Scale             float64 `yaml:"scale"`
}

type AssetsConfig struct {
	Dir        string `yaml:"dir"`
	Workers    int    `yaml:"workers"`
	Avatar     string `yaml:"avatar"`
	Projectile string `yaml:"projectile"`
	Enemy      string `yaml:"enemy"`
}

type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

// Default returns the tuning the game ships with. Load overlays the file on it.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Frontend: FrontendConfig{
			Kind:     "window",
			Title:    "Knights",
			Width:    960,
			Height:   720,
			TickRate: 60,
			Pulse:    150 * time.Millisecond,
		},
		World: WorldConfig{Bound: 90, AvatarScale: 1.2},
		Terrain: TerrainConfig{
			Kind:     "waves",
			Mesh:     true,
			Size:     200,
			Segments: 100,
			Waves: []WaveConfig{
				{Amplitude: 2, FreqX: 0.05, FreqZ: 0.05},
				{Amplitude: 0.8, FreqX: 0.13, FreqZ: 0.11, Phase: 1.3},
				{Amplitude: 0.3, FreqX: 0.31, FreqZ: 0.29, Phase: 0.7},
			},
		},
		Movement: MovementConfig{Speed: 0.3, TurnLerp: 0.15, Facing: "snap"},
		Combat: CombatConfig{
			Duration:        500 * time.Millisecond,
			ScaleMultiplier: 1.3,
			ImpactColor:     0xff0000,
		},
		Projectile: ProjectileConfig{Speed: 1.5, SpawnOffset: 1.5, Timeout: 4 * time.Second},
		Camera: CameraConfig{
			Mode:      "follow",
			Height:    15,
			Distance:  20,
			Smoothing: 0.05,
			LookLift:  2,
			Orbit: OrbitConfig{
				Damping:     0.05,
				MinDistance: 5,
				MaxDistance: 100,
				MinPolar:    0,
				MaxPolar:    math.Pi / 2,
				RotateSpeed: 0.4,
				ZoomSpeed:   0.6,
				PanSpeed:    0.8,
			},
		},
		Enemies: EnemiesConfig{
			Count:             5,
			DetectionDistance: 15,
			FollowDistance:    20,
			ChaseSpeed:        0.1,
			PatrolSpeed:       0.05,
			SpawnBound:        80,
			HeightOffset:      3,
			Scale:             2.5,
		},
		Assets: AssetsConfig{
			Dir:        "assets",
			Workers:    4,
			Avatar:     "knight.yaml",
			Projectile: "bolt.yaml",
			Enemy:      "ross.yaml",
		},
		Audio: AudioConfig{Enabled: true, SampleRate: 44100, Volume: 0.6},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(oneOf(c.Frontend.Kind, "window", "terminal", "console"), "frontend.kind %q unknown", c.Frontend.Kind)
	check(c.Frontend.TickRate > 0, "frontend.tick_rate must be positive")
	check(c.Frontend.Pulse >= 0, "frontend.pulse must not be negative")
	check(c.World.Bound > 0, "world.bound must be positive")
	check(c.World.AvatarScale > 0, "world.avatar_scale must be positive")
	check(oneOf(c.Terrain.Kind, "flat", "waves"), "terrain.kind %q unknown", c.Terrain.Kind)
	check(!c.Terrain.Mesh || (c.Terrain.Size > 0 && c.Terrain.Segments > 0), "terrain mesh needs positive size and segments")
	check(c.Movement.Speed >= 0, "movement.speed must not be negative")
	check(c.Movement.TurnLerp > 0 && c.Movement.TurnLerp <= 1, "movement.turn_lerp must be in (0, 1]")
	check(oneOf(c.Movement.Facing, "snap", "smooth", "direct"), "movement.facing %q unknown", c.Movement.Facing)
	check(c.Combat.Duration > 0, "combat.duration must be positive")
	check(c.Combat.ScaleMultiplier > 0, "combat.scale_multiplier must be positive")
	check(c.Combat.ImpactColor <= 0xffffff, "combat.impact_color must be a 24-bit RGB value")
	check(c.Projectile.Speed > 0, "projectile.speed must be positive")
	check(c.Projectile.Timeout > 0, "projectile.timeout must be positive")
	check(oneOf(c.Camera.Mode, "follow", "orbit"), "camera.mode %q unknown", c.Camera.Mode)
	check(c.Camera.Smoothing > 0 && c.Camera.Smoothing <= 1, "camera.smoothing must be in (0, 1]")
	check(c.Camera.Orbit.MinDistance > 0 && c.Camera.Orbit.MinDistance <= c.Camera.Orbit.MaxDistance,
		"camera.orbit distance range [%v, %v] is empty", c.Camera.Orbit.MinDistance, c.Camera.Orbit.MaxDistance)
	check(c.Camera.Orbit.MinPolar >= 0 && c.Camera.Orbit.MinPolar <= c.Camera.Orbit.MaxPolar && c.Camera.Orbit.MaxPolar <= math.Pi,
		"camera.orbit polar range [%v, %v] is invalid", c.Camera.Orbit.MinPolar, c.Camera.Orbit.MaxPolar)
	check(c.Enemies.Count >= 0, "enemies.count must not be negative")
	check(c.Enemies.FollowDistance >= c.Enemies.DetectionDistance, "enemies.follow_distance must be at least detection_distance")
	check(c.Assets.Workers > 0, "assets.workers must be positive")
	check(c.Audio.Volume >= 0 && c.Audio.Volume <= 1, "audio.volume must be in [0, 1]")

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
