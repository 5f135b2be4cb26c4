package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestLoad 使用表驱动测试覆盖配置加载的核心场景
func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "正常加载有效YAML",
			createFile: true,
			content: `logging:
  level: "debug"
  file: "knights.log"
frontend:
  kind: "terminal"
  pulse: 200ms
world:
  bound: 50
movement:
  speed: 0.5
  facing: "smooth"
  normalize_diagonal: true
combat:
  duration: 750ms
  impact_color: 0x00ff00
projectile:
  timeout: 2s
camera:
  mode: "orbit"
  orbit:
    max_distance: 60
enemies:
  count: 2
  seed: 42
keys:
  k: attack
`,
			wantErr: false,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, 期望 %q", cfg.Logging.Level, "debug")
				}
				if cfg.Logging.File != "knights.log" {
					t.Errorf("Logging.File = %q, 期望 %q", cfg.Logging.File, "knights.log")
				}
				if cfg.Frontend.Kind != "terminal" || cfg.Frontend.Pulse != 200*time.Millisecond {
					t.Errorf("Frontend = %+v", cfg.Frontend)
				}
				if cfg.World.Bound != 50 {
					t.Errorf("World.Bound = %v, 期望 50", cfg.World.Bound)
				}
				if cfg.Movement.Speed != 0.5 || cfg.Movement.Facing != "smooth" || !cfg.Movement.NormalizeDiagonal {
					t.Errorf("Movement = %+v", cfg.Movement)
				}
				if cfg.Combat.Duration != 750*time.Millisecond {
					t.Errorf("Combat.Duration = %v, 期望 750ms", cfg.Combat.Duration)
				}
				if cfg.Combat.ImpactColor != 0x00ff00 {
					t.Errorf("Combat.ImpactColor = %06x, 期望 00ff00", cfg.Combat.ImpactColor)
				}
				if cfg.Projectile.Timeout != 2*time.Second {
					t.Errorf("Projectile.Timeout = %v, 期望 2s", cfg.Projectile.Timeout)
				}
				if cfg.Camera.Mode != "orbit" || cfg.Camera.Orbit.MaxDistance != 60 {
					t.Errorf("Camera = %+v", cfg.Camera)
				}
				if cfg.Enemies.Count != 2 || cfg.Enemies.Seed != 42 {
					t.Errorf("Enemies = %+v", cfg.Enemies)
				}
				if cfg.Keys["k"] != "attack" {
					t.Errorf("Keys = %v", cfg.Keys)
				}
				// 未出现在文件中的字段保留默认值
				if cfg.Camera.Orbit.MinDistance != 5 || cfg.Projectile.Speed != 1.5 {
					t.Errorf("默认值被覆盖: orbit.min=%v projectile.speed=%v", cfg.Camera.Orbit.MinDistance, cfg.Projectile.Speed)
				}
			},
		},
		{
			name:       "文件不存在",
			createFile: false,
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !os.IsNotExist(err) {
					t.Errorf("期望文件不存在错误，实际: %v", err)
				}
			},
		},
		{
			name:       "YAML格式错误",
			createFile: true,
			content: `world:
  bound: [90
movement:
  speed: 0.3
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "yaml") {
					t.Errorf("期望返回YAML解析错误，实际: %v", err)
				}
			},
		},
		{
			name:       "空文件",
			createFile: true,
			content:    "",
			wantErr:    false,
			validate: func(t *testing.T, cfg *Config, err error) {
				// 空文件得到默认配置。
				def := Default()
				if cfg.World != def.World || cfg.Movement != def.Movement || cfg.Combat != def.Combat {
					t.Errorf("空文件应得到默认配置, 实际 %+v", cfg)
				}
				if len(cfg.Terrain.Waves) != 3 {
					t.Errorf("Terrain.Waves 应有 3 层, 实际 %d", len(cfg.Terrain.Waves))
				}
			},
		},
		{
			name:       "校验失败",
			createFile: true,
			content: `world:
  bound: -1
movement:
  facing: "spin"
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("期望 ErrInvalid, 实际: %v", err)
				}
				if !strings.Contains(err.Error(), "world.bound") || !strings.Contains(err.Error(), "movement.facing") {
					t.Errorf("错误信息应列出所有问题, 实际: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "config.yaml")

			if tt.createFile {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("创建测试配置文件失败: %v", err)
				}
			}

			cfg, err := Load(configPath)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && cfg == nil {
				t.Fatalf("Load() 返回了 nil 配置")
			}

			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

// TestValidate 测试各项范围校验
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"未知前端", func(c *Config) { c.Frontend.Kind = "vr" }, "frontend.kind"},
		{"转向系数越界", func(c *Config) { c.Movement.TurnLerp = 1.5 }, "movement.turn_lerp"},
		{"攻击时长为零", func(c *Config) { c.Combat.Duration = 0 }, "combat.duration"},
		{"颜色超过24位", func(c *Config) { c.Combat.ImpactColor = 0x1000000 }, "combat.impact_color"},
		{"弹道超时为零", func(c *Config) { c.Projectile.Timeout = 0 }, "projectile.timeout"},
		{"相机距离区间为空", func(c *Config) { c.Camera.Orbit.MinDistance = 200 }, "camera.orbit distance"},
		{"相机俯仰越界", func(c *Config) { c.Camera.Orbit.MaxPolar = 4 }, "camera.orbit polar"},
		{"网格段数为零", func(c *Config) { c.Terrain.Segments = 0 }, "terrain mesh"},
		{"跟随距离小于侦测距离", func(c *Config) { c.Enemies.FollowDistance = 10 }, "enemies.follow_distance"},
		{"工作协程为零", func(c *Config) { c.Assets.Workers = 0 }, "assets.workers"},
		{"音量越界", func(c *Config) { c.Audio.Volume = 2 }, "audio.volume"},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("默认配置应通过校验: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("期望 ErrInvalid, 实际: %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("错误信息应包含 %q, 实际: %v", tt.field, err)
			}
		})
	}
}

// TestShippedConfig 确认仓库自带的配置与默认值一致
func TestShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("Load(configs/config.yaml) 失败: %v", err)
	}
	def := Default()
	if cfg.Frontend != def.Frontend {
		t.Errorf("Frontend = %+v, 期望 %+v", cfg.Frontend, def.Frontend)
	}
	if cfg.Combat != def.Combat {
		t.Errorf("Combat = %+v, 期望 %+v", cfg.Combat, def.Combat)
	}
	if cfg.Projectile != def.Projectile {
		t.Errorf("Projectile = %+v, 期望 %+v", cfg.Projectile, def.Projectile)
	}
	if cfg.Enemies != def.Enemies {
		t.Errorf("Enemies = %+v, 期望 %+v", cfg.Enemies, def.Enemies)
	}
	if cfg.Assets != def.Assets {
		t.Errorf("Assets = %+v, 期望 %+v", cfg.Assets, def.Assets)
	}
	if len(cfg.Terrain.Waves) != len(def.Terrain.Waves) {
		t.Errorf("Terrain.Waves 数量 = %d, 期望 %d", len(cfg.Terrain.Waves), len(def.Terrain.Waves))
	}
	if len(cfg.Keys) != 10 {
		t.Errorf("Keys 数量 = %d, 期望 10", len(cfg.Keys))
	}
}
