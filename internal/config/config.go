package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lyricfield/internal/dynamo"
)

const (
	DefaultFPS      = 30
	DefaultDt       = 1.0 / 30
	DefaultDuration = 60.0
	DefaultAddr     = ":8080"
)

type Config struct {
	Catalog  string  `yaml:"catalog" toml:"catalog"`
	Seed     int64   `yaml:"seed" toml:"seed"`
	FPS      int     `yaml:"fps" toml:"fps"`
	Dt       float64 `yaml:"dt" toml:"dt"`
	Duration float64 `yaml:"duration" toml:"duration"`
	Theme    string  `yaml:"theme" toml:"theme"`

	Canvas    CanvasConfig    `yaml:"canvas" toml:"canvas"`
	Bubbles   BubbleConfig    `yaml:"bubbles" toml:"bubbles"`
	Motion    MotionConfig    `yaml:"motion" toml:"motion"`
	Selection SelectionConfig `yaml:"selection" toml:"selection"`
	Collision CollisionConfig `yaml:"collision" toml:"collision"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Redis     RedisConfig     `yaml:"redis" toml:"redis"`
}

type CanvasConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

type BubbleConfig struct {
	Max         int     `yaml:"max" toml:"max"`
	MinLifespan float64 `yaml:"min_lifespan" toml:"min_lifespan"`
	MaxLifespan float64 `yaml:"max_lifespan" toml:"max_lifespan"`
	MinSize     float64 `yaml:"min_size" toml:"min_size"`
	MaxSize     float64 `yaml:"max_size" toml:"max_size"`
}

type MotionConfig struct {
	MinVelocity        float64 `yaml:"min_velocity" toml:"min_velocity"`
	MaxVelocity        float64 `yaml:"max_velocity" toml:"max_velocity"`
	Buoyancy           float64 `yaml:"buoyancy" toml:"buoyancy"`
	AirResistance      float64 `yaml:"air_resistance" toml:"air_resistance"`
	Wind               float64 `yaml:"wind" toml:"wind"`
	BreathingFrequency float64 `yaml:"breathing_frequency" toml:"breathing_frequency"`
	BreathingAmplitude float64 `yaml:"breathing_amplitude" toml:"breathing_amplitude"`
	Noise              float64 `yaml:"noise" toml:"noise"`
}

type SelectionConfig struct {
	MaxDisplayed     int           `yaml:"max_displayed" toml:"max_displayed"`
	RotationCooldown float64       `yaml:"rotation_cooldown" toml:"rotation_cooldown"`
	HistorySize      int           `yaml:"history_size" toml:"history_size"`
	Weights          WeightsConfig `yaml:"weights" toml:"weights"`
}

type WeightsConfig struct {
	Recency     float64 `yaml:"recency" toml:"recency"`
	Popularity  float64 `yaml:"popularity" toml:"popularity"`
	TypeBalance float64 `yaml:"type_balance" toml:"type_balance"`
	Random      float64 `yaml:"random" toml:"random"`
}

type CollisionConfig struct {
	MinDistance          float64 `yaml:"min_distance" toml:"min_distance"`
	MaxAttempts          int     `yaml:"max_attempts" toml:"max_attempts"`
	PerformanceThreshold int     `yaml:"performance_threshold" toml:"performance_threshold"`
	BatchSize            int     `yaml:"batch_size" toml:"batch_size"`
	ReducedAttempts      int     `yaml:"reduced_attempts" toml:"reduced_attempts"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr" toml:"addr"`
	AllowedOrigin string `yaml:"allowed_origin" toml:"allowed_origin"`
	FrameEvery    int    `yaml:"frame_every" toml:"frame_every"`
}

type RedisConfig struct {
	URL     string `yaml:"url" toml:"url"`
	Channel string `yaml:"channel" toml:"channel"`
}

func DefaultConfig() *Config {
	return FromParams(dynamo.DefaultParams())
}

// FromParams builds a config around p with default run settings.
func FromParams(p dynamo.Params) *Config {
	return &Config{
		FPS:      DefaultFPS,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Theme:    "night",
		Canvas:   CanvasConfig{Width: p.CanvasWidth, Height: p.CanvasHeight},
		Bubbles: BubbleConfig{
			Max:         p.MaxBubbles,
			MinLifespan: p.MinLifespan,
			MaxLifespan: p.MaxLifespan,
			MinSize:     p.MinSize,
			MaxSize:     p.MaxSize,
		},
		Motion: MotionConfig{
			MinVelocity:        p.MinVelocity,
			MaxVelocity:        p.MaxVelocity,
			Buoyancy:           p.BuoyancyStrength,
			AirResistance:      p.AirResistance,
			Wind:               p.WindStrength,
			BreathingFrequency: p.BreathingFrequency,
			BreathingAmplitude: p.BreathingAmplitude,
			Noise:              p.NoiseIntensity,
		},
		Selection: SelectionConfig{
			MaxDisplayed:     p.MaxDisplayedItems,
			RotationCooldown: p.RotationCooldown,
			HistorySize:      p.HistorySize,
			Weights: WeightsConfig{
				Recency:     p.RecencyWeight,
				Popularity:  p.PopularityWeight,
				TypeBalance: p.TypeBalanceWeight,
				Random:      p.RandomWeight,
			},
		},
		Collision: CollisionConfig{
			MinDistance:          p.MinDistance,
			MaxAttempts:          p.MaxAttempts,
			PerformanceThreshold: p.PerformanceThreshold,
			BatchSize:            p.BatchSize,
			ReducedAttempts:      p.ReducedAttempts,
		},
		Server: ServerConfig{Addr: DefaultAddr, FrameEvery: 1},
	}
}

// Params flattens the config into engine options.
func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		CanvasWidth:  c.Canvas.Width,
		CanvasHeight: c.Canvas.Height,

		MaxBubbles:  c.Bubbles.Max,
		MinLifespan: c.Bubbles.MinLifespan,
		MaxLifespan: c.Bubbles.MaxLifespan,
		MinVelocity: c.Motion.MinVelocity,
		MaxVelocity: c.Motion.MaxVelocity,
		MinSize:     c.Bubbles.MinSize,
		MaxSize:     c.Bubbles.MaxSize,

		BuoyancyStrength:   c.Motion.Buoyancy,
		AirResistance:      c.Motion.AirResistance,
		WindStrength:       c.Motion.Wind,
		BreathingFrequency: c.Motion.BreathingFrequency,
		BreathingAmplitude: c.Motion.BreathingAmplitude,
		NoiseIntensity:     c.Motion.Noise,

		MaxDisplayedItems: c.Selection.MaxDisplayed,
		RotationCooldown:  c.Selection.RotationCooldown,
		HistorySize:       c.Selection.HistorySize,
		RecencyWeight:     c.Selection.Weights.Recency,
		PopularityWeight:  c.Selection.Weights.Popularity,
		TypeBalanceWeight: c.Selection.Weights.TypeBalance,
		RandomWeight:      c.Selection.Weights.Random,

		MinDistance:          c.Collision.MinDistance,
		MaxAttempts:          c.Collision.MaxAttempts,
		PerformanceThreshold: c.Collision.PerformanceThreshold,
		BatchSize:            c.Collision.BatchSize,
		ReducedAttempts:      c.Collision.ReducedAttempts,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML config (chosen by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
