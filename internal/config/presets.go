package config

import "sort"

// Presets are named starting points for the bubble field.
var Presets = map[string]*Config{
	"calm": preset(func(c *Config) {
		c.Bubbles.Max, c.Selection.MaxDisplayed = 8, 8
		c.Bubbles.MinLifespan, c.Bubbles.MaxLifespan = 16, 26
		c.Motion.MaxVelocity = 24
		c.Motion.Wind = 2
		c.Motion.Noise = 8
		c.Motion.BreathingFrequency = 0.2
	}),
	"lively": preset(func(c *Config) {
		c.Bubbles.MinLifespan, c.Bubbles.MaxLifespan = 6, 12
		c.Motion.MinVelocity, c.Motion.MaxVelocity = 12, 80
		c.Motion.Buoyancy = 8
		c.Motion.Wind = 14
		c.Motion.Noise = 30
		c.Motion.BreathingFrequency = 0.6
	}),
	"dense": preset(func(c *Config) {
		c.Bubbles.Max, c.Selection.MaxDisplayed = 30, 30
		c.Bubbles.MinSize, c.Bubbles.MaxSize = 20, 48
		c.Collision.MinDistance = 4
		c.Selection.Weights = WeightsConfig{Recency: 0.3, Popularity: 0.2, TypeBalance: 0.4, Random: 0.1}
	}),
	"crowded": preset(func(c *Config) {
		c.Bubbles.Max, c.Selection.MaxDisplayed = 80, 80
		c.Bubbles.MinSize, c.Bubbles.MaxSize = 14, 32
		c.Collision.MinDistance = 2
		c.Collision.PerformanceThreshold = 40
		c.Collision.BatchSize = 20
		c.Collision.ReducedAttempts = 2
	}),
}

func preset(mut func(c *Config)) *Config {
	c := DefaultConfig()
	mut(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
