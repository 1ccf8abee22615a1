package config

import "sort"

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

var Presets = map[string]*Config{
	"calm": preset(func(c *Config) {
		c.CalibrateRestDensity = true
	}),
	"pic": preset(func(c *Config) {
		c.Solver.FlipRatio = 0
	}),
	"flip": preset(func(c *Config) {
		c.Solver.FlipRatio = 1
	}),
	"splash": preset(func(c *Config) {
		c.Scene.Resolution = 24
		c.Solver.SubSteps = 2
		c.Solver.OverRelaxation = 1.9
		c.CalibrateRestDensity = true
		c.Obstacle = &ObstacleConfig{
			Center:   [3]float64{0.1, 0.1, 0},
			Radius:   0.12,
			Velocity: [3]float64{-1, 0, 0},
		}
	}),
	"coarse": preset(func(c *Config) {
		c.Scene.Resolution = 10
		c.Solver.PressureIterations = 20
	}),
	"fine": preset(func(c *Config) {
		c.Scene.Resolution = 32
		c.Solver.PressureIterations = 50
		c.Frames = 600
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
