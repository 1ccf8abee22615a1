package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/flipsim/internal/dynamo"
	"github.com/san-kum/flipsim/internal/fluid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultResolution = 20
	DefaultDt         = 1.0 / 60.0
	DefaultFrames     = 300
	DefaultFPS        = 30
)

type Config struct {
	Scene                SceneConfig     `yaml:"scene"`
	Dt                   float64         `yaml:"dt"`
	Frames               int             `yaml:"frames"`
	FPS                  int             `yaml:"fps"`
	Solver               SolverConfig    `yaml:"solver"`
	Gravity              [3]float64      `yaml:"gravity"`
	DriftWeight          float64         `yaml:"drift_weight"`
	CalibrateRestDensity bool            `yaml:"calibrate_rest_density"`
	Obstacle             *ObstacleConfig `yaml:"obstacle,omitempty"`
}

type SceneConfig struct {
	Resolution int `yaml:"resolution"`
}

type SolverConfig struct {
	FlipRatio            float64 `yaml:"flip_ratio"`
	PressureIterations   int     `yaml:"pressure_iterations"`
	SeparationIterations int     `yaml:"separation_iterations"`
	OverRelaxation       float64 `yaml:"over_relaxation"`
	CompensateDrift      bool    `yaml:"compensate_drift"`
	SubSteps             int     `yaml:"sub_steps"`
}

type ObstacleConfig struct {
	Center   [3]float64 `yaml:"center"`
	Radius   float64    `yaml:"radius"`
	Velocity [3]float64 `yaml:"velocity"`
}

func DefaultConfig() *Config {
	p := fluid.DefaultParams()
	g := fluid.DefaultGravity
	return &Config{
		Scene:  SceneConfig{Resolution: DefaultResolution},
		Dt:     DefaultDt,
		Frames: DefaultFrames,
		FPS:    DefaultFPS,
		Solver: SolverConfig{
			FlipRatio:            float64(p.FlipRatio),
			PressureIterations:   p.PressureIterations,
			SeparationIterations: p.SeparationIterations,
			OverRelaxation:       float64(p.OverRelaxation),
			CompensateDrift:      p.CompensateDrift,
			SubSteps:             p.SubSteps,
		},
		Gravity:     [3]float64{float64(g[0]), float64(g[1]), float64(g[2])},
		DriftWeight: float64(fluid.DefaultDriftWeight),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything a simulator would reject at setup or on the
// first step.
func (c *Config) Validate() error {
	if c.Scene.Resolution < 1 {
		return fmt.Errorf("%w: got %d", dynamo.ErrInvalidResolution, c.Scene.Resolution)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, c.Dt)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", dynamo.ErrParameterBounds, c.Frames)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", dynamo.ErrParameterBounds, c.FPS)
	}
	if c.Obstacle != nil && c.Obstacle.Radius < 0 {
		return fmt.Errorf("%w: obstacle radius %f", dynamo.ErrParameterBounds, c.Obstacle.Radius)
	}
	return c.Params().Validate()
}

func (c *Config) Params() fluid.Params {
	return fluid.Params{
		FlipRatio:            float32(c.Solver.FlipRatio),
		PressureIterations:   c.Solver.PressureIterations,
		SeparationIterations: c.Solver.SeparationIterations,
		OverRelaxation:       float32(c.Solver.OverRelaxation),
		CompensateDrift:      c.Solver.CompensateDrift,
		SubSteps:             c.Solver.SubSteps,
	}
}

func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Frames:        c.Frames,
		ValidateState: true,
	}
}

func (c *Config) Options() []fluid.Option {
	opts := []fluid.Option{
		fluid.WithGravity(vec3(c.Gravity)),
		fluid.WithDriftWeight(float32(c.DriftWeight)),
	}
	if c.Obstacle != nil && c.Obstacle.Radius > 0 {
		opts = append(opts, fluid.WithObstacle(&fluid.SphereObstacle{
			Center:   vec3(c.Obstacle.Center),
			Radius:   float32(c.Obstacle.Radius),
			Velocity: vec3(c.Obstacle.Velocity),
		}))
	}
	return opts
}

// NewSimulator validates the configuration, sets up the scene and, when
// requested, calibrates the rest density from the initial block.
func (c *Config) NewSimulator() (*fluid.Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	sys, err := fluid.New(c.Scene.Resolution, c.Options()...)
	if err != nil {
		return nil, err
	}
	if c.CalibrateRestDensity {
		if _, err := sys.CalibrateRestDensity(); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Obstacle != nil {
		o := *c.Obstacle
		out.Obstacle = &o
	}
	return &out
}

func vec3(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
