package fluid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/flipsim/internal/dynamo"
)

var DefaultGravity = mgl32.Vec3{0, -9.81, 0}

const DefaultDriftWeight float32 = 0.1

// Params are the per-step tunables.
type Params struct {
	FlipRatio            float32
	PressureIterations   int
	SeparationIterations int
	OverRelaxation       float32
	CompensateDrift      bool
	SubSteps             int
}

func DefaultParams() Params {
	return Params{
		FlipRatio:            0.9,
		PressureIterations:   30,
		SeparationIterations: 5,
		OverRelaxation:       0.5,
		CompensateDrift:      true,
		SubSteps:             1,
	}
}

func (p Params) Validate() error {
	if !(p.FlipRatio >= 0 && p.FlipRatio <= 1) {
		return fmt.Errorf("%w: flip ratio %v not in [0,1]", dynamo.ErrParameterBounds, p.FlipRatio)
	}
	if p.PressureIterations < 1 {
		return fmt.Errorf("%w: pressure iterations %d < 1", dynamo.ErrParameterBounds, p.PressureIterations)
	}
	if p.SeparationIterations < 0 {
		return fmt.Errorf("%w: separation iterations %d < 0", dynamo.ErrParameterBounds, p.SeparationIterations)
	}
	if !(p.OverRelaxation > 0 && p.OverRelaxation < 2) {
		return fmt.Errorf("%w: over-relaxation %v not in (0,2)", dynamo.ErrParameterBounds, p.OverRelaxation)
	}
	if p.SubSteps < 1 {
		return fmt.Errorf("%w: sub-steps %d < 1", dynamo.ErrParameterBounds, p.SubSteps)
	}
	return nil
}

// Simulator owns all particle and grid state of one tank scene.
type Simulator struct {
	particles *Particles
	grid      *Grid
	hash      *SpatialHash

	resolution  int
	radius      float32
	gravity     mgl32.Vec3
	driftWeight float32
	restDensity float32
	calibrated  bool
	obstacle    ObstacleHandler

	candidates []int
}

type Option func(*Simulator)

func WithGravity(g mgl32.Vec3) Option {
	return func(s *Simulator) { s.gravity = g }
}

func WithDriftWeight(w float32) Option {
	return func(s *Simulator) { s.driftWeight = w }
}

func WithObstacle(o ObstacleHandler) Option {
	return func(s *Simulator) {
		if o == nil {
			o = NoObstacle{}
		}
		s.obstacle = o
	}
}

// New builds a simulator and sets up its tank scene.
func New(resolution int, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		gravity:     DefaultGravity,
		driftWeight: DefaultDriftWeight,
		obstacle:    NoObstacle{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, _, err := s.SetupScene(resolution); err != nil {
		return nil, err
	}
	return s, nil
}

// Step advances the simulation by dt, split into p.SubSteps equal
// sub-steps. A step always runs to completion unless a particle escapes
// the grid, which is reported as ErrParticleEscaped.
func (s *Simulator) Step(dt float32, p Params) error {
	if !(dt > 0) || math.IsInf(float64(dt), 0) {
		return fmt.Errorf("%w: dt %v must be positive", dynamo.ErrParameterBounds, dt)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	sdt := dt / float32(p.SubSteps)
	for step := 0; step < p.SubSteps; step++ {
		s.Integrate(sdt)
		s.HandleCollisions()
		if p.SeparationIterations > 0 {
			s.SeparateParticles(p.SeparationIterations)
		}
		s.HandleCollisions()
		if err := s.TransferToGrid(); err != nil {
			return err
		}
		if err := s.UpdateDensity(); err != nil {
			return err
		}
		s.SolveIncompressibility(p.PressureIterations, p.OverRelaxation, p.CompensateDrift)
		if err := s.TransferFromGrid(p.FlipRatio); err != nil {
			return err
		}
	}
	s.UpdateColors()
	return nil
}

func (s *Simulator) Particles() *Particles   { return s.particles }
func (s *Simulator) Grid() *Grid             { return s.grid }
func (s *Simulator) NumParticles() int       { return s.particles.Len() }
func (s *Simulator) ParticleRadius() float32 { return s.radius }
func (s *Simulator) Resolution() int         { return s.resolution }
func (s *Simulator) Positions() []mgl32.Vec3 { return s.particles.Pos }
func (s *Simulator) Velocities() []mgl32.Vec3 {
	return s.particles.Vel
}
func (s *Simulator) Colors() []mgl32.Vec3 { return s.particles.Color }
func (s *Simulator) Densities() []float32 { return s.grid.Density }
func (s *Simulator) Residual() float64    { return s.grid.Residual() }
func (s *Simulator) FluidCells() int      { return s.grid.FluidCells() }

func (s *Simulator) Gravity() mgl32.Vec3 { return s.gravity }

func (s *Simulator) SetObstacle(o ObstacleHandler) { WithObstacle(o)(s) }

var _ dynamo.Fluid = (*Simulator)(nil)
