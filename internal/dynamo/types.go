package dynamo

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// Fluid is the read-only view of a particle/grid simulator that metrics,
// observers and the outer surfaces consume.
type Fluid interface {
	NumParticles() int
	ParticleRadius() float32
	Resolution() int
	Positions() []mgl32.Vec3
	Velocities() []mgl32.Vec3
	Colors() []mgl32.Vec3
	// Densities returns the particle count per grid cell.
	Densities() []float32
	// Residual is the summed absolute divergence over fluid cells.
	Residual() float64
	FluidCells() int
}

type Metric interface {
	Name() string
	Observe(sys Fluid, stats FrameStats)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(sys Fluid, stats FrameStats)
}

type Config struct {
	Dt            float64
	Frames        int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60.0,
		Frames:        300,
		ValidateState: true,
	}
}

// FrameStats is one row of per-frame telemetry.
type FrameStats struct {
	Frame         int     `csv:"frame" json:"frame"`
	Time          float64 `csv:"time" json:"time"`
	KineticEnergy float64 `csv:"kinetic_energy" json:"kinetic_energy"`
	MaxSpeed      float64 `csv:"max_speed" json:"max_speed"`
	Residual      float64 `csv:"residual" json:"residual"`
	FluidCells    int     `csv:"fluid_cells" json:"fluid_cells"`
	MeanHeight    float64 `csv:"mean_height" json:"mean_height"`
	CenterX       float64 `csv:"center_x" json:"center_x"`
	MeanDensity   float64 `csv:"mean_density" json:"mean_density"`
	DensityStd    float64 `csv:"density_std" json:"density_std"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.Float64("time", s.Time),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("residual", s.Residual),
		slog.Int("fluid_cells", s.FluidCells),
		slog.Float64("mean_height", s.MeanHeight),
	)
}

type Result struct {
	Frames     []FrameStats
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

type SimError struct {
	Time    float64
	Frame   int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %s", e.Frame, e.Time, e.Message)
}
