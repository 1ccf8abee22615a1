package metrics

import (
	"math"

	"github.com/san-kum/flipsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Collect summarises the current particle and grid state. Kinetic energy is
// per particle with unit mass; density statistics cover occupied cells only.
func Collect(sys dynamo.Fluid, frame int, t float64) dynamo.FrameStats {
	stats := dynamo.FrameStats{
		Frame:      frame,
		Time:       t,
		Residual:   sys.Residual(),
		FluidCells: sys.FluidCells(),
	}

	n := sys.NumParticles()
	if n > 0 {
		pos := sys.Positions()
		vel := sys.Velocities()
		speeds := make([]float64, n)
		xs := make([]float64, n)
		ys := make([]float64, n)
		var ke float64
		for i := 0; i < n; i++ {
			v2 := float64(vel[i].Dot(vel[i]))
			ke += 0.5 * v2
			speeds[i] = math.Sqrt(v2)
			xs[i] = float64(pos[i][0])
			ys[i] = float64(pos[i][1])
		}
		stats.KineticEnergy = ke / float64(n)
		stats.MaxSpeed = floats.Max(speeds)
		stats.CenterX = stat.Mean(xs, nil)
		stats.MeanHeight = stat.Mean(ys, nil)
	}

	occupied := make([]float64, 0, stats.FluidCells)
	for _, d := range sys.Densities() {
		if d > 0 {
			occupied = append(occupied, float64(d))
		}
	}
	switch len(occupied) {
	case 0:
	case 1:
		stats.MeanDensity = occupied[0]
	default:
		stats.MeanDensity, stats.DensityStd = stat.MeanStdDev(occupied, nil)
	}
	return stats
}

// Finite reports whether every float field of stats is a real number.
func Finite(stats dynamo.FrameStats) bool {
	for _, v := range []float64{
		stats.KineticEnergy, stats.MaxSpeed, stats.Residual,
		stats.MeanHeight, stats.CenterX, stats.MeanDensity, stats.DensityStd,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
