package fluid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/flipsim/internal/dynamo"
)

// Fraction of the tank initially filled on each axis.
var waterExtent = mgl32.Vec3{0.6, 0.8, 0.6}

const radiusPerCell = 0.3

// SetupScene rebuilds the tank at the given resolution: a fresh grid and a
// close-packed block of particles in the low corner, every other y-layer
// offset by one radius. It returns the particle count and radius.
func (s *Simulator) SetupScene(resolution int) (int, float32, error) {
	if resolution < 1 {
		return 0, 0, fmt.Errorf("%w: got %d", dynamo.ErrInvalidResolution, resolution)
	}

	h := 1 / float32(resolution)
	r := radiusPerCell * h
	dx := 2 * r
	dy := float32(math.Sqrt(3)/2) * dx
	dz := dx

	numX := latticeCount(waterExtent[0]-2*h-2*r, dx)
	numY := latticeCount(waterExtent[1]-2*h-2*r, dy)
	numZ := latticeCount(waterExtent[2]-2*h-2*r, dz)

	grid, err := NewGrid(resolution)
	if err != nil {
		return 0, 0, err
	}
	particles := NewParticles(numX * numY * numZ)

	n := 0
	for i := 0; i < numX; i++ {
		for j := 0; j < numY; j++ {
			for k := 0; k < numZ; k++ {
				var stagger float32
				if j%2 == 1 {
					stagger = r
				}
				particles.Pos[n] = mgl32.Vec3{
					h + r + dx*float32(i) + stagger + Origin,
					h + r + dy*float32(j) + Origin,
					h + r + dz*float32(k) + stagger + Origin,
				}
				n++
			}
		}
	}

	s.resolution = resolution
	s.radius = r
	s.grid = grid
	s.particles = particles
	s.hash = NewSpatialHash(2*r, particles.Len())
	s.candidates = s.candidates[:0]
	s.restDensity = 0
	s.calibrated = false
	return particles.Len(), r, nil
}

// latticeCount is the number of lattice steps fitting in span, never
// negative.
func latticeCount(span, step float32) int {
	n := int(math.Floor(float64(span / step)))
	if n < 0 {
		return 0
	}
	return n
}

// Reset rebuilds the current scene. A calibrated rest density is
// recalibrated against the fresh block.
func (s *Simulator) Reset() error {
	calibrated := s.calibrated
	if _, _, err := s.SetupScene(s.resolution); err != nil {
		return err
	}
	if calibrated {
		_, err := s.CalibrateRestDensity()
		return err
	}
	return nil
}
