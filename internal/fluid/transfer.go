package fluid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/flipsim/internal/dynamo"
)

// corners enumerates the 8 samples around a point; corner n has weight
// prod(d[a] if corners[n][a] == 1 else 1-d[a]).
var corners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

type stencil struct {
	idx [8]int
	w   [8]float32
}

// stencil locates the 8 face samples of the given axis around pos. Samples
// of axis a sit on the negative-a faces, so they are offset by half a cell on
// the two other axes.
func (g *Grid) stencil(pos mgl32.Vec3, axis int) (stencil, error) {
	var st stencil
	var base [3]int
	var d [3]float32
	dims := g.dims()
	for a := 0; a < 3; a++ {
		origin := Origin + 0.5*g.H
		if a == axis {
			origin = Origin
		}
		rel := (pos[a] - origin) / g.H
		if math.IsNaN(float64(rel)) || math.IsInf(float64(rel), 0) {
			return st, fmt.Errorf("%w: position %v", dynamo.ErrParticleEscaped, pos)
		}
		c := int(math.Floor(float64(rel)))
		if c < 0 || c+1 >= dims[a] {
			return st, fmt.Errorf("%w: position %v outside %s stencil", dynamo.ErrParticleEscaped, pos, axisName(axis))
		}
		base[a] = c
		d[a] = rel - float32(c)
	}
	for n, c := range corners {
		w := float32(1)
		for a := 0; a < 3; a++ {
			if c[a] == 1 {
				w *= d[a]
			} else {
				w *= 1 - d[a]
			}
		}
		st.idx[n] = g.Index(base[0]+c[0], base[1]+c[1], base[2]+c[2])
		st.w[n] = w
	}
	return st, nil
}

func axisName(a int) string {
	return [3]string{"x", "y", "z"}[a]
}

// TransferToGrid scatters particle velocities onto the face samples,
// reclassifies the cells and snapshots the result into PrevVel.
func (s *Simulator) TransferToGrid() error {
	g := s.grid
	p := s.particles

	for c := range g.Vel {
		g.Vel[c] = mgl32.Vec3{}
	}
	for a := 0; a < 3; a++ {
		clear(g.Weight[a])
	}

	g.classify()
	for _, pos := range p.Pos {
		c, err := g.CellAt(pos)
		if err != nil {
			return err
		}
		g.markFluid(c)
	}

	for i, pos := range p.Pos {
		vel := p.Vel[i]
		for axis := 0; axis < 3; axis++ {
			st, err := g.stencil(pos, axis)
			if err != nil {
				return err
			}
			for n := 0; n < 8; n++ {
				g.Weight[axis][st.idx[n]] += st.w[n]
				g.Vel[st.idx[n]][axis] += st.w[n] * vel[axis]
			}
		}
	}

	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				c := g.Index(i, j, k)
				for axis := 0; axis < 3; axis++ {
					w := g.Weight[axis][c]
					if w > 0 && g.faceIsOpen(i, j, k, axis) {
						g.Vel[c][axis] /= w
					} else {
						g.Vel[c][axis] = 0
					}
				}
			}
		}
	}

	copy(g.PrevVel, g.Vel)
	return nil
}

// TransferFromGrid gathers grid velocities back to the particles.
// flipRatio 0 resamples the grid (PIC); 1 adds the grid's change to the
// particle's own velocity (FLIP).
func (s *Simulator) TransferFromGrid(flipRatio float32) error {
	g := s.grid
	p := s.particles

	for i, pos := range p.Pos {
		for axis := 0; axis < 3; axis++ {
			st, err := g.stencil(pos, axis)
			if err != nil {
				return err
			}
			var picVel, delta float32
			for n := 0; n < 8; n++ {
				v := g.Vel[st.idx[n]][axis]
				picVel += st.w[n] * v
				delta += st.w[n] * (v - g.PrevVel[st.idx[n]][axis])
			}
			flipVel := p.Vel[i][axis] + delta
			p.Vel[i][axis] = flipRatio*flipVel + (1-flipRatio)*picVel
		}
	}
	return nil
}
