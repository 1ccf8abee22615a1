package fluid

// SolveIncompressibility relaxes the face velocities of every fluid cell
// toward zero divergence with Gauss-Seidel sweeps. Corrections are shared
// among the six faces in proportion to the solidity of the cell across each
// face, so wall faces never move.
func (s *Simulator) SolveIncompressibility(iterations int, overRelaxation float32, compensateDrift bool) {
	g := s.grid
	for it := 0; it < iterations; it++ {
		for i := 1; i < g.NX-1; i++ {
			for j := 1; j < g.NY-1; j++ {
				for k := 1; k < g.NZ-1; k++ {
					c := g.Index(i, j, k)
					if g.Type[c] != FluidCell {
						continue
					}

					left, right := g.Index(i-1, j, k), g.Index(i+1, j, k)
					bottom, top := g.Index(i, j-1, k), g.Index(i, j+1, k)
					back, front := g.Index(i, j, k-1), g.Index(i, j, k+1)

					sx0, sx1 := g.S[left], g.S[right]
					sy0, sy1 := g.S[bottom], g.S[top]
					sz0, sz1 := g.S[back], g.S[front]
					sum := sx0 + sx1 + sy0 + sy1 + sz0 + sz1
					if sum == 0 {
						continue
					}

					d := overRelaxation * (g.Vel[right][0] - g.Vel[c][0] +
						g.Vel[top][1] - g.Vel[c][1] +
						g.Vel[front][2] - g.Vel[c][2])
					if compensateDrift {
						d -= s.driftWeight * (g.Density[c] - s.restDensity)
					}

					g.Vel[c][0] += d * sx0 / sum
					g.Vel[c][1] += d * sy0 / sum
					g.Vel[c][2] += d * sz0 / sum
					g.Vel[right][0] -= d * sx1 / sum
					g.Vel[top][1] -= d * sy1 / sum
					g.Vel[front][2] -= d * sz1 / sum
				}
			}
		}
	}
}

// UpdateDensity counts particles per cell and reclassifies the grid.
func (s *Simulator) UpdateDensity() error {
	g := s.grid
	clear(g.Density)
	g.classify()
	for _, pos := range s.particles.Pos {
		c, err := g.CellAt(pos)
		if err != nil {
			return err
		}
		g.Density[c]++
		g.markFluid(c)
	}
	return nil
}

// CalibrateRestDensity sets the drift-compensation target to the mean
// density of the current fluid cells and returns it. Until it is called the
// target stays 0 and drift compensation only biases toward lower density.
func (s *Simulator) CalibrateRestDensity() (float32, error) {
	if err := s.UpdateDensity(); err != nil {
		return 0, err
	}
	g := s.grid
	var sum float32
	n := 0
	for c, t := range g.Type {
		if t == FluidCell {
			sum += g.Density[c]
			n++
		}
	}
	if n > 0 {
		s.restDensity = sum / float32(n)
	}
	s.calibrated = true
	return s.restDensity, nil
}

func (s *Simulator) RestDensity() float32 { return s.restDensity }
