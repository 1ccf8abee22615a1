package fluid

import "github.com/go-gl/mathgl/mgl32"

const (
	colorFade = 0.01
	// foamDensity is the fraction of the rest density below which a
	// particle is drawn as foam.
	foamDensity = 0.7
)

var foamColor = mgl32.Vec3{0.8, 0.8, 1}

// UpdateColors fades every particle toward blue and, once a rest density
// is calibrated, whitens particles in sparse cells.
func (s *Simulator) UpdateColors() {
	p := s.particles
	g := s.grid
	for i := range p.Color {
		c := p.Color[i]
		c[0] = mgl32.Clamp(c[0]-colorFade, 0, 1)
		c[1] = mgl32.Clamp(c[1]-colorFade, 0, 1)
		c[2] = mgl32.Clamp(c[2]+colorFade, 0, 1)

		if s.restDensity > 0 {
			if cell, err := g.CellAt(p.Pos[i]); err == nil && g.Density[cell]/s.restDensity < foamDensity {
				c = foamColor
			}
		}
		p.Color[i] = c
	}
}
