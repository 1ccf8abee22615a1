package fluid

import "github.com/go-gl/mathgl/mgl32"

// Particles is the Lagrangian side of the solver. Colours are derived for
// display and never feed back into the simulation.
type Particles struct {
	Pos   []mgl32.Vec3
	Vel   []mgl32.Vec3
	Color []mgl32.Vec3
}

func NewParticles(n int) *Particles {
	p := &Particles{
		Pos:   make([]mgl32.Vec3, n),
		Vel:   make([]mgl32.Vec3, n),
		Color: make([]mgl32.Vec3, n),
	}
	for i := range p.Color {
		p.Color[i] = mgl32.Vec3{1, 1, 1}
	}
	return p
}

func (p *Particles) Len() int { return len(p.Pos) }
