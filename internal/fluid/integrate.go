package fluid

import "github.com/go-gl/mathgl/mgl32"

// separationEpsilon bounds the distance used to normalise the push between
// two nearly coincident particles.
const separationEpsilon float32 = 1e-4

// Integrate applies gravity with an explicit Euler step.
func (s *Simulator) Integrate(dt float32) {
	p := s.particles
	for i := range p.Pos {
		p.Vel[i] = p.Vel[i].Add(s.gravity.Mul(dt))
		p.Pos[i] = p.Pos[i].Add(p.Vel[i].Mul(dt))
	}
}

// Bounds returns the range each particle coordinate is clamped to: one cell
// plus a radius inside the low wall, and the same distance inside the
// high wall's two-cell shell.
func (s *Simulator) Bounds() (lo, hi float32) {
	h := s.grid.H
	lo = h + s.radius + Origin
	hi = float32(s.resolution-1)*h - s.radius + Origin
	return lo, hi
}

// ClampToDomain clamps each coordinate independently and zeroes the
// velocity component of every clamped axis.
func (s *Simulator) ClampToDomain() {
	lo, hi := s.Bounds()
	p := s.particles
	for i := range p.Pos {
		for a := 0; a < 3; a++ {
			if p.Pos[i][a] < lo {
				p.Pos[i][a] = lo
				p.Vel[i][a] = 0
			}
			if p.Pos[i][a] > hi {
				p.Pos[i][a] = hi
				p.Vel[i][a] = 0
			}
		}
	}
}

// HandleCollisions runs the obstacle hook and then the wall clamp.
func (s *Simulator) HandleCollisions() {
	s.obstacle.Collide(s.particles, s.radius)
	s.ClampToDomain()
}

// SeparateParticles pushes overlapping pairs apart by half their overlap
// each. Pairs are visited in ascending (i, j) order against current
// positions, the same order as SeparateParticlesBrute, and the hash is
// updated after every push, so both paths produce identical results.
// Buckets are 2r wide, so any pair closer than 2r sits in adjacent buckets.
func (s *Simulator) SeparateParticles(iterations int) {
	pos := s.particles.Pos
	minDist := 2 * s.radius
	for it := 0; it < iterations; it++ {
		s.hash.Build(pos)
		for i := range pos {
			s.candidates = s.hash.Neighbors(pos[i], i, s.candidates[:0])
			for k := 0; k < len(s.candidates); k++ {
				j := s.candidates[k]
				if !pushApart(pos, i, j, minDist) {
					continue
				}
				s.hash.Move(j, pos[j])
				if s.hash.Move(i, pos[i]) {
					s.candidates = s.hash.Neighbors(pos[i], j, s.candidates[:0])
					k = -1
				}
			}
		}
	}
}

// SeparateParticlesBrute is the O(N^2) reference for SeparateParticles.
func (s *Simulator) SeparateParticlesBrute(iterations int) {
	pos := s.particles.Pos
	minDist := 2 * s.radius
	for it := 0; it < iterations; it++ {
		for i := range pos {
			for j := i + 1; j < len(pos); j++ {
				pushApart(pos, i, j, minDist)
			}
		}
	}
}

// pushApart reports whether the pair overlapped.
func pushApart(pos []mgl32.Vec3, i, j int, minDist float32) bool {
	diff := pos[i].Sub(pos[j])
	d := diff.Len()
	if d >= minDist {
		return false
	}
	if d < separationEpsilon {
		d = separationEpsilon
	}
	shift := diff.Mul(0.5 * (minDist - d) / d)
	pos[i] = pos[i].Add(shift)
	pos[j] = pos[j].Sub(shift)
	return true
}
