package fluid

import "github.com/go-gl/mathgl/mgl32"

// ObstacleHandler lets callers add an obstacle response to the collision
// pass. It runs before the wall clamp, twice per sub-step.
type ObstacleHandler interface {
	Collide(p *Particles, particleRadius float32)
}

// NoObstacle leaves particles untouched.
type NoObstacle struct{}

func (NoObstacle) Collide(*Particles, float32) {}

// SphereObstacle projects particles inside the sphere onto its surface and
// gives them the obstacle's velocity.
type SphereObstacle struct {
	Center   mgl32.Vec3
	Radius   float32
	Velocity mgl32.Vec3
}

func (o *SphereObstacle) Collide(p *Particles, particleRadius float32) {
	if o.Radius <= 0 {
		return
	}
	minDist := o.Radius + particleRadius
	for i := range p.Pos {
		d := p.Pos[i].Sub(o.Center)
		l := d.Len()
		if l >= minDist || l == 0 {
			continue
		}
		p.Pos[i] = o.Center.Add(d.Mul(minDist / l))
		p.Vel[i] = o.Velocity
	}
}
