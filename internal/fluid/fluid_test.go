package fluid

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/flipsim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setParticles(s *Simulator, pos []mgl32.Vec3, vel mgl32.Vec3) {
	p := NewParticles(len(pos))
	copy(p.Pos, pos)
	for i := range p.Vel {
		p.Vel[i] = vel
	}
	s.particles = p
	s.hash = NewSpatialHash(2*s.radius, len(pos))
}

func randomBlock(rng *rand.Rand, n int, lo, size float32) []mgl32.Vec3 {
	pos := make([]mgl32.Vec3, n)
	for i := range pos {
		pos[i] = mgl32.Vec3{
			lo + rng.Float32()*size,
			lo + rng.Float32()*size,
			lo + rng.Float32()*size,
		}
	}
	return pos
}

func overlaps(pos []mgl32.Vec3, minDist float32) int {
	n := 0
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			if pos[i].Sub(pos[j]).Len() < minDist {
				n++
			}
		}
	}
	return n
}

func TestSetupSceneResolution4(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	g := s.Grid()
	assert.Equal(t, 4, s.Resolution())
	assert.Equal(t, 5, g.NX)
	assert.InDelta(t, 0.25, g.H, 1e-7)
	assert.InDelta(t, 0.075, s.ParticleRadius(), 1e-7)

	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				inside := i >= 1 && i <= 2 && j >= 1 && j <= 2 && k >= 1 && k <= 2
				want := float32(0)
				if inside {
					want = 1
				}
				assert.Equal(t, want, g.S[g.Index(i, j, k)], "cell (%d,%d,%d)", i, j, k)
			}
		}
	}

	// The 0.6-wide block cannot fit a single lattice column at this
	// resolution once the wall and radius margins are removed.
	assert.Equal(t, 0, s.NumParticles())
}

func TestSetupSceneInvalidResolution(t *testing.T) {
	for _, res := range []int{0, -1, -16} {
		_, err := New(res)
		assert.True(t, errors.Is(err, dynamo.ErrInvalidResolution), "resolution %d: %v", res, err)
	}
}

func TestSetupSceneParticlesInFluidRegion(t *testing.T) {
	s, err := New(16)
	require.NoError(t, err)
	require.Greater(t, s.NumParticles(), 0)

	lo, hi := s.Bounds()
	g := s.Grid()
	for i, pos := range s.Positions() {
		c, err := g.CellAt(pos)
		require.NoError(t, err)
		assert.Equal(t, float32(1), g.S[c], "particle %d in wall cell", i)
		for a := 0; a < 3; a++ {
			assert.GreaterOrEqual(t, pos[a], lo-1e-6)
			assert.LessOrEqual(t, pos[a], hi+1e-6)
		}
	}
}

func TestSetupSceneResetReplacesParticles(t *testing.T) {
	s, err := New(12)
	require.NoError(t, err)
	n := s.NumParticles()

	s.Velocities()[0] = mgl32.Vec3{1, 2, 3}
	require.NoError(t, s.Reset())
	assert.Equal(t, n, s.NumParticles())
	assert.Equal(t, mgl32.Vec3{}, s.Velocities()[0])

	count, radius, err := s.SetupScene(20)
	require.NoError(t, err)
	assert.Equal(t, count, s.NumParticles())
	assert.InDelta(t, 0.3/20.0, radius, 1e-7)
	assert.Equal(t, 21*21*21, s.Grid().NumCells())
}

func TestResetKeepsCalibration(t *testing.T) {
	s, err := New(16)
	require.NoError(t, err)
	rest, err := s.CalibrateRestDensity()
	require.NoError(t, err)
	require.Greater(t, rest, float32(0))

	require.NoError(t, s.Step(1.0/60, DefaultParams()))
	require.NoError(t, s.Reset())
	assert.Equal(t, rest, s.RestDensity())

	_, _, err = s.SetupScene(16)
	require.NoError(t, err)
	assert.Zero(t, s.RestDensity())
	require.NoError(t, s.Reset())
	assert.Zero(t, s.RestDensity(), "a fresh scene stays uncalibrated")
}

func TestClampToDomain(t *testing.T) {
	s, err := New(10)
	require.NoError(t, err)
	lo, hi := s.Bounds()

	setParticles(s, []mgl32.Vec3{
		{-0.49, 0, 0.49},
		{0, 0, 0},
		{0.7, -0.7, 0.1},
	}, mgl32.Vec3{1, 1, 1})
	s.ClampToDomain()

	p := s.Particles()
	assert.Equal(t, mgl32.Vec3{lo, 0, hi}, p.Pos[0])
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, p.Vel[0])
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, p.Pos[1])
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, p.Vel[1])
	assert.Equal(t, mgl32.Vec3{hi, lo, 0.1}, p.Pos[2])
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, p.Vel[2])
}

func TestIntegrate(t *testing.T) {
	s, err := New(10, WithGravity(mgl32.Vec3{0, -10, 0}))
	require.NoError(t, err)
	setParticles(s, []mgl32.Vec3{{0, 0, 0}}, mgl32.Vec3{1, 0, 0})

	s.Integrate(0.1)
	p := s.Particles()
	assert.InDelta(t, 1.0, p.Vel[0][0], 1e-6)
	assert.InDelta(t, -1.0, p.Vel[0][1], 1e-6)
	assert.InDelta(t, 0.1, p.Pos[0][0], 1e-6)
	assert.InDelta(t, -0.1, p.Pos[0][1], 1e-6)
}

func TestSeparateParticlesExactDistance(t *testing.T) {
	for name, separate := range map[string]func(*Simulator, int){
		"hash":  (*Simulator).SeparateParticles,
		"brute": (*Simulator).SeparateParticlesBrute,
	} {
		t.Run(name, func(t *testing.T) {
			s, err := New(4)
			require.NoError(t, err)
			require.InDelta(t, 0.075, s.ParticleRadius(), 1e-7)

			setParticles(s, []mgl32.Vec3{{-0.05, 0.1, 0}, {0.05, 0.1, 0}}, mgl32.Vec3{})
			separate(s, 1)

			p := s.Particles().Pos
			assert.InDelta(t, 0.15, p[0].Sub(p[1]).Len(), 1e-6)
			mid := p[0].Add(p[1]).Mul(0.5)
			assert.InDelta(t, 0, mid[0], 1e-6)
			assert.InDelta(t, 0.1, mid[1], 1e-6)
			assert.InDelta(t, -0.075, p[0][0], 1e-6)
			assert.InDelta(t, 0.075, p[1][0], 1e-6)
		})
	}
}

func TestSeparateParticlesCoincident(t *testing.T) {
	s, err := New(8)
	require.NoError(t, err)
	setParticles(s, []mgl32.Vec3{{0, 0, 0}, {0, 0, 0}}, mgl32.Vec3{})

	s.SeparateParticles(3)
	for _, p := range s.Positions() {
		for a := 0; a < 3; a++ {
			assert.False(t, p[a] != p[a], "NaN after separating coincident particles")
		}
	}
}

func TestSeparateParticlesHashMatchesBrute(t *testing.T) {
	pos := []mgl32.Vec3{
		{-0.30, -0.30, -0.30}, {-0.28, -0.30, -0.30},
		{0.00, 0.00, 0.00}, {0.01, 0.01, 0.00},
		{0.30, 0.10, -0.20}, {0.30, 0.13, -0.20}, {0.33, 0.115, -0.20},
		{-0.20, 0.30, 0.25}, {-0.20, 0.30, 0.28},
		{0.10, -0.35, 0.30},
	}

	hashed, err := New(15)
	require.NoError(t, err)
	brute, err := New(15)
	require.NoError(t, err)
	setParticles(hashed, pos, mgl32.Vec3{})
	setParticles(brute, pos, mgl32.Vec3{})

	hashed.SeparateParticles(1)
	brute.SeparateParticlesBrute(1)

	for i := range pos {
		for a := 0; a < 3; a++ {
			assert.Equal(t, brute.Positions()[i][a], hashed.Positions()[i][a], "particle %d axis %d", i, a)
		}
	}
}

func TestSeparateParticlesHashMatchesBruteDense(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		size       float32
		iterations int
	}{
		{"20 particles one pass", 20, 0.08, 1},
		{"80 particles three passes", 80, 0.15, 3},
		{"200 particles five passes", 200, 0.3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(0); seed < 50; seed++ {
				pos := randomBlock(rand.New(rand.NewSource(seed)), tt.n, -0.05, tt.size)

				hashed, err := New(15)
				require.NoError(t, err)
				brute, err := New(15)
				require.NoError(t, err)
				setParticles(hashed, pos, mgl32.Vec3{})
				setParticles(brute, pos, mgl32.Vec3{})

				hashed.SeparateParticles(tt.iterations)
				brute.SeparateParticlesBrute(tt.iterations)

				require.Equal(t, brute.Positions(), hashed.Positions(), "seed %d", seed)
			}
		})
	}
}

func TestSeparateParticlesNonOverlapTendency(t *testing.T) {
	s, err := New(15)
	require.NoError(t, err)
	minDist := 2 * s.ParticleRadius()

	initial := randomBlock(rand.New(rand.NewSource(3)), 60, -0.15, 0.3)
	prev := overlaps(initial, minDist)
	require.Greater(t, prev, 0)

	for _, k := range []int{1, 3, 10} {
		setParticles(s, initial, mgl32.Vec3{})
		s.SeparateParticles(k)
		got := overlaps(s.Positions(), minDist)
		assert.LessOrEqual(t, got, prev, "k=%d", k)
		prev = got
	}
	assert.Less(t, prev, overlaps(initial, minDist))
}

func TestTransferRoundTripPIC(t *testing.T) {
	s, err := New(16)
	require.NoError(t, err)

	var pos []mgl32.Vec3
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			for k := 0; k < 6; k++ {
				pos = append(pos, mgl32.Vec3{
					-0.1 + 0.03*float32(i),
					-0.1 + 0.03*float32(j),
					-0.1 + 0.03*float32(k),
				})
			}
		}
	}
	vel := mgl32.Vec3{0.3, -0.2, 0.1}
	setParticles(s, pos, vel)

	require.NoError(t, s.TransferToGrid())
	require.NoError(t, s.TransferFromGrid(0))

	for i, v := range s.Velocities() {
		for a := 0; a < 3; a++ {
			assert.InDelta(t, vel[a], v[a], 1e-4, "particle %d axis %d", i, a)
		}
	}
}

func TestTransferRoundTripFLIPKeepsVelocity(t *testing.T) {
	s, err := New(12)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(11))
	want := make([]mgl32.Vec3, s.NumParticles())
	for i := range s.Velocities() {
		v := mgl32.Vec3{rng.Float32() - 0.5, rng.Float32() - 0.5, rng.Float32() - 0.5}
		s.Velocities()[i] = v
		want[i] = v
	}

	require.NoError(t, s.TransferToGrid())
	require.NoError(t, s.TransferFromGrid(1))

	for i, v := range s.Velocities() {
		for a := 0; a < 3; a++ {
			assert.InDelta(t, want[i][a], v[a], 1e-6)
		}
	}
}

func TestTransferZeroesWallFaces(t *testing.T) {
	s, err := New(12)
	require.NoError(t, err)
	for i := range s.Velocities() {
		s.Velocities()[i] = mgl32.Vec3{1, 1, 1}
	}
	require.NoError(t, s.TransferToGrid())

	g := s.Grid()
	nonZero := 0
	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				c := g.Index(i, j, k)
				for a := 0; a < 3; a++ {
					if !g.faceIsOpen(i, j, k, a) {
						assert.Zero(t, g.Vel[c][a], "wall face (%d,%d,%d) axis %d", i, j, k, a)
					} else if g.Vel[c][a] != 0 {
						nonZero++
					}
				}
			}
		}
	}
	assert.Greater(t, nonZero, 0)
	assert.Equal(t, g.Vel, g.PrevVel)
}

func TestTransferClassifiesCells(t *testing.T) {
	s, err := New(12)
	require.NoError(t, err)
	require.NoError(t, s.TransferToGrid())

	g := s.Grid()
	occupied := make(map[int]bool)
	for _, pos := range s.Positions() {
		c, err := g.CellAt(pos)
		require.NoError(t, err)
		occupied[c] = true
	}
	for c, typ := range g.Type {
		switch {
		case g.S[c] == 0:
			assert.Equal(t, SolidCell, typ)
		case occupied[c]:
			assert.Equal(t, FluidCell, typ)
		default:
			assert.Equal(t, EmptyCell, typ)
		}
	}
	assert.Equal(t, len(occupied), g.FluidCells())
}

func TestTransferEscapedParticle(t *testing.T) {
	s, err := New(8)
	require.NoError(t, err)

	for _, pos := range []mgl32.Vec3{{5, 0, 0}, {0, -0.6, 0}, {float32NaN(), 0, 0}} {
		setParticles(s, []mgl32.Vec3{pos}, mgl32.Vec3{})
		err := s.TransferToGrid()
		assert.True(t, errors.Is(err, dynamo.ErrParticleEscaped), "%v: %v", pos, err)
		err = s.UpdateDensity()
		assert.True(t, errors.Is(err, dynamo.ErrParticleEscaped), "%v: %v", pos, err)
	}
}

func TestTransferFromGridEscapedParticle(t *testing.T) {
	s, err := New(8)
	require.NoError(t, err)
	require.Greater(t, s.NumParticles(), 0)
	require.NoError(t, s.TransferToGrid())

	last := s.NumParticles() - 1
	s.Velocities()[last] = mgl32.Vec3{0.25, 0, 0}
	s.Positions()[last] = mgl32.Vec3{0, 0, 2}

	err = s.TransferFromGrid(0.9)
	require.True(t, errors.Is(err, dynamo.ErrParticleEscaped), "got %v", err)
	assert.Equal(t, mgl32.Vec3{0.25, 0, 0}, s.Velocities()[last], "escaped particle must keep its velocity")
}

func float32NaN() float32 {
	zero := float32(0)
	return zero / zero
}

func TestTrilinearWeightsSumToOne(t *testing.T) {
	s, err := New(10)
	require.NoError(t, err)
	g := s.Grid()
	rng := rand.New(rand.NewSource(5))
	for _, pos := range randomBlock(rng, 50, -0.3, 0.6) {
		for axis := 0; axis < 3; axis++ {
			st, err := g.stencil(pos, axis)
			require.NoError(t, err)
			var sum float32
			for _, w := range st.w {
				assert.GreaterOrEqual(t, w, float32(0))
				sum += w
			}
			assert.InDelta(t, 1, sum, 1e-5)
		}
	}
}

func TestSolveIncompressibilityReducesDivergence(t *testing.T) {
	s, err := New(16)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(7))
	for i := range s.Velocities() {
		s.Velocities()[i] = mgl32.Vec3{rng.Float32() - 0.5, rng.Float32() - 0.5, rng.Float32() - 0.5}
	}
	require.NoError(t, s.TransferToGrid())
	require.NoError(t, s.UpdateDensity())

	g := s.Grid()
	start := append([]mgl32.Vec3(nil), g.Vel...)
	prev := g.Residual()
	initial := prev
	require.Greater(t, initial, 0.0)

	for _, n := range []int{1, 5, 20, 80} {
		copy(g.Vel, start)
		s.SolveIncompressibility(n, 1.0, false)
		got := g.Residual()
		assert.LessOrEqual(t, got, prev, "iterations=%d", n)
		prev = got
	}
	assert.Less(t, prev, 0.5*initial)
}

func TestSolveIncompressibilityDriftCompensation(t *testing.T) {
	tests := []struct {
		name    string
		cell    [3]int
		pos     mgl32.Vec3
		lowWall bool
	}{
		{"interior cell", [3]int{4, 4, 4}, mgl32.Vec3{0.06, 0.06, 0.06}, false},
		{"cell against the low x wall", [3]int{1, 4, 4}, mgl32.Vec3{-0.3125, 0.06, 0.06}, true},
	}

	const weight = 0.5
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, compensate := range []bool{true, false} {
				s, err := New(8, WithDriftWeight(weight))
				require.NoError(t, err)
				setParticles(s, []mgl32.Vec3{tt.pos, tt.pos, tt.pos}, mgl32.Vec3{})
				require.NoError(t, s.UpdateDensity())
				s.restDensity = 1

				g := s.Grid()
				clear(g.Vel)
				i, j, k := tt.cell[0], tt.cell[1], tt.cell[2]
				c := g.Index(i, j, k)
				require.Equal(t, FluidCell, g.Type[c])
				require.Equal(t, float32(3), g.Density[c])

				s.SolveIncompressibility(1, 1.9, compensate)

				if !compensate {
					assert.Zero(t, g.Divergence(i, j, k))
					continue
				}
				// Outflow of weight*(density-rest), zero velocity contributes nothing.
				assert.InDelta(t, weight*(3-1), g.Divergence(i, j, k), 1e-6)

				open := float32(6)
				if tt.lowWall {
					open = 5
					assert.Zero(t, g.Vel[c][0], "wall face must not move")
				} else {
					assert.InDelta(t, -weight*2/open, g.Vel[c][0], 1e-6)
				}
				assert.InDelta(t, weight*2/open, g.Vel[g.Index(i+1, j, k)][0], 1e-6)
				assert.InDelta(t, -weight*2/open, g.Vel[c][1], 1e-6)
			}
		})
	}
}

func TestSolveIncompressibilityLeavesWallFaces(t *testing.T) {
	s, err := New(12)
	require.NoError(t, err)
	for i := range s.Velocities() {
		s.Velocities()[i] = mgl32.Vec3{0, -1, 0}
	}
	require.NoError(t, s.TransferToGrid())
	require.NoError(t, s.UpdateDensity())
	s.SolveIncompressibility(40, 1.9, true)

	g := s.Grid()
	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				for a := 0; a < 3; a++ {
					if !g.faceIsOpen(i, j, k, a) {
						assert.Zero(t, g.Vel[g.Index(i, j, k)][a])
					}
				}
			}
		}
	}
}

func TestUpdateDensity(t *testing.T) {
	s, err := New(12)
	require.NoError(t, err)
	require.NoError(t, s.UpdateDensity())

	var total float32
	for _, d := range s.Densities() {
		total += d
	}
	assert.Equal(t, float32(s.NumParticles()), total)

	g := s.Grid()
	for c, d := range g.Density {
		if d > 0 {
			assert.Equal(t, FluidCell, g.Type[c])
		}
	}
}

func TestCalibrateRestDensity(t *testing.T) {
	s, err := New(12)
	require.NoError(t, err)
	assert.Zero(t, s.RestDensity())

	rest, err := s.CalibrateRestDensity()
	require.NoError(t, err)
	assert.Greater(t, rest, float32(0))
	assert.InDelta(t, float32(s.NumParticles())/float32(s.FluidCells()), rest, 1e-4)
}

func TestStepPreservesParticlesAndBounds(t *testing.T) {
	s, err := New(12)
	require.NoError(t, err)
	n := s.NumParticles()
	lo, hi := s.Bounds()

	for frame := 0; frame < 30; frame++ {
		require.NoError(t, s.Step(1.0/60, DefaultParams()))
		require.Equal(t, n, s.NumParticles())
	}
	for _, pos := range s.Positions() {
		for a := 0; a < 3; a++ {
			assert.GreaterOrEqual(t, pos[a], lo)
			assert.LessOrEqual(t, pos[a], hi)
		}
	}
}

func TestStepDeterministic(t *testing.T) {
	params := DefaultParams()
	params.SubSteps = 2
	a, err := New(10)
	require.NoError(t, err)
	b, err := New(10)
	require.NoError(t, err)

	for frame := 0; frame < 10; frame++ {
		require.NoError(t, a.Step(1.0/30, params))
		require.NoError(t, b.Step(1.0/30, params))
	}
	assert.Equal(t, a.Positions(), b.Positions())
	assert.Equal(t, a.Velocities(), b.Velocities())
}

func TestStepFluidFalls(t *testing.T) {
	s, err := New(12)
	require.NoError(t, err)
	mean := func() float32 {
		var y float32
		for _, p := range s.Positions() {
			y += p[1]
		}
		return y / float32(s.NumParticles())
	}
	before := mean()
	for frame := 0; frame < 20; frame++ {
		require.NoError(t, s.Step(1.0/60, DefaultParams()))
	}
	assert.Less(t, mean(), before)
}

func TestStepRejectsBadParams(t *testing.T) {
	s, err := New(8)
	require.NoError(t, err)

	tests := []struct {
		name   string
		dt     float32
		mutate func(*Params)
	}{
		{"zero dt", 0, func(*Params) {}},
		{"negative dt", -0.1, func(*Params) {}},
		{"flip ratio above one", 0.01, func(p *Params) { p.FlipRatio = 1.5 }},
		{"negative flip ratio", 0.01, func(p *Params) { p.FlipRatio = -0.1 }},
		{"no pressure iterations", 0.01, func(p *Params) { p.PressureIterations = 0 }},
		{"negative separation", 0.01, func(p *Params) { p.SeparationIterations = -1 }},
		{"over-relaxation two", 0.01, func(p *Params) { p.OverRelaxation = 2 }},
		{"over-relaxation zero", 0.01, func(p *Params) { p.OverRelaxation = 0 }},
		{"no sub-steps", 0.01, func(p *Params) { p.SubSteps = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := s.Step(tt.dt, p)
			assert.True(t, errors.Is(err, dynamo.ErrParameterBounds), "got %v", err)
		})
	}
}

func TestSphereObstacle(t *testing.T) {
	obstacle := &SphereObstacle{Center: mgl32.Vec3{0, 0, 0}, Radius: 0.1, Velocity: mgl32.Vec3{0, 0.5, 0}}
	s, err := New(10, WithObstacle(obstacle))
	require.NoError(t, err)
	setParticles(s, []mgl32.Vec3{{0.05, 0, 0}, {0.3, 0, 0}}, mgl32.Vec3{1, 0, 0})

	s.HandleCollisions()
	p := s.Particles()
	assert.InDelta(t, 0.1+s.ParticleRadius(), p.Pos[0].Len(), 1e-6)
	assert.Equal(t, obstacle.Velocity, p.Vel[0])
	assert.Equal(t, mgl32.Vec3{0.3, 0, 0}, p.Pos[1])
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, p.Vel[1])
}

func TestNoObstacleIsPassThrough(t *testing.T) {
	s, err := New(10)
	require.NoError(t, err)
	before := append([]mgl32.Vec3(nil), s.Positions()...)
	NoObstacle{}.Collide(s.Particles(), s.ParticleRadius())
	assert.Equal(t, before, s.Positions())

	s.SetObstacle(nil)
	assert.IsType(t, NoObstacle{}, s.obstacle)
}

func TestSpatialHashNeighbors(t *testing.T) {
	h := NewSpatialHash(0.1, 4)
	pos := []mgl32.Vec3{{0, 0, 0}, {0.05, 0, 0}, {0.4, 0.4, 0.4}, {-0.02, 0.09, 0}}
	h.Build(pos)

	got := h.Neighbors(pos[0], 0, nil)
	assert.Equal(t, []int{1, 3}, got)
	assert.Empty(t, h.Neighbors(pos[2], 2, nil))
	assert.Equal(t, []int{3}, h.Neighbors(pos[1], 1, nil))
}

func TestSpatialHashMove(t *testing.T) {
	h := NewSpatialHash(0.1, 3)
	pos := []mgl32.Vec3{{0, 0, 0}, {0.05, 0, 0}, {0.4, 0.4, 0.4}}
	h.Build(pos)
	assert.Equal(t, []int{1}, h.Neighbors(pos[0], 0, nil))

	assert.False(t, h.Move(1, mgl32.Vec3{0.06, 0, 0}))

	pos[2] = mgl32.Vec3{0.02, 0.01, 0}
	assert.True(t, h.Move(2, pos[2]))
	assert.Equal(t, []int{1, 2}, h.Neighbors(pos[0], 0, nil))
	assert.Empty(t, h.Neighbors(mgl32.Vec3{0.4, 0.4, 0.4}, -1, nil))

	// Neighbors only sorts what it appended.
	out := h.Neighbors(pos[0], 0, []int{9})
	assert.Equal(t, []int{9, 1, 2}, out)
}

func TestCellTypeString(t *testing.T) {
	assert.Equal(t, "solid", SolidCell.String())
	assert.Equal(t, "fluid", FluidCell.String())
	assert.Equal(t, "empty", EmptyCell.String())
	assert.Equal(t, "CellType(9)", CellType(9).String())
}

func TestUpdateColors(t *testing.T) {
	s, err := New(10)
	require.NoError(t, err)
	require.Greater(t, s.NumParticles(), 1)

	for i := range s.particles.Color {
		s.particles.Color[i] = mgl32.Vec3{1, 1, 0}
	}
	s.UpdateColors()
	assert.InDeltaSlice(t, []float32{0.99, 0.99, 0.01}, s.Colors()[0][:], 1e-6)

	_, err = s.CalibrateRestDensity()
	require.NoError(t, err)
	require.Greater(t, s.RestDensity(), float32(0))

	cell, err := s.grid.CellAt(s.particles.Pos[0])
	require.NoError(t, err)
	s.grid.Density[cell] = 0
	s.UpdateColors()
	assert.Equal(t, foamColor, s.Colors()[0])
}
