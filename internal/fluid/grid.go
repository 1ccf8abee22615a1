package fluid

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/flipsim/internal/dynamo"
)

// Origin is the world coordinate of the grid's minimum corner on every axis.
const Origin float32 = -0.5

type CellType uint8

const (
	EmptyCell CellType = iota
	FluidCell
	SolidCell
)

func (c CellType) String() string {
	switch c {
	case EmptyCell:
		return "empty"
	case FluidCell:
		return "fluid"
	case SolidCell:
		return "solid"
	}
	return fmt.Sprintf("CellType(%d)", uint8(c))
}

// Grid is a staggered (MAC) grid. Vel[c][a] is the velocity on the
// negative-a face of cell c, shared with the positive-a face of the
// neighbouring cell.
type Grid struct {
	NX, NY, NZ int
	H          float32

	// S is 0 for wall cells and 1 for cells liquid may occupy. It is fixed
	// at setup.
	S    []float32
	Type []CellType

	Vel     []mgl32.Vec3
	PrevVel []mgl32.Vec3
	Weight  [3][]float32

	// Density counts the particles inside each cell.
	Density []float32
}

// NewGrid allocates a (resolution+1)^3 grid with cell size 1/resolution and
// marks its wall shell solid.
func NewGrid(resolution int) (*Grid, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("%w: got %d", dynamo.ErrInvalidResolution, resolution)
	}
	n := resolution + 1
	g := &Grid{
		NX: n, NY: n, NZ: n,
		H: 1 / float32(resolution),
	}
	cells := g.NumCells()
	g.S = make([]float32, cells)
	g.Type = make([]CellType, cells)
	g.Vel = make([]mgl32.Vec3, cells)
	g.PrevVel = make([]mgl32.Vec3, cells)
	for a := 0; a < 3; a++ {
		g.Weight[a] = make([]float32, cells)
	}
	g.Density = make([]float32, cells)

	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				if !g.isWall(i, g.NX) && !g.isWall(j, g.NY) && !g.isWall(k, g.NZ) {
					g.S[g.Index(i, j, k)] = 1
				}
			}
		}
	}
	g.classify()
	return g, nil
}

// isWall reports whether index i on an axis of n cells lies in the shell:
// one layer on the low side, two on the high side where the interpolation
// stencil reaches one cell past the particle.
func (g *Grid) isWall(i, n int) bool {
	return i == 0 || i >= n-2
}

func (g *Grid) NumCells() int { return g.NX * g.NY * g.NZ }

func (g *Grid) Index(i, j, k int) int {
	return i + j*g.NX + k*g.NX*g.NY
}

func (g *Grid) dims() [3]int { return [3]int{g.NX, g.NY, g.NZ} }

func (g *Grid) InBounds(i, j, k int) bool {
	return i >= 0 && i < g.NX && j >= 0 && j < g.NY && k >= 0 && k < g.NZ
}

// CellCoords returns the cell containing pos.
func (g *Grid) CellCoords(pos mgl32.Vec3) (i, j, k int, err error) {
	var c [3]int
	for a := 0; a < 3; a++ {
		rel := float64((pos[a] - Origin) / g.H)
		if math.IsNaN(rel) || math.IsInf(rel, 0) {
			return 0, 0, 0, fmt.Errorf("%w: position %v", dynamo.ErrParticleEscaped, pos)
		}
		c[a] = int(math.Floor(rel))
	}
	if !g.InBounds(c[0], c[1], c[2]) {
		return 0, 0, 0, fmt.Errorf("%w: position %v maps to cell %v", dynamo.ErrParticleEscaped, pos, c)
	}
	return c[0], c[1], c[2], nil
}

// CellAt returns the linear index of the cell containing pos.
func (g *Grid) CellAt(pos mgl32.Vec3) (int, error) {
	i, j, k, err := g.CellCoords(pos)
	if err != nil {
		return 0, err
	}
	return g.Index(i, j, k), nil
}

// classify resets every cell to Solid or Empty from its solidity.
func (g *Grid) classify() {
	for c, s := range g.S {
		if s == 0 {
			g.Type[c] = SolidCell
		} else {
			g.Type[c] = EmptyCell
		}
	}
}

func (g *Grid) markFluid(c int) {
	if g.Type[c] != SolidCell {
		g.Type[c] = FluidCell
	}
}

// faceIsOpen reports whether the negative-axis face of cell (i,j,k) lies
// between two non-solid cells. Faces touching a wall are held at zero.
func (g *Grid) faceIsOpen(i, j, k, axis int) bool {
	if g.Type[g.Index(i, j, k)] == SolidCell {
		return false
	}
	n := [3]int{i, j, k}
	n[axis]--
	if n[axis] < 0 {
		return false
	}
	return g.Type[g.Index(n[0], n[1], n[2])] != SolidCell
}

// Divergence is the net outflow of cell (i,j,k). Cells on the outer layer
// have no positive faces and report zero.
func (g *Grid) Divergence(i, j, k int) float32 {
	if i < 0 || j < 0 || k < 0 || i >= g.NX-1 || j >= g.NY-1 || k >= g.NZ-1 {
		return 0
	}
	c := g.Index(i, j, k)
	return g.Vel[g.Index(i+1, j, k)][0] - g.Vel[c][0] +
		g.Vel[g.Index(i, j+1, k)][1] - g.Vel[c][1] +
		g.Vel[g.Index(i, j, k+1)][2] - g.Vel[c][2]
}

// Residual sums |divergence| over fluid cells.
func (g *Grid) Residual() float64 {
	var sum float64
	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				if g.Type[g.Index(i, j, k)] == FluidCell {
					sum += math.Abs(float64(g.Divergence(i, j, k)))
				}
			}
		}
	}
	return sum
}

func (g *Grid) FluidCells() int {
	n := 0
	for _, t := range g.Type {
		if t == FluidCell {
			n++
		}
	}
	return n
}
