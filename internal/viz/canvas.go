package viz

import (
	"strings"

	"github.com/san-kum/flipsim/internal/fluid"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. The canvas is
// (Width*2) x (Height*4) sub-pixels with y growing downwards.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// SideView draws the tank seen along z: a sub-pixel is lit when any
// fluid cell lies behind it. The tank outline is drawn around the cells
// liquid may occupy.
func SideView(g *fluid.Grid, c *Canvas) {
	c.Clear()
	pw, ph := c.Width*2, c.Height*4
	if pw < 2 || ph < 2 || g.NX < 3 || g.NY < 3 {
		return
	}

	occupied := make([]bool, g.NX*g.NY)
	for k := 0; k < g.NZ; k++ {
		for j := 0; j < g.NY; j++ {
			for i := 0; i < g.NX; i++ {
				if g.Type[g.Index(i, j, k)] == fluid.FluidCell {
					occupied[i+j*g.NX] = true
				}
			}
		}
	}

	// Interior cells 1..NX-3 span the drawable area.
	cols, rows := g.NX-3, g.NY-3
	for py := 0; py < ph; py++ {
		j := 1 + (ph-1-py)*rows/ph
		for px := 0; px < pw; px++ {
			i := 1 + px*cols/pw
			if occupied[i+j*g.NX] {
				c.Set(px, py)
			}
		}
	}

	c.DrawLine(0, 0, 0, ph-1)
	c.DrawLine(pw-1, 0, pw-1, ph-1)
	c.DrawLine(0, ph-1, pw-1, ph-1)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
