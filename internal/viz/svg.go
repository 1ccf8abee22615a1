package viz

import (
	"bufio"
	"fmt"
	"io"
)

// CanvasToSVG writes every set sub-pixel of c as a dot. scale is the size
// of one sub-pixel in SVG units.
func CanvasToSVG(w io.Writer, c *Canvas, scale float64, fg, bg string) error {
	if c == nil {
		return fmt.Errorf("nil canvas")
	}

	width := float64(c.Width*2) * scale
	height := float64(c.Height*4) * scale

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, bg, fg)

	r := scale * 0.4
	for y := 0; y < c.Height*4; y++ {
		for x := 0; x < c.Width*2; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}

	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// SeriesToSVG writes values as a polyline scaled to fill width x height
// with a 10% margin. Fewer than two values is an error.
func SeriesToSVG(w io.Writer, values []float64, width, height int, stroke string) error {
	if len(values) < 2 {
		return fmt.Errorf("need at least 2 values, got %d", len(values))
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = min(minY, v)
		maxY = max(maxY, v)
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2
	stepX := float64(width) / float64(len(values)-1)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, stroke)

	for i, v := range values {
		x := float64(i) * stepX
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(bw, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
		}
	}

	bw.WriteString("\"/>\n</svg>\n")
	return bw.Flush()
}
