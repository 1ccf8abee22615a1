package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/flipsim/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

// Columns names the statistics Column can extract.
var Columns = []string{
	"kinetic_energy", "max_speed", "residual", "fluid_cells",
	"mean_height", "center_x", "mean_density", "density_std",
}

// Column extracts one named statistic from frames.
func Column(frames []dynamo.FrameStats, name string) ([]float64, error) {
	var get func(f dynamo.FrameStats) float64
	switch name {
	case "kinetic_energy":
		get = func(f dynamo.FrameStats) float64 { return f.KineticEnergy }
	case "max_speed":
		get = func(f dynamo.FrameStats) float64 { return f.MaxSpeed }
	case "residual":
		get = func(f dynamo.FrameStats) float64 { return f.Residual }
	case "fluid_cells":
		get = func(f dynamo.FrameStats) float64 { return float64(f.FluidCells) }
	case "mean_height":
		get = func(f dynamo.FrameStats) float64 { return f.MeanHeight }
	case "center_x":
		get = func(f dynamo.FrameStats) float64 { return f.CenterX }
	case "mean_density":
		get = func(f dynamo.FrameStats) float64 { return f.MeanDensity }
	case "density_std":
		get = func(f dynamo.FrameStats) float64 { return f.DensityStd }
	default:
		return nil, fmt.Errorf("unknown column %q (have %s)", name, strings.Join(Columns, ", "))
	}
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = get(f)
	}
	return out, nil
}

// Derivative is the central-difference rate of change of series sampled
// every dt, one-sided at the ends.
func Derivative(series []float64, dt float64) []float64 {
	n := len(series)
	out := make([]float64, n)
	if n < 2 || dt <= 0 {
		return out
	}
	out[0] = (series[1] - series[0]) / dt
	out[n-1] = (series[n-1] - series[n-2]) / dt
	for i := 1; i < n-1; i++ {
		out[i] = (series[i+1] - series[i-1]) / (2 * dt)
	}
	return out
}

// CrossingPeriod estimates the oscillation period of series from the mean
// spacing of its upward crossings of its own mean. It returns 0 when there
// are fewer than two crossings.
func CrossingPeriod(series []float64, dt float64) float64 {
	if len(series) < 3 {
		return 0
	}
	mean := stat.Mean(series, nil)
	var crossings []float64
	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1]-mean, series[i]-mean
		if prev < 0 && curr >= 0 {
			frac := -prev / (curr - prev)
			crossings = append(crossings, (float64(i-1)+frac)*dt)
		}
	}
	if len(crossings) < 2 {
		return 0
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1)
}

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XLabel, YLabel string
	Points         []struct{ X, Y float64 }
}

// NewPhasePortrait plots a statistic against its rate of change.
func NewPhasePortrait(frames []dynamo.FrameStats, column string, dt float64) (*PhasePortrait2D, error) {
	xs, err := Column(frames, column)
	if err != nil {
		return nil, err
	}
	ys := Derivative(xs, dt)

	portrait := &PhasePortrait2D{
		XLabel: column,
		YLabel: "d(" + column + ")/dt",
		Points: make([]struct{ X, Y float64 }, len(xs)),
	}
	for i := range xs {
		portrait.Points[i].X = xs[i]
		portrait.Points[i].Y = ys[i]
	}
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// Older points are drawn lighter.
	marks := []rune{'.', 'o', '•'}
	for i, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = marks[i*len(marks)/len(portrait.Points)]
		}
	}

	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
