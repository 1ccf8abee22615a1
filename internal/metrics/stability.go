package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/flipsim/internal/dynamo"
)

// Stability is the fraction of frames whose statistics stayed finite and
// whose fastest particle stayed under the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
	firstFrame int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(_ dynamo.Fluid, stats dynamo.FrameStats) {
	s.samples++
	if !Finite(stats) || stats.MaxSpeed > s.threshold {
		if s.violations == 0 {
			s.firstFrame = stats.Frame
		}
		s.violations++
	}
}

// Err returns dynamo.ErrUnstable, naming the first offending frame, once
// any observed frame violated the threshold.
func (s *Stability) Err() error {
	if s.violations == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d frames over %.0f or non-finite, first at frame %d",
		dynamo.ErrUnstable, s.violations, s.samples, s.threshold, s.firstFrame)
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.firstFrame = 0
}

// VolumeDrift is the largest relative change of the fluid cell count
// against the first observed frame. A liquid that compresses or gains
// volume shows up here.
type VolumeDrift struct {
	name     string
	initial  int
	maxDrift float64
	samples  int
}

func NewVolumeDrift() *VolumeDrift {
	return &VolumeDrift{name: "volume_drift"}
}

func (v *VolumeDrift) Name() string { return v.name }

func (v *VolumeDrift) Observe(_ dynamo.Fluid, stats dynamo.FrameStats) {
	if v.samples == 0 {
		v.initial = stats.FluidCells
	}
	v.samples++
	if v.initial != 0 {
		drift := math.Abs(float64(stats.FluidCells-v.initial)) / float64(v.initial)
		v.maxDrift = math.Max(v.maxDrift, drift)
	}
}

func (v *VolumeDrift) Value() float64 { return v.maxDrift }

func (v *VolumeDrift) Reset() {
	v.initial = 0
	v.maxDrift = 0
	v.samples = 0
}

// Residual is the mean post-solve divergence residual.
type Residual struct {
	name    string
	total   float64
	samples int
}

func NewResidual() *Residual {
	return &Residual{name: "residual"}
}

func (r *Residual) Name() string { return r.name }

func (r *Residual) Observe(_ dynamo.Fluid, stats dynamo.FrameStats) {
	r.total += stats.Residual
	r.samples++
}

func (r *Residual) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.total / float64(r.samples)
}

func (r *Residual) Reset() {
	r.total = 0
	r.samples = 0
}

// DefaultStabilitySpeed flags frames with particles crossing the whole
// tank in a fraction of a second.
const DefaultStabilitySpeed = 50.0

// Default returns the metric set attached to every stored run.
func Default() []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergy(),
		NewMaxSpeed(),
		NewResidual(),
		NewVolumeDrift(),
		NewStability(DefaultStabilitySpeed),
	}
}
