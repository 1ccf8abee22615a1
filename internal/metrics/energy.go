package metrics

import (
	"math"

	"github.com/san-kum/flipsim/internal/dynamo"
)

// KineticEnergy is the mean per-particle kinetic energy over a run.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(_ dynamo.Fluid, stats dynamo.FrameStats) {
	e.total += stats.KineticEnergy
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// MaxSpeed is the fastest particle seen during a run.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(_ dynamo.Fluid, stats dynamo.FrameStats) {
	m.max = math.Max(m.max, stats.MaxSpeed)
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }
