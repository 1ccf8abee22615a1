package sim_test

import (
	"context"
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flipsim/internal/dynamo"
	"github.com/san-kum/flipsim/internal/fluid"
	"github.com/san-kum/flipsim/internal/metrics"
	"github.com/san-kum/flipsim/internal/sim"
)

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string                            { return "count" }
func (c *countingMetric) Observe(dynamo.Fluid, dynamo.FrameStats) { c.count++ }
func (c *countingMetric) Value() float64                          { return float64(c.count) }
func (c *countingMetric) Reset()                                  { c.count = 0 }

type recordingObserver struct {
	frames []int
}

func (r *recordingObserver) OnStep(_ dynamo.Fluid, stats dynamo.FrameStats) {
	r.frames = append(r.frames, stats.Frame)
}

var _ = Describe("Runner", func() {
	var (
		sys *fluid.Simulator
		cfg dynamo.Config
	)

	BeforeEach(func() {
		var err error
		sys, err = fluid.New(8)
		Expect(err).NotTo(HaveOccurred())
		cfg = dynamo.Config{Dt: 1.0 / 60, Frames: 5, ValidateState: true}
	})

	It("records one frame per step", func() {
		result, err := sim.New(sys, fluid.DefaultParams()).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.StepsTaken).To(Equal(5))
		Expect(result.Frames).To(HaveLen(5))
		Expect(result.Errors).To(BeEmpty())

		for i, f := range result.Frames {
			Expect(f.Frame).To(Equal(i + 1))
			Expect(f.Time).To(BeNumerically("~", float64(i+1)/60, 1e-12))
			Expect(metrics.Finite(f)).To(BeTrue())
		}
	})

	It("drives metrics and observers every frame", func() {
		runner := sim.New(sys, fluid.DefaultParams())
		counter := &countingMetric{}
		observer := &recordingObserver{}
		runner.AddMetric(counter)
		runner.AddObserver(observer)
		for _, m := range metrics.Default() {
			runner.AddMetric(m)
		}

		result, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Metrics).To(HaveKeyWithValue("count", 5.0))
		Expect(result.Metrics).To(HaveKey("kinetic_energy"))
		Expect(result.Metrics).To(HaveKeyWithValue("stability", 1.0))
		Expect(observer.frames).To(Equal([]int{1, 2, 3, 4, 5}))
	})

	It("keeps the particle count", func() {
		n := sys.NumParticles()
		_, err := sim.New(sys, fluid.DefaultParams()).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.NumParticles()).To(Equal(n))
	})

	DescribeTable("rejects invalid configuration",
		func(c dynamo.Config, p fluid.Params) {
			_, err := sim.New(sys, p).Run(context.Background(), c)
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		},
		Entry("zero dt", dynamo.Config{Dt: 0, Frames: 10}, fluid.DefaultParams()),
		Entry("negative dt", dynamo.Config{Dt: -0.1, Frames: 10}, fluid.DefaultParams()),
		Entry("zero frames", dynamo.Config{Dt: 0.01, Frames: 0}, fluid.DefaultParams()),
		Entry("bad flip ratio", dynamo.Config{Dt: 0.01, Frames: 10}, fluid.Params{FlipRatio: 2, PressureIterations: 1, OverRelaxation: 1, SubSteps: 1}),
	)

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := sim.New(sys, fluid.DefaultParams()).Run(ctx, cfg)
		Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(result.StepsTaken).To(Equal(0))
	})

	It("aborts with frame context when a particle leaves the grid", func() {
		nan := float32(0)
		nan /= nan
		sys.Positions()[0] = mgl32.Vec3{nan, 0, 0}

		result, err := sim.New(sys, fluid.DefaultParams()).Run(context.Background(), cfg)
		Expect(errors.Is(err, dynamo.ErrParticleEscaped)).To(BeTrue())

		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Frame).To(Equal(1))
		Expect(result.StepsTaken).To(Equal(0))
	})

	It("stops early when the callback declines", func() {
		seen := 0
		err := sim.New(sys, fluid.DefaultParams()).RunWithCallback(context.Background(), cfg, func(stats dynamo.FrameStats) bool {
			seen++
			return stats.Frame < 3
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal(3))
	})
})

var _ = Describe("Sweep", func() {
	It("runs every case independently", func() {
		pic := fluid.DefaultParams()
		pic.FlipRatio = 0
		sweep := sim.NewSweep(metrics.Default,
			sim.Case{Name: "flip", Resolution: 6, Params: fluid.DefaultParams()},
			sim.Case{Name: "pic", Resolution: 6, Params: pic},
			sim.Case{Name: "coarse", Resolution: 5, Params: fluid.DefaultParams()},
		)

		results, err := sweep.Run(context.Background(), dynamo.Config{Dt: 1.0 / 60, Frames: 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r.StepsTaken).To(Equal(3))
			Expect(r.Metrics).To(HaveKey("max_speed"))
		}
	})

	It("calibrates rest density when asked", func() {
		sweep := sim.NewSweep(nil, sim.Case{Name: "calm", Resolution: 10, Params: fluid.DefaultParams(), Calibrate: true})
		results, err := sweep.Run(context.Background(), dynamo.Config{Dt: 1.0 / 60, Frames: 2, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].StepsTaken).To(Equal(2))
		Expect(results[0].Errors).To(BeEmpty())
	})

	It("names the failing case", func() {
		sweep := sim.NewSweep(nil, sim.Case{Name: "broken", Resolution: 0, Params: fluid.DefaultParams()})
		_, err := sweep.Run(context.Background(), dynamo.Config{Dt: 0.01, Frames: 1})
		Expect(err).To(MatchError(ContainSubstring(`case "broken"`)))
		Expect(errors.Is(err, dynamo.ErrInvalidResolution)).To(BeTrue())
	})
})
