package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/flipsim/internal/dynamo"
	"github.com/san-kum/flipsim/internal/fluid"
)

// Case is one independent simulation of a sweep.
type Case struct {
	Name       string
	Resolution int
	Params     fluid.Params
	Options    []fluid.Option
	// Calibrate sets the rest density from the initial block before running.
	Calibrate bool
}

// Sweep runs independent cases concurrently, one goroutine and one
// simulator per case. Each simulator is still stepped by a single
// goroutine.
type Sweep struct {
	cases      []Case
	newMetrics func() []dynamo.Metric
}

// NewSweep builds a sweep. newMetrics is called once per case so that no
// metric is shared between goroutines; it may be nil.
func NewSweep(newMetrics func() []dynamo.Metric, cases ...Case) *Sweep {
	return &Sweep{cases: cases, newMetrics: newMetrics}
}

// Run returns one result per case, in case order.
func (s *Sweep) Run(ctx context.Context, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(s.cases))
	errs := make([]error, len(s.cases))

	var wg sync.WaitGroup
	for i, c := range s.cases {
		wg.Add(1)
		go func(idx int, c Case) {
			defer wg.Done()

			sys, err := fluid.New(c.Resolution, c.Options...)
			if err != nil {
				errs[idx] = err
				return
			}
			if c.Calibrate {
				if _, err := sys.CalibrateRestDensity(); err != nil {
					errs[idx] = err
					return
				}
			}
			runner := New(sys, c.Params)
			if s.newMetrics != nil {
				for _, m := range s.newMetrics() {
					runner.AddMetric(m)
				}
			}
			results[idx], errs[idx] = runner.Run(ctx, cfg)
		}(i, c)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", s.cases[i].Name, err)
		}
	}

	return results, nil
}
