// Package optim searches solver settings for the combination that minimises
// a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/flipsim/internal/config"
	"github.com/san-kum/flipsim/internal/metrics"
	"github.com/san-kum/flipsim/internal/sim"
)

var ErrUnknownParameter = errors.New("unknown solver parameter")

// Parameters lists the names accepted by GridSearch.
var Parameters = []string{
	"flip_ratio",
	"pressure_iterations",
	"separation_iterations",
	"over_relaxation",
	"sub_steps",
	"drift_weight",
}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Frames int
}

func (t Trial) String() string {
	keys := make([]string, 0, len(t.Params))
	for k := range t.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, t.Params[k])
	}
	return strings.Join(parts, " ")
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if err := apply(config.DefaultConfig(), name, 0); errors.Is(err, ErrUnknownParameter) {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("empty range for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs base once per grid point, all points in parallel, and returns
// every trial sorted by metricName ascending. Points whose settings fail
// validation are skipped. Runs that end on an invalid state count as +Inf.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) ([]Trial, error) {
	var points []map[string]float64
	g.enumerate(0, make(map[string]float64), &points)

	var cases []sim.Case
	var kept []map[string]float64
	for _, p := range points {
		cfg := base.Clone()
		if err := applyAll(cfg, p); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			continue
		}
		cases = append(cases, sim.Case{
			Name:       Trial{Params: p}.String(),
			Resolution: cfg.Scene.Resolution,
			Params:     cfg.Params(),
			Options:    cfg.Options(),
			Calibrate:  cfg.CalibrateRestDensity,
		})
		kept = append(kept, p)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no valid parameter combination")
	}

	results, err := sim.NewSweep(metrics.Default, cases...).Run(ctx, base.RunConfig())
	if err != nil {
		return nil, err
	}

	trials := make([]Trial, len(cases))
	for i, p := range kept {
		trials[i] = Trial{Params: p, Value: math.Inf(1)}
		r := results[i]
		if len(r.Errors) > 0 {
			continue
		}
		val, ok := r.Metrics[metricName]
		if !ok {
			return nil, fmt.Errorf("unknown metric: %s", metricName)
		}
		trials[i].Value = val
		trials[i].Frames = r.StepsTaken
	}

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Value < trials[j].Value })
	return trials, nil
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.enumerate(depth+1, current, out)
	}
	delete(current, name)
}

func applyAll(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		if err := apply(cfg, name, v); err != nil {
			return err
		}
	}
	return nil
}

func apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "flip_ratio":
		cfg.Solver.FlipRatio = v
	case "pressure_iterations":
		cfg.Solver.PressureIterations = int(v)
	case "separation_iterations":
		cfg.Solver.SeparationIterations = int(v)
	case "over_relaxation":
		cfg.Solver.OverRelaxation = v
	case "sub_steps":
		cfg.Solver.SubSteps = int(v)
	case "drift_weight":
		cfg.DriftWeight = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return nil
}
