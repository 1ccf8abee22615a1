package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/flipsim/internal/dynamo"
	"github.com/san-kum/flipsim/internal/fluid"
	"github.com/san-kum/flipsim/internal/metrics"
)

// Runner steps one fluid simulator frame by frame, collects statistics and
// feeds them to metrics and observers.
type Runner struct {
	sys       *fluid.Simulator
	params    fluid.Params
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(sys *fluid.Simulator, params fluid.Params) *Runner {
	return &Runner{
		sys:       sys,
		params:    params,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

func (r *Runner) System() *fluid.Simulator { return r.sys }
func (r *Runner) Params() fluid.Params      { return r.params }
func (r *Runner) SetParams(p fluid.Params)  { r.params = p }

// Run advances cfg.Frames frames. A particle leaving the grid aborts the run
// with a *dynamo.SimulationError; a non-finite frame is recorded in
// Result.Errors and ends the run early when cfg.ValidateState is set.
func (r *Runner) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := r.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &dynamo.Result{
		Frames:  make([]dynamo.FrameStats, 0, cfg.Frames),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	slog.Debug("run started",
		"particles", r.sys.NumParticles(),
		"resolution", r.sys.Resolution(),
		"frames", cfg.Frames,
		"dt", cfg.Dt,
	)

	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			r.finish(result)
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		stats, err := r.step(i, cfg.Dt)
		if err != nil {
			r.finish(result)
			return result, err
		}

		if cfg.ValidateState && !metrics.Finite(stats) {
			simErr := dynamo.SimError{Time: stats.Time, Frame: stats.Frame, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, simErr)
			slog.Warn("run stopped", "err", simErr)
			break
		}

		result.StepsTaken++
		result.Frames = append(result.Frames, stats)
		for _, m := range r.metrics {
			m.Observe(r.sys, stats)
		}
		for _, obs := range r.observers {
			obs.OnStep(r.sys, stats)
		}
	}

	r.finish(result)
	slog.Debug("run finished", "steps", result.StepsTaken, "errors", len(result.Errors))
	return result, nil
}

// RunWithCallback steps until cfg.Frames frames have run or callback
// returns false.
func (r *Runner) RunWithCallback(ctx context.Context, cfg dynamo.Config, callback func(dynamo.FrameStats) bool) error {
	if err := r.validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		stats, err := r.step(i, cfg.Dt)
		if err != nil {
			return err
		}
		if cfg.ValidateState && !metrics.Finite(stats) {
			return fmt.Errorf("%w at frame %d", dynamo.ErrInvalidState, stats.Frame)
		}
		if !callback(stats) {
			return nil
		}
	}
	return nil
}

// step advances frame i and returns the statistics of the resulting state.
func (r *Runner) step(i int, dt float64) (dynamo.FrameStats, error) {
	frame := i + 1
	t := float64(frame) * dt
	if err := r.sys.Step(float32(dt), r.params); err != nil {
		if errors.Is(err, dynamo.ErrParticleEscaped) {
			return dynamo.FrameStats{}, &dynamo.SimulationError{Frame: frame, Time: t, Wrapped: err}
		}
		return dynamo.FrameStats{}, err
	}
	return metrics.Collect(r.sys, frame, t), nil
}

func (r *Runner) finish(result *dynamo.Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (r *Runner) validateConfig(cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", dynamo.ErrParameterBounds, cfg.Frames)
	}
	return r.params.Validate()
}
