package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/flipsim/internal/analysis"
	"github.com/san-kum/flipsim/internal/config"
	"github.com/san-kum/flipsim/internal/dynamo"
	"github.com/san-kum/flipsim/internal/metrics"
	"github.com/san-kum/flipsim/internal/optim"
	"github.com/san-kum/flipsim/internal/sim"
	"github.com/san-kum/flipsim/internal/storage"
	"github.com/san-kum/flipsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool
	// Scene and solver
	configFile      string
	preset          string
	resolution      int
	dt              float64
	frames          int
	flipRatio       float64
	pressureIters   int
	separationIters int
	overRelaxation  float64
	subSteps        int
	compensateDrift bool
	calibrate       bool
	// Live view and streaming
	frameRate     int
	addr          string
	withParticles bool
	// Output
	noSave    bool
	streamCSV string
	outFile   string
	columns   []string
	column    string
	svgOut    string
	withFrame bool
	svgDir    string
	// Bench and compare
	benchResolutions []int
	flipRatios       []float64
	// Tune
	tuneParams []string
	tuneMetric string
	tuneTop    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flipsim",
		Short: "FLIP/PIC liquid simulation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flipsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store its statistics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&streamCSV, "stream-csv", "", "also write frames to this csv file as they are computed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "column", []string{"kinetic_energy", "max_speed", "residual", "mean_height", "center_x"}, "statistics to plot")
	plotCmd.Flags().StringVar(&svgDir, "svg", "", "also write one <column>.svg per statistic into this directory")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "run a scene and write its side view as SVG",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	addSceneFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&svgOut, "out", "o", "snapshot.svg", "output file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "sloshing frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "center_x", "statistic to analyse")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase plot of a statistic against its rate of change",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&column, "column", "center_x", "statistic to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata (and frames) as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().BoolVar(&withFrame, "frames", false, "include per-frame statistics")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput across resolutions",
		Args:  cobra.NoArgs,
		RunE:  benchResolution,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntSliceVar(&benchResolutions, "resolutions", []int{8, 12, 16, 24, 32}, "resolutions to benchmark")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run the same scene with several FLIP ratios in parallel",
		Args:  cobra.NoArgs,
		RunE:  compareFlipRatios,
	}
	addSceneFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&flipRatios, "ratios", []float64{0, 0.5, 0.9, 1}, "FLIP ratios to compare")

	tuneCmd := &cobra.Command{
		Use:     "tune",
		Short:   "grid search solver settings for the lowest metric value",
		Example: "  flipsim tune --frames 60 --param over_relaxation=0.5,1,1.5 --param pressure_iterations=10,30 --metric residual",
		Args:    cobra.NoArgs,
		RunE:    tuneSolver,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "residual", "metric to minimise")
	tuneCmd.Flags().IntVar(&tuneTop, "top", 5, "number of results to show")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live terminal dashboard",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames to websocket clients",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	addSceneFlags(serveCmd)
	serveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().BoolVar(&withParticles, "particles", true, "include particle positions in frames")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, snapshotCmd, analyzeCmd, phaseCmd, exportCmd, exportCSVCmd, benchCmd, compareCmd, tuneCmd, liveCmd, serveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func addSceneFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&resolution, "res", defaults.Scene.Resolution, "grid cells per unit length")
	cmd.Flags().Float64Var(&dt, "dt", defaults.Dt, "timestep per frame")
	cmd.Flags().IntVar(&frames, "frames", defaults.Frames, "number of frames")
	cmd.Flags().Float64Var(&flipRatio, "flip", defaults.Solver.FlipRatio, "FLIP ratio (0 = PIC, 1 = FLIP)")
	cmd.Flags().IntVar(&pressureIters, "pressure-iters", defaults.Solver.PressureIterations, "pressure solver iterations")
	cmd.Flags().IntVar(&separationIters, "separation-iters", defaults.Solver.SeparationIterations, "particle separation iterations")
	cmd.Flags().Float64Var(&overRelaxation, "over-relax", defaults.Solver.OverRelaxation, "pressure over-relaxation in (0,2)")
	cmd.Flags().IntVar(&subSteps, "substeps", defaults.Solver.SubSteps, "sub-steps per frame")
	cmd.Flags().BoolVar(&compensateDrift, "drift", defaults.Solver.CompensateDrift, "compensate density drift")
	cmd.Flags().BoolVar(&calibrate, "calibrate", defaults.CalibrateRestDensity, "calibrate rest density from the initial block")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order of precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("res") {
		cfg.Scene.Resolution = resolution
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("flip") {
		cfg.Solver.FlipRatio = flipRatio
	}
	if flags.Changed("pressure-iters") {
		cfg.Solver.PressureIterations = pressureIters
	}
	if flags.Changed("separation-iters") {
		cfg.Solver.SeparationIterations = separationIters
	}
	if flags.Changed("over-relax") {
		cfg.Solver.OverRelaxation = overRelaxation
	}
	if flags.Changed("substeps") {
		cfg.Solver.SubSteps = subSteps
	}
	if flags.Changed("drift") {
		cfg.Solver.CompensateDrift = compensateDrift
	}
	if flags.Changed("calibrate") {
		cfg.CalibrateRestDensity = calibrate
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sys, err := cfg.NewSimulator()
	if err != nil {
		return err
	}

	runner := sim.New(sys, cfg.Params())
	var stability *metrics.Stability
	for _, m := range metrics.Default() {
		if st, ok := m.(*metrics.Stability); ok {
			stability = st
		}
		runner.AddMetric(m)
	}

	var frameWriter *storage.FrameWriter
	if streamCSV != "" {
		f, err := os.Create(streamCSV)
		if err != nil {
			return err
		}
		defer f.Close()
		frameWriter = storage.NewFrameWriter(f)
		runner.AddObserver(frameWriter)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d particles at resolution %d for %d frames...\n",
		sys.NumParticles(), sys.Resolution(), cfg.Frames)
	start := time.Now()

	result, runErr := runner.Run(ctx, cfg.RunConfig())
	elapsed := time.Since(start)

	var simErr *dynamo.SimulationError
	switch {
	case runErr == nil:
	case errors.As(runErr, &simErr):
		slog.Error("simulation aborted", "frame", simErr.Frame, "time", simErr.Time, "err", simErr.Wrapped)
	case errors.Is(runErr, dynamo.ErrContextCanceled):
		slog.Warn("simulation interrupted", "frames", result.StepsTaken)
	default:
		return runErr
	}
	if frameWriter != nil && frameWriter.Err() != nil {
		slog.Error("streaming csv failed", "path", streamCSV, "err", frameWriter.Err())
	}

	var unstable error
	if stability != nil {
		unstable = stability.Err()
	}
	if unstable != nil {
		slog.Warn("run unstable", "err", unstable)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.NewRunMetadata(preset, cfg, sys, result)
		if unstable != nil {
			meta.Errors = append(meta.Errors, unstable.Error())
		}
		runID, err := st.Save(meta, cfg, result.Frames)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tRES\tPARTICLES\tFRAMES\tFLIP")

	for _, run := range runs {
		name := run.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d/%d\t%.2f\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Resolution,
			run.Particles,
			run.StepsTaken,
			run.Frames,
			run.FlipRatio,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.FrameStats, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("resolution: %d, particles: %d\n", meta.Resolution, meta.Particles)
	fmt.Printf("frames: %d\n\n", len(frames))

	for _, name := range columns {
		data, err := analysis.Column(frames, name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(strings.ReplaceAll(name, "_", " ")+" vs frame"),
		)
		fmt.Println(graph)
		fmt.Println()

		if svgDir != "" {
			if err := writeSeriesSVG(filepath.Join(svgDir, name+".svg"), data); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeSeriesSVG(path string, data []float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := viz.SeriesToSVG(f, data, 800, 300, string(viz.ThemeOcean.Secondary)); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sys, err := cfg.NewSimulator()
	if err != nil {
		return err
	}

	result, err := sim.New(sys, cfg.Params()).Run(context.Background(), cfg.RunConfig())
	if err != nil {
		return err
	}

	canvas := viz.NewCanvas(60, 30)
	viz.SideView(sys.Grid(), canvas)

	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := viz.CanvasToSVG(f, canvas, 6, string(viz.ThemeOcean.Secondary), "#0a0a0a"); err != nil {
		return err
	}

	fmt.Print(canvas.String())
	fmt.Printf("\nframe %d, %d fluid cells, wrote %s\n", result.StepsTaken, sys.FluidCells(), svgOut)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("not enough frames to analyse (%d)", len(frames))
	}

	name := column
	data, err := analysis.Column(frames, name)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("signal: %s, dt: %.4fs\n\n", name, meta.Dt)

	ps := analysis.Spectrum(data)
	plotData := ps
	if len(ps) >= 8 {
		plotData = ps[:len(ps)/4]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+name+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, power := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz (magnitude %.4f)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	if period := analysis.CrossingPeriod(data, meta.Dt); period > 0 {
		fmt.Printf("mean-crossing period: %.3f s\n", period)
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	portrait, err := analysis.NewPhasePortrait(frames, column, meta.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("phase plot: %s\n", meta.ID)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", portrait.XLabel, portrait.YLabel)
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))
	fmt.Println("\n. early  o middle  • late")
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if !withFrame {
		frames = nil
	}
	return storage.ExportJSON(os.Stdout, *meta, frames)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := storage.ExportCSV(out, frames); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Fprintf(os.Stderr, "exported %d frames to %s\n", len(frames), outFile)
	}
	return nil
}

func benchResolution(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("frames") && cfg.Frames > 60 {
		cfg.Frames = 60
	}

	fmt.Printf("benchmarking %d frames per resolution\n\n", cfg.Frames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RES\tPARTICLES\tCELLS\tTIME\tFRAMES/SEC\tMS/FRAME")

	for _, res := range benchResolutions {
		c := cfg.Clone()
		c.Scene.Resolution = res
		sys, err := c.NewSimulator()
		if err != nil {
			return err
		}

		runner := sim.New(sys, c.Params())
		start := time.Now()
		result, err := runner.Run(context.Background(), c.RunConfig())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		perSec := float64(result.StepsTaken) / elapsed.Seconds()
		msPerFrame := elapsed.Seconds() * 1000 / float64(max(result.StepsTaken, 1))
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.1f\t%.2f\n",
			res, sys.NumParticles(), sys.Grid().NumCells(), elapsed.Round(time.Millisecond), perSec, msPerFrame)
	}

	return w.Flush()
}

func compareFlipRatios(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	cases := make([]sim.Case, len(flipRatios))
	for i, r := range flipRatios {
		p := cfg.Params()
		p.FlipRatio = float32(r)
		if err := p.Validate(); err != nil {
			return err
		}
		cases[i] = sim.Case{
			Name:       fmt.Sprintf("flip=%.2f", r),
			Resolution: cfg.Scene.Resolution,
			Params:     p,
			Options:    cfg.Options(),
			Calibrate:  cfg.CalibrateRestDensity,
		}
	}

	fmt.Printf("comparing %d FLIP ratios at resolution %d for %d frames...\n\n",
		len(cases), cfg.Scene.Resolution, cfg.Frames)
	start := time.Now()
	results, err := sim.NewSweep(metrics.Default, cases...).Run(context.Background(), cfg.RunConfig())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tFRAMES\tKINETIC\tMAX SPEED\tRESIDUAL\tVOLUME DRIFT\tSTABILITY")
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.5f\t%.4f\t%.4f\t%.4f\t%.2f\n",
			cases[i].Name,
			r.StepsTaken,
			r.Metrics["kinetic_energy"],
			r.Metrics["max_speed"],
			r.Metrics["residual"],
			r.Metrics["volume_drift"],
			r.Metrics["stability"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func tuneSolver(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required (one of %v)", optim.Parameters)
	}

	names := make([]string, len(tuneParams))
	ranges := make([][]float64, len(tuneParams))
	for i, spec := range tuneParams {
		name, values, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid --param %q, want name=v1,v2", spec)
		}
		names[i] = name
		for _, v := range strings.Split(values, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			ranges[i] = append(ranges[i], f)
		}
	}

	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	trials, err := search.Search(ctx, cfg, tuneMetric)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d settings in %v, lowest %s first\n\n", len(trials), time.Since(start).Round(time.Millisecond), tuneMetric)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSETTINGS\tVALUE\tFRAMES")
	for i, t := range trials {
		if i >= tuneTop {
			break
		}
		fmt.Fprintf(w, "%d\t%s\t%.6g\t%d\n", i+1, t, t.Value, t.Frames)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sys, err := cfg.NewSimulator()
	if err != nil {
		return err
	}

	title := "flipsim"
	if preset != "" {
		title += " · " + preset
	}

	m := viz.NewModel(sys, cfg.Params(), cfg.Dt, cfg.FPS, title)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRES\tFRAMES\tFLIP\tPRESSURE\tSUBSTEPS\tOBSTACLE")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		obstacle := "-"
		if p.Obstacle != nil {
			obstacle = fmt.Sprintf("r=%.2f", p.Obstacle.Radius)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%d\t%d\t%s\n",
			name, p.Scene.Resolution, p.Frames, p.Solver.FlipRatio,
			p.Solver.PressureIterations, p.Solver.SubSteps, obstacle)
	}
	return w.Flush()
}
