// Package analysis turns stored frame statistics into sloshing diagnostics.
//
//   - [Column]: extract one statistic from a run's frames
//   - [Spectrum] and [DominantFrequency]: power spectrum of a signal
//   - [CrossingPeriod]: period estimate from mean crossings
//   - [NewPhasePortrait]: a statistic against its rate of change
//
// # Sloshing
//
// The horizontal centre of mass oscillates after the initial dam break
// settles. Its dominant frequency is a compact check that two solver
// settings produce the same wave:
//
//	x, _ := analysis.Column(frames, "center_x")
//	freq, _ := analysis.DominantFrequency(x, dt)
package analysis
