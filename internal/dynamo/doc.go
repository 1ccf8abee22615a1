// Package dynamo provides the primitives shared by the fluid core and the
// tooling around it.
//
//   - [Fluid]: read-only view of a running particle/grid simulator
//   - [Metric] and [Observer]: per-frame plug-ins driven by the runner
//   - [FrameStats]: one row of per-frame telemetry
//   - [Config] and [Result]: run configuration and outcome
//
// Errors are sentinels ([ErrParameterBounds], [ErrParticleEscaped], ...) so
// callers can test them with errors.Is through any wrapping.
//
// # Thread Safety
//
// None of the types here are safe for concurrent mutation. A simulator has
// exactly one owner that steps it.
package dynamo
