package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates particle data containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrInvalidResolution indicates a scene resolution below one cell.
	ErrInvalidResolution = errors.New("dynamo: scene resolution must be positive")

	// ErrParticleEscaped indicates a particle left the grid, so its
	// interpolation stencil would read outside the cell arrays.
	ErrParticleEscaped = errors.New("dynamo: particle outside grid domain")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
