package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for derivation, compilation and integration.
var (
	// ErrDegenerateSystem indicates the acceleration system has no unique solution.
	ErrDegenerateSystem = errors.New("dynamo: degenerate system (mass matrix is singular)")

	// ErrSymbolMismatch indicates an expression references a symbol the argument order does not declare.
	ErrSymbolMismatch = errors.New("dynamo: symbol mismatch between expression and argument order")

	// ErrInvalidConfiguration indicates rejected run inputs (grid, parameters, initial state).
	ErrInvalidConfiguration = errors.New("dynamo: invalid configuration")

	// ErrNumericDivergence indicates the state left the finite range during integration.
	ErrNumericDivergence = errors.New("dynamo: numeric divergence (NaN or Inf detected)")

	// ErrStepLimit indicates the solver exceeded its step budget.
	ErrStepLimit = errors.New("dynamo: step budget exhausted")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrStageOrder indicates a pipeline operation called out of sequence.
	ErrStageOrder = errors.New("dynamo: pipeline stage out of order")
)

// Invalidf wraps ErrInvalidConfiguration with a formatted reason.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
