// Package dynamo provides the shared primitives of the Lagrangian pipeline.
//
// The package defines the types every stage agrees on:
//
//   - [State]: interleaved phase vector (q1, q1_dot, q2, q2_dot, ...)
//   - [Grid]: strictly increasing output times
//   - [System]: interface for ODE right-hand sides (dX/dt = f(X, t))
//   - [Integrator] and [Solver]: single-step methods and interval solvers
//   - [Metric]: observers folded over the recorded trajectory
//
// # Errors
//
// Failures are reported through sentinel errors that callers match with
// errors.Is:
//
//	traj, err := simulator.Run(ctx, req)
//	if errors.Is(err, dynamo.ErrNumericDivergence) {
//	    // traj holds the records produced before the failure
//	}
//
// Errors raised mid-run are wrapped in [SimulationError], which carries the
// step index, time and last valid state.
package dynamo
