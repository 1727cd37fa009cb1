// Package analysis characterizes integrated trajectories and compiled
// models.
//
//   - [PhasePortrait] and [PoincareSectionOf]: projections of a recorded trajectory
//   - [LyapunovExponent] and [LyapunovSpectrum]: separation of nearby trajectories
//   - [BifurcationDiagram]: a single-parameter sweep over a compiled model
//   - [SpectrumOf]: windowed amplitude spectrum of one state component
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(sys, integrators.NewRK4(), x0, 0.01, 50, 1e-8)
//	if lambda > 0 {
//	    // chaotic
//	}
package analysis
