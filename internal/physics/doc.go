// Package physics provides the geometry catalog and the bouncing tether.
//
// Each catalog entry declares a constraint geometry for [lagrange.Derive]
// together with default parameter values and an initial state:
//
//   - elastic: point mass on a stretchable tether
//   - pendulum: rigid plane pendulum
//   - horizontal: unit pendulum measured from the horizontal
//   - oscillator: damped mass on a spring
//   - double_pendulum: two rigid links
//
// [Tether] is a hand-written force law rather than a derived one. Its
// trajectory is produced lazily by [TetherStream]:
//
//	stream, err := physics.NewTetherStream(physics.DefaultTether(), physics.DefaultTetherStart())
//	for stream.Next() {
//	    s := stream.State()
//	}
package physics
