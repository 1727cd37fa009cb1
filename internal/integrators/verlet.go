package integrators

import "github.com/san-kum/lagsim/internal/dynamo"

// Verlet is velocity Verlet over an interleaved (q, q_dot) state.
// Velocity-dependent forces are evaluated at the start-of-step velocity.
type Verlet struct {
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) ensureScratch(n int) {
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	v.ensureScratch(n)

	result := make(dynamo.State, n)
	dx := dyn.Derive(x, t)
	dt2 := dt * dt

	for i := 0; i < n; i += 2 {
		result[i] = x[i] + x[i+1]*dt + 0.5*dx[i+1]*dt2
		v.scratch[i] = result[i]
		v.scratch[i+1] = x[i+1]
	}

	dxNew := dyn.Derive(v.scratch, t+dt)

	halfDt := 0.5 * dt
	for i := 1; i < n; i += 2 {
		result[i] = x[i] + (dx[i]+dxNew[i])*halfDt
	}

	return result
}

// Leapfrog is the kick-drift-kick form over an interleaved state.
type Leapfrog struct {
	scratch dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)

	if len(l.scratch) != n {
		l.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	dx := dyn.Derive(x, t)
	halfDt := dt * 0.5

	for i := 0; i < n; i += 2 {
		l.scratch[i+1] = x[i+1] + dx[i+1]*halfDt
		result[i] = x[i] + l.scratch[i+1]*dt
		l.scratch[i] = result[i]
	}

	dxNew := dyn.Derive(l.scratch, t+dt)

	for i := 1; i < n; i += 2 {
		result[i] = l.scratch[i] + dxNew[i]*halfDt
	}

	return result
}
