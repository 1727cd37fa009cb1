package experiment

// Stage is a pipeline state. Stages only move forward.
type Stage int

const (
	Uninitialized Stage = iota
	GeometryDeclared
	LagrangianBuilt
	EquationsSolved
	FunctionsCompiled
	Integrating
	TrajectoryReady
	Failed
)

var stageNames = [...]string{
	Uninitialized:     "uninitialized",
	GeometryDeclared:  "geometry_declared",
	LagrangianBuilt:   "lagrangian_built",
	EquationsSolved:   "equations_solved",
	FunctionsCompiled: "functions_compiled",
	Integrating:       "integrating",
	TrajectoryReady:   "trajectory_ready",
	Failed:            "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
