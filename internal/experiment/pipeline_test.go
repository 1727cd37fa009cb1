package experiment

import (
	"context"
	"math"

	gosymbol "github.com/njchilds90/gosymbol"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lagsim/internal/compile"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/integrators"
	"github.com/san-kum/lagsim/internal/lagrange"
	"github.com/san-kum/lagsim/internal/physics"
	"github.com/san-kum/lagsim/internal/sim"
)

func rk4Solver() dynamo.Solver {
	solver, err := integrators.New("rk4", dynamo.DefaultConfig())
	Expect(err).NotTo(HaveOccurred())
	return solver
}

var _ = Describe("Pipeline", func() {
	var p *Pipeline

	BeforeEach(func() {
		p = New()
	})

	It("starts uninitialized", func() {
		Expect(p.Stage()).To(Equal(Uninitialized))
		Expect(p.Stage().String()).To(Equal("uninitialized"))
	})

	It("walks every stage in order", func() {
		Expect(p.Declare(physics.ElasticPendulum())).To(Succeed())
		Expect(p.Stage()).To(Equal(GeometryDeclared))

		Expect(p.BuildLagrangian()).To(Succeed())
		Expect(p.Stage()).To(Equal(LagrangianBuilt))
		Expect(p.Lagrangian().L).NotTo(BeNil())

		Expect(p.Solve()).To(Succeed())
		Expect(p.Stage()).To(Equal(EquationsSolved))
		Expect(p.Equations().Accelerations).To(HaveLen(2))

		Expect(p.Compile()).To(Succeed())
		Expect(p.Stage()).To(Equal(FunctionsCompiled))
		Expect(p.Model().Order.Names()).To(Equal([]string{"m", "k", "g", "theta", "r", "theta_dot", "r_dot"}))
	})

	It("rejects operations out of order", func() {
		Expect(p.Solve()).To(MatchError(dynamo.ErrStageOrder))
		Expect(p.Stage()).To(Equal(Uninitialized))

		Expect(p.Declare(physics.PlanePendulum())).To(Succeed())
		Expect(p.Declare(physics.PlanePendulum())).To(MatchError(dynamo.ErrStageOrder))
		Expect(p.Compile()).To(MatchError(dynamo.ErrStageOrder))
	})

	It("cannot be retried after a failure", func() {
		Expect(p.Declare(&lagrange.Geometry{Name: "empty"})).To(MatchError(dynamo.ErrInvalidConfiguration))
		Expect(p.Stage()).To(Equal(Failed))
		Expect(p.Err()).To(MatchError(dynamo.ErrInvalidConfiguration))

		err := p.Declare(physics.PlanePendulum())
		Expect(err).To(MatchError(dynamo.ErrStageOrder))
		Expect(err.Error()).To(ContainSubstring("rebuild"))
	})

	It("reports a degenerate geometry when solving", func() {
		theta := lagrange.NewCoordinate("theta")
		r := lagrange.NewCoordinate("r")
		g := &lagrange.Geometry{
			Name:        "degenerate",
			Coordinates: []lagrange.Coordinate{theta, r},
			Params:      []string{"m", "k"},
			Bodies: []lagrange.Body{{
				Name: "bob",
				Mass: gosymbol.S("m"),
				X:    theta.Q(),
				Y:    gosymbol.N(0),
			}},
			Potential: gosymbol.MulOf(gosymbol.S("k"), gosymbol.PowOf(r.Q(), gosymbol.N(2))),
		}

		Expect(p.Build(g)).To(MatchError(dynamo.ErrDegenerateSystem))
		Expect(p.Stage()).To(Equal(Failed))
	})

	It("rejects a singular geometry at the solve stage", func() {
		a := lagrange.NewCoordinate("a")
		b := lagrange.NewCoordinate("b")
		g := &lagrange.Geometry{
			Name:        "coupled",
			Coordinates: []lagrange.Coordinate{a, b},
			Params:      []string{"m"},
			Bodies: []lagrange.Body{{
				Name: "bob",
				Mass: gosymbol.S("m"),
				X:    gosymbol.MulOf(gosymbol.N(2), gosymbol.AddOf(a.Q(), b.Q())),
				Y:    gosymbol.N(0),
			}},
		}

		Expect(p.Declare(g)).To(Succeed())
		Expect(p.BuildLagrangian()).To(Succeed())
		Expect(p.Solve()).To(MatchError(dynamo.ErrDegenerateSystem))
		Expect(p.Stage()).To(Equal(Failed))
		Expect(p.Equations()).To(BeNil())
	})

	It("reports a symbol mismatch when the order is incomplete", func() {
		order, err := compile.NewOrder([]string{"m"}, []string{"theta"}, []string{"theta_dot"})
		Expect(err).NotTo(HaveOccurred())

		p = New(WithOrder(order))
		Expect(p.Build(physics.PlanePendulum())).To(MatchError(dynamo.ErrSymbolMismatch))
		Expect(p.Stage()).To(Equal(Failed))
	})

	Describe("Integrate", func() {
		BeforeEach(func() {
			Expect(p.Build(physics.ElasticPendulum())).To(Succeed())
		})

		It("produces the 1000-record elastic scenario", func() {
			grid, err := dynamo.Linspace(0, 20, 1000)
			Expect(err).NotTo(HaveOccurred())
			x0 := dynamo.State{math.Pi / 2, 1, 1, 7}

			tr, err := p.Integrate(context.Background(), rk4Solver(), sim.Request{
				Params:  map[string]float64{"m": 1, "k": 10, "g": 9.81},
				Initial: x0,
				Grid:    grid,
			}, dynamo.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			Expect(p.Stage()).To(Equal(TrajectoryReady))
			Expect(tr.Len()).To(Equal(1000))
			Expect(tr.Complete).To(BeTrue())
			Expect(tr.States[0]).To(Equal(x0))
			Expect(tr.Positions[0][0].X).To(BeNumerically("~", 0, 1e-12))
			Expect(tr.Positions[0][0].Y).To(BeNumerically("~", -2, 1e-12))
			for i := range tr.States {
				Expect(tr.States[i].IsValid()).To(BeTrue(), "record %d", i)
			}
			Expect(tr.Metrics).To(HaveKey("energy_drift"))
			Expect(tr.Metrics["max_radius"]).To(BeNumerically("~", tr.MaxRadius(), 1e-12))
			Expect(tr.Metrics).To(HaveKey("energy"))
			Expect(tr.Metrics["settled"]).To(BeNumerically("<", 0.1))
		})

		It("fails on an empty grid", func() {
			tr, err := p.Integrate(context.Background(), rk4Solver(), sim.Request{
				Params:  map[string]float64{"m": 1, "k": 10, "g": 9.81},
				Initial: dynamo.State{math.Pi / 2, 1, 1, 7},
				Grid:    dynamo.Grid{},
			}, dynamo.DefaultConfig())

			Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
			Expect(tr).To(BeNil())
			Expect(p.Stage()).To(Equal(Failed))
		})

		It("is one-shot", func() {
			grid, _ := dynamo.Linspace(0, 1, 11)
			req := sim.Request{
				Params:  map[string]float64{"m": 1, "k": 10, "g": 9.81},
				Initial: dynamo.State{math.Pi / 2, 0, 0.981, 0},
				Grid:    grid,
			}
			_, err := p.Integrate(context.Background(), rk4Solver(), req, dynamo.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			_, err = p.Integrate(context.Background(), rk4Solver(), req, dynamo.DefaultConfig())
			Expect(err).To(MatchError(dynamo.ErrStageOrder))
		})
	})

	It("keeps the partial trajectory of a diverging run", func() {
		Expect(p.Build(physics.DampedOscillator())).To(Succeed())
		grid, _ := dynamo.Linspace(0, 1, 11)

		tr, err := p.Integrate(context.Background(), rk4Solver(), sim.Request{
			Params:  map[string]float64{"m": 1, "k": 1, "c": -5000},
			Initial: dynamo.State{1, 0},
			Grid:    grid,
		}, dynamo.DefaultConfig())

		Expect(err).To(MatchError(dynamo.ErrNumericDivergence))
		Expect(tr).NotTo(BeNil())
		Expect(tr.Complete).To(BeFalse())
		Expect(p.Trajectory()).To(BeIdenticalTo(tr))
		Expect(p.Stage()).To(Equal(Failed))
	})
})
