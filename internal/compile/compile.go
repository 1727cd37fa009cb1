package compile

import (
	"fmt"
	"math"

	gosymbol "github.com/njchilds90/gosymbol"
	"github.com/san-kum/lagsim/internal/dynamo"
	"github.com/san-kum/lagsim/internal/lagrange"
)

// Func evaluates a compiled expression over an argument tuple laid out by an Order.
// Funcs are pure and safe for concurrent use.
type Func func(args []float64) float64

var unary = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"exp":   math.Exp,
	"ln":    math.Log,
	"abs":   math.Abs,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"sign": func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		}
		return 0
	},
}

func constant(v float64) Func {
	return func([]float64) float64 { return v }
}

// Expr compiles e against order. A symbol missing from the order, or a
// function with no numeric counterpart, fails with ErrSymbolMismatch.
func Expr(e gosymbol.Expr, order *Order) (Func, error) {
	if n, ok := e.Eval(); ok {
		return constant(n.Float64()), nil
	}

	switch v := e.(type) {
	case *gosymbol.Num:
		return constant(v.Float64()), nil

	case *gosymbol.Sym:
		idx, ok := order.Index(v.Name())
		if !ok {
			return nil, fmt.Errorf("%w: %q is not in argument order %v", dynamo.ErrSymbolMismatch, v.Name(), order.names)
		}
		return func(args []float64) float64 { return args[idx] }, nil

	case *gosymbol.Add:
		terms, err := exprs(v.Terms(), order)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			sum := 0.0
			for _, f := range terms {
				sum += f(args)
			}
			return sum
		}, nil

	case *gosymbol.Mul:
		factors, err := exprs(v.Factors(), order)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			prod := 1.0
			for _, f := range factors {
				prod *= f(args)
			}
			return prod
		}, nil

	case *gosymbol.Pow:
		return pow(v, order)

	case *gosymbol.Func:
		fn, ok := unary[v.FuncName()]
		if !ok {
			return nil, fmt.Errorf("%w: unsupported function %q", dynamo.ErrSymbolMismatch, v.FuncName())
		}
		arg, err := Expr(v.Arg(), order)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 { return fn(arg(args)) }, nil
	}

	return nil, fmt.Errorf("%w: unsupported expression %s", dynamo.ErrSymbolMismatch, e.String())
}

func exprs(es []gosymbol.Expr, order *Order) ([]Func, error) {
	out := make([]Func, len(es))
	for i, e := range es {
		f, err := Expr(e, order)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func pow(p *gosymbol.Pow, order *Order) (Func, error) {
	base, err := Expr(p.Base(), order)
	if err != nil {
		return nil, err
	}

	if n, ok := p.ExpExpr().Eval(); ok {
		switch k := n.Float64(); k {
		case 2:
			return func(args []float64) float64 { b := base(args); return b * b }, nil
		case 3:
			return func(args []float64) float64 { b := base(args); return b * b * b }, nil
		case -1:
			return func(args []float64) float64 { return 1 / base(args) }, nil
		case -2:
			return func(args []float64) float64 { b := base(args); return 1 / (b * b) }, nil
		case 0.5:
			return func(args []float64) float64 { return math.Sqrt(base(args)) }, nil
		default:
			return func(args []float64) float64 { return math.Pow(base(args), k) }, nil
		}
	}

	exp, err := Expr(p.ExpExpr(), order)
	if err != nil {
		return nil, err
	}
	return func(args []float64) float64 { return math.Pow(base(args), exp(args)) }, nil
}

// Point is a compiled Cartesian position.
type Point struct {
	X, Y Func
}

// Model is the numeric form of a solved system. Every Func shares Order.
type Model struct {
	Name          string
	Order         *Order
	Coordinates   []string
	StateNames    []string
	Accelerations []Func
	Positions     []Point
	Energy        Func
	MassMatrix    [][]Func
}

// Compile turns solved equations into numeric callables over order.
func Compile(eq *lagrange.Equations, order *Order) (*Model, error) {
	if order.NumCoordinates() != len(eq.Coordinates) {
		return nil, fmt.Errorf("%w: order has %d coordinates, equations have %d",
			dynamo.ErrSymbolMismatch, order.NumCoordinates(), len(eq.Coordinates))
	}

	m := &Model{
		Name:        eq.Name,
		Order:       order,
		Coordinates: make([]string, len(eq.Coordinates)),
		StateNames:  eq.StateNames(),
	}
	for i, c := range eq.Coordinates {
		m.Coordinates[i] = c.Name
	}

	var err error
	if m.Accelerations, err = exprs(eq.Accelerations, order); err != nil {
		return nil, fmt.Errorf("accelerations: %w", err)
	}

	m.Positions = make([]Point, len(eq.Bodies))
	for i, b := range eq.Bodies {
		x, err := Expr(b.X, order)
		if err != nil {
			return nil, fmt.Errorf("body %s x: %w", b.Name, err)
		}
		y, err := Expr(b.Y, order)
		if err != nil {
			return nil, fmt.Errorf("body %s y: %w", b.Name, err)
		}
		m.Positions[i] = Point{X: x, Y: y}
	}

	if m.Energy, err = Expr(eq.Energy, order); err != nil {
		return nil, fmt.Errorf("energy: %w", err)
	}

	n := eq.MassMatrix.Rows()
	m.MassMatrix = make([][]Func, n)
	for i := 0; i < n; i++ {
		row := make([]gosymbol.Expr, n)
		for j := 0; j < n; j++ {
			row[j] = eq.MassMatrix.Get(i, j)
		}
		if m.MassMatrix[i], err = exprs(row, order); err != nil {
			return nil, fmt.Errorf("mass matrix: %w", err)
		}
	}

	return m, nil
}

// EvalAccelerations writes every acceleration at args into dst.
func (m *Model) EvalAccelerations(dst, args []float64) []float64 {
	if cap(dst) < len(m.Accelerations) {
		dst = make([]float64, len(m.Accelerations))
	}
	dst = dst[:len(m.Accelerations)]
	for i, f := range m.Accelerations {
		dst[i] = f(args)
	}
	return dst
}
