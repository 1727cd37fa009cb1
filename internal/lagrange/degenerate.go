package lagrange

import (
	"math"
	"math/rand"
	"sort"

	gosymbol "github.com/njchilds90/gosymbol"
	"gonum.org/v1/gonum/mat"
)

const (
	singularSamples = 8
	singularSeed    = 1
	singularRelTol  = 1e-10
)

// singularEverywhere evaluates the mass matrix at seeded sample points.
// It reports true only when every evaluable sample has a determinant that
// vanishes relative to the size of the entries. Determinants gosymbol
// leaves unreduced, like 16*m*m + -16*m*m, are caught this way.
func singularEverywhere(mass *gosymbol.Matrix) bool {
	n := mass.Rows()
	entries := make([]gosymbol.Expr, 0, n*n)
	free := make(map[string]struct{})
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			e := mass.Get(i, j)
			entries = append(entries, e)
			for s := range gosymbol.FreeSymbols(e) {
				free[s] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(free))
	for s := range free {
		names = append(names, s)
	}
	sort.Strings(names)

	rng := rand.New(rand.NewSource(singularSeed))
	dense := mat.NewDense(n, n, nil)
	evaluated := 0
	for s := 0; s < singularSamples; s++ {
		values := make(map[string]float64, len(names))
		for _, name := range names {
			values[name] = 0.5 + rng.Float64()
		}
		scale, ok := fill(dense, entries, values)
		if !ok {
			continue
		}
		evaluated++
		det := mat.Det(dense)
		if math.IsNaN(det) {
			continue
		}
		if math.Abs(det) > singularRelTol*scale {
			return false
		}
	}
	return evaluated > 0
}

// fill evaluates entries row-major into dense and returns the product of
// the largest absolute entry of each row.
func fill(dense *mat.Dense, entries []gosymbol.Expr, values map[string]float64) (float64, bool) {
	n, _ := dense.Dims()
	scale := 1.0
	for i := 0; i < n; i++ {
		rowMax := 0.0
		for j := 0; j < n; j++ {
			v, ok := evalSample(entries[i*n+j], values)
			if !ok {
				return 0, false
			}
			dense.Set(i, j, v)
			rowMax = math.Max(rowMax, math.Abs(v))
		}
		scale *= rowMax
	}
	return scale, true
}

func evalSample(e gosymbol.Expr, values map[string]float64) (float64, bool) {
	for s := range gosymbol.FreeSymbols(e) {
		e = gosymbol.Sub(e, s, gosymbol.NFloat(values[s]))
	}
	num, ok := e.Eval()
	if !ok || num == nil {
		return 0, false
	}
	v := num.Float64()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
