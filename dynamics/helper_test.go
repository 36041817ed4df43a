package dynamics

import (
	"testing"

	optctl "github.com/ChristopherRabotin/GMAT-sub024"
	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func vectorsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !floats.EqualWithinAbsOrRel(a[i], b[i], 1e-12, 1e-6) {
			return false
		}
	}
	return true
}

// evaluate returns the function values of category f at the provided point.
func evaluate(t *testing.T, pf optctl.PathFunction, in *optctl.FunctionInputData, f optctl.FuncType) []float64 {
	out := optctl.NewPathFunctionContainer()
	if err := pf.EvaluateFunctions(in, out); err != nil {
		t.Fatalf("evaluation failed: %s", err)
	}
	data, err := out.Data(f)
	if err != nil {
		t.Fatal(err)
	}
	return data.FunctionValues()
}

// centralDiff returns the central difference of category f with respect to v.
func centralDiff(t *testing.T, pf optctl.PathFunction, in *optctl.FunctionInputData, f optctl.FuncType, v optctl.VarType, h float64) *mat.Dense {
	nom := in.Vector(v)
	nf := len(evaluate(t, pf, in, f))
	jac := mat.NewDense(nf, len(nom), nil)
	for j := range nom {
		plus, minus := in.Clone(), in.Clone()
		vals := append([]float64(nil), nom...)
		vals[j] = nom[j] + h
		plus.SetVector(v, vals)
		vals[j] = nom[j] - h
		minus.SetVector(v, vals)
		col := evaluate(t, pf, plus, f)
		floats.Sub(col, evaluate(t, pf, minus, f))
		floats.Scale(1/(2*h), col)
		jac.SetCol(j, col)
	}
	return jac
}

func testManager() *optctl.PathFunctionManager {
	return optctl.NewPathFunctionManager(optctl.WithLogger(kitlog.NewNopLogger()), optctl.WithSeed(1789))
}
