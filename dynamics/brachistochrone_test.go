package dynamics

import (
	"testing"

	optctl "github.com/ChristopherRabotin/GMAT-sub024"
	"gonum.org/v1/gonum/mat"
)

func TestBrachistochrone(t *testing.T) {
	b := NewBrachistochrone(9.81)
	in := optctl.NewFunctionInputData(3, 1, 0)
	in.SetStateVector([]float64{1, 2, 3})
	in.SetControlVector([]float64{0.7})
	in.SetTime(0.4)
	bounds := optctl.NewBoundData()
	bounds.SetStateBounds([]float64{0, 0, 0}, []float64{10, 10, 10})
	bounds.SetControlBounds([]float64{0}, []float64{3.14})
	bounds.SetTimeBounds(0, 2)

	out := optctl.NewPathFunctionContainer()
	m := testManager()
	if err := m.Initialize(b, in, out, bounds); err != nil {
		t.Fatal(err)
	}
	if m.HasAlgFunctions() {
		t.Fatal("the brachistochrone has no path constraints")
	}
	for _, f := range []optctl.FuncType{optctl.Dynamics, optctl.Cost} {
		for _, v := range optctl.VarTypes {
			if m.NeedsFiniteDiff(f, v) {
				t.Fatalf("%s/%s is analytic", f, v)
			}
		}
	}
	checkPattern(t, m, optctl.Dynamics, optctl.State, mat.NewDense(3, 3, []float64{0, 0, 1, 0, 0, 1, 0, 0, 0}))
	checkPattern(t, m, optctl.Dynamics, optctl.Control, mat.NewDense(3, 1, []float64{1, 1, 1}))
	checkPattern(t, m, optctl.Cost, optctl.State, mat.NewDense(1, 3, nil))
	props := m.DynFunctionProperties()
	if props.NumberOfFunctions() != 3 || props.NonZeros(optctl.State) != 2 || props.HasVars(optctl.Static) {
		t.Fatalf("unexpected properties %d %d %v", props.NumberOfFunctions(), props.NonZeros(optctl.State), props.HasVars(optctl.Static))
	}

	// Every block is analytic: the Jacobian costs no function evaluation.
	evals := m.Evaluations()
	if _, err := m.EvaluateUserJacobian(in, out, optctl.Dynamics, false); err != nil {
		t.Fatal(err)
	}
	if m.Evaluations() != evals {
		t.Fatalf("%d evaluations for a complete analytic Jacobian", m.Evaluations()-evals)
	}
	numeric := centralDiff(t, b, in, optctl.Dynamics, optctl.Control, 1e-6)
	if !mat.EqualApprox(out.Dyn().Jacobian(optctl.Control), numeric, 1e-6) {
		t.Fatalf("analytic control Jacobian\n%v\n!= numeric\n%v", mat.Formatted(out.Dyn().Jacobian(optctl.Control)), mat.Formatted(numeric))
	}
}

func TestBrachistochroneDimensions(t *testing.T) {
	out := optctl.NewPathFunctionContainer()
	if err := NewBrachistochrone(1).EvaluateFunctions(optctl.NewFunctionInputData(2, 1, 0), out); err == nil {
		t.Fatal("two states should fail")
	}
}
