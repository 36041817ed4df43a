package optctl

import (
	"math"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/mat"
)

// closedForm is a path function of 3 states and 2 controls with a known Jacobian:
//
//	dyn = [x0² + x1·u0 + t, sin(x2)·u1 + x0·x1]
//	alg = [x0 + u1, x2·t]
//	cost = x0² + u0²
type closedForm struct {
	alg, cost, bounds bool
	evals             int
	sparsityEvals     int
	perturbingEvals   int
	fail              func(in *FunctionInputData) error
	nan               func(in *FunctionInputData) bool
}

func (c *closedForm) EvaluateFunctions(in *FunctionInputData, out *PathFunctionContainer) error {
	c.evals++
	if in.IsSparsity() {
		c.sparsityEvals++
	}
	if in.IsPerturbing() {
		c.perturbingEvals++
	}
	if c.fail != nil {
		if err := c.fail(in); err != nil {
			return err
		}
	}
	x, u, t := in.State(), in.Control(), in.Time()
	dyn := []float64{x[0]*x[0] + x[1]*u[0] + t, math.Sin(x[2])*u[1] + x[0]*x[1]}
	if c.nan != nil && c.nan(in) {
		dyn[1] = math.NaN()
	}
	if err := out.Dyn().SetFunctions(dyn); err != nil {
		return err
	}
	if c.alg {
		if err := out.Alg().SetFunctions([]float64{x[0] + u[1], x[2] * t}); err != nil {
			return err
		}
		if c.bounds {
			if err := out.Alg().SetBounds([]float64{-1, -2}, []float64{1, 2}); err != nil {
				return err
			}
		}
	}
	if c.cost {
		return out.Cost().SetFunctions([]float64{x[0]*x[0] + u[0]*u[0]})
	}
	return nil
}

// closedFormJacobian returns the exact dynamics Jacobian at in.
func closedFormJacobian(in *FunctionInputData, v VarType) *mat.Dense {
	x, u := in.State(), in.Control()
	switch v {
	case State:
		return mat.NewDense(2, 3, []float64{
			2 * x[0], u[0], 0,
			x[1], x[0], math.Cos(x[2]) * u[1],
		})
	case Control:
		return mat.NewDense(2, 2, []float64{
			x[1], 0,
			0, math.Sin(x[2]),
		})
	case Time:
		return mat.NewDense(2, 1, []float64{1, 0})
	}
	return &mat.Dense{}
}

// closedFormPattern returns the exact dynamics sparsity.
func closedFormPattern(v VarType) *mat.Dense {
	switch v {
	case State:
		return mat.NewDense(2, 3, []float64{1, 1, 0, 1, 1, 1})
	case Control:
		return mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	case Time:
		return mat.NewDense(2, 1, []float64{1, 0})
	}
	return &mat.Dense{}
}

// analyticClosedForm provides some dynamics blocks analytically, scaled by factor.
type analyticClosedForm struct {
	*closedForm
	blocks []VarType
	factor float64
}

func (a *analyticClosedForm) EvaluateJacobians(in *FunctionInputData, out *PathFunctionContainer) error {
	for _, v := range a.blocks {
		jac := closedFormJacobian(in, v)
		if a.factor != 0 {
			jac.Scale(a.factor, jac)
		}
		if err := out.Dyn().SetJacobian(v, jac); err != nil {
			return err
		}
	}
	return nil
}

// patternClosedForm provides some sparsity patterns analytically.
type patternClosedForm struct {
	*closedForm
	patterns JacobianPatterns
}

func (p *patternClosedForm) EvaluateJacobianPattern() (JacobianPatterns, error) {
	return p.patterns, nil
}

// perturbedClosedForm chooses its own finite difference steps.
type perturbedClosedForm struct {
	*closedForm
	steps map[VarType]float64
}

func (p *perturbedClosedForm) Perturbation(v VarType) float64 {
	return p.steps[v]
}

// initClosedForm has its own setup.
type initClosedForm struct {
	*closedForm
	calls int
	err   error
}

func (i *initClosedForm) Initialize(in *FunctionInputData, out *PathFunctionContainer) error {
	i.calls++
	out.Dyn().SetFunctionNames([]string{"f0", "f1"})
	return i.err
}

// nestedClosedForm asks the manager for its Jacobians from its own setup.
type nestedClosedForm struct {
	*analyticClosedForm
	m   *PathFunctionManager
	err error
	jac *mat.Dense
}

func (n *nestedClosedForm) Initialize(in *FunctionInputData, out *PathFunctionContainer) error {
	_, n.err = n.m.EvaluateUserJacobian(in, out, Dynamics, false)
	n.jac = denseCopy(out.Dyn().Jacobian(State))
	return nil
}

func nominalInput() *FunctionInputData {
	in := NewFunctionInputData(3, 2, 0)
	in.SetStateVector([]float64{0.1, 0.2, 0.3})
	in.SetControlVector([]float64{0.4, 0.5})
	in.SetTime(0.5)
	return in
}

func nominalBounds() *BoundData {
	b := NewBoundData()
	b.SetStateBounds([]float64{-5, -5, -5}, []float64{5, 5, 5})
	b.SetControlBounds([]float64{-5, -5}, []float64{5, 5})
	b.SetTimeBounds(-10, 10)
	return b
}

func newNopLogger() kitlog.Logger {
	return kitlog.NewNopLogger()
}

func newTestManager(opts ...Option) *PathFunctionManager {
	return NewPathFunctionManager(append([]Option{WithLogger(newNopLogger()), WithSeed(2017), WithRandomSamples(DefaultRandomSamples)}, opts...)...)
}

// logRecorder keeps every log line.
type logRecorder struct {
	lines [][]interface{}
}

func (r *logRecorder) Log(keyvals ...interface{}) error {
	r.lines = append(r.lines, keyvals)
	return nil
}

// warned returns whether a warning carried the key value pair.
func (r *logRecorder) warned(key string, value interface{}) bool {
	for _, line := range r.lines {
		warning, found := false, false
		for i := 0; i+1 < len(line); i += 2 {
			if line[i] == "level" && line[i+1] == "warning" {
				warning = true
			}
			if line[i] == key && line[i+1] == value {
				found = true
			}
		}
		if warning && found {
			return true
		}
	}
	return false
}

// isSuperset returns whether every non zero of exp is non zero in got.
func isSuperset(got, exp mat.Matrix) bool {
	r, c := exp.Dims()
	if gr, gc := got.Dims(); gr != r || gc != c {
		return false
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if exp.At(i, j) != 0 && got.At(i, j) == 0 {
				return false
			}
		}
	}
	return true
}
