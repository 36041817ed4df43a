package optctl

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// analyticTol is the relative agreement expected between an analytic block and its finite
// difference during initialization before a warning is logged.
const analyticTol = 1e-4

// ComputeAll finite differences every block of category f the user does not provide, at the
// point in, and stores them in out. The container must hold the function values at in.
// While initializing, the analytic blocks are also differenced and checked against the user's.
//
// Each column is a forward difference with a fixed absolute step per variable type, so its
// accuracy degrades for variables of very small or very large magnitude. The perturbed points
// are copies of in, which is never modified.
func (m *PathFunctionManager) ComputeAll(f FuncType, in *FunctionInputData, out *PathFunctionContainer, initializing bool) error {
	if !f.Valid() {
		return wrapUnknownFunc(f)
	}
	if in == nil || out == nil {
		return errors.Wrap(ErrNilCollaborator, "ComputeAll: input data or function container is nil")
	}
	if !m.hasFunction || !*m.hasFunctions.at(f) {
		return nil
	}
	rec := mustData(out, f)
	if !initializing {
		complete := true
		for _, v := range VarTypes {
			if !rec.HasUserJacobian(v) && *m.numVars.at(v) > 0 {
				complete = false
				break
			}
		}
		if complete {
			return nil
		}
	}

	nf := *m.numFunctions.at(f)
	nomValues := copyVec(rec.values)
	if len(nomValues) != nf {
		return errors.Wrapf(ErrDimension, "ComputeAll: %s holds %d values, expected %d", f, len(nomValues), nf)
	}
	scratch := out.scratch()
	pertValues := make([]float64, nf)
	column := make([]float64, nf)

	for _, v := range VarTypes {
		user := rec.HasUserJacobian(v)
		if user && !initializing {
			continue
		}
		numVars := *m.numVars.at(v)
		if numVars == 0 {
			continue
		}
		h := m.step(v)
		jac := newBlock(nf, numVars)
		for ss := 0; ss < numVars; ss++ {
			probe := in.withComponent(v, ss, in.component(v, ss)+h)
			probe.SetIsPerturbing(true)
			if err := m.evaluateInto("ComputeAll", probe, scratch, f, pertValues); err != nil {
				return err
			}
			forwardDiff(column, pertValues, nomValues, h)
			if m.checkFinite {
				if i := firstNonFinite(column); i >= 0 {
					return errors.Wrapf(ErrNonFinite, "ComputeAll: d(%s[%d])/d(%s[%d]) = %g", f, i, v, ss, column[i])
				}
			}
			jac.SetCol(ss, column)
		}
		b := Block{f, v}
		if user {
			m.compareAnalytic(b, rec.Jacobian(v), jac)
			*m.jacobian.at(b) = denseCopy(rec.Jacobian(v))
			continue
		}
		*m.jacobian.at(b) = jac
		rec.setFiniteDiffJacobian(v, jac)
	}
	return nil
}

// evaluateInto evaluates the user function at a perturbed point into scratch and copies the
// values of category f into dst.
func (m *PathFunctionManager) evaluateInto(op string, in *FunctionInputData, scratch *PathFunctionContainer, f FuncType, dst []float64) error {
	if err := m.evaluate(op, in, scratch); err != nil {
		return err
	}
	vals := mustData(scratch, f).values
	if len(vals) != len(dst) {
		return errors.Wrapf(ErrDimension, "%s: %s returned %d values, expected %d", op, f, len(vals), len(dst))
	}
	copy(dst, vals)
	return nil
}

// compareAnalytic logs a warning if an analytic block disagrees with its finite difference.
func (m *PathFunctionManager) compareAnalytic(b Block, analytic, fd mat.Matrix) {
	r, c := dims(analytic)
	fr, fc := dims(fd)
	if r != fr || c != fc {
		return
	}
	worst, wi, wj := 0.0, 0, 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a := analytic.At(i, j)
			e := math.Abs(a-fd.At(i, j)) / math.Max(1, math.Abs(a))
			if e > worst {
				worst, wi, wj = e, i, j
			}
		}
	}
	if worst > analyticTol {
		m.logger.Log("level", "warning", "subsys", "fd", "phase", m.phase, "block", b, "row", wi, "col", wj, "relerr", worst, "message", "analytic Jacobian disagrees with finite differences")
	}
}
