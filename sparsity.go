package optctl

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ComputeSparsityPatterns sets the sparsity pattern of every Jacobian block. The blocks for
// which the user function provides an analytic pattern use it verbatim; the others are
// discovered by random probing (see ComputeSparsity). The variables of in are left untouched.
func (m *PathFunctionManager) ComputeSparsityPatterns(in *FunctionInputData, out *PathFunctionContainer, bounds *BoundData) error {
	if in == nil || out == nil || bounds == nil {
		return errors.Wrap(ErrNilCollaborator, "ComputeSparsityPatterns requires the input data, the function container and the bounds")
	}
	if !m.hasFunction {
		return nil
	}
	if err := bounds.check(in); err != nil {
		return err
	}
	base := in.Clone()
	base.SetIsSparsity(true)
	base.SetIsPerturbing(false)

	if m.caps.patterns {
		patterns, err := m.userFunc.(PatternEvaluator).EvaluateJacobianPattern()
		if err != nil {
			return wrapUser("ComputeSparsityPatterns", m.phase, err)
		}
		if err := m.setUserPatterns(patterns); err != nil {
			return err
		}
	}
	for _, f := range FuncTypes {
		if err := m.ComputeSparsity(f, base, out, bounds); err != nil {
			return err
		}
	}
	return nil
}

// setUserPatterns stores the analytic patterns after validating their shapes.
func (m *PathFunctionManager) setUserPatterns(patterns JacobianPatterns) error {
	for b, p := range patterns {
		if err := validBlock(b.Func, b.Var); err != nil {
			return err
		}
		r, c := dims(p)
		if r == 0 && c == 0 {
			continue
		}
		nf, nv := *m.numFunctions.at(b.Func), *m.numVars.at(b.Var)
		if r != nf || c != nv {
			return errors.Wrapf(ErrPatternShape, "%s: provided %dx%d, expected %dx%d", b, r, c, nf, nv)
		}
		*m.pattern.at(b) = denseCopy(p)
		*m.userPattern.at(b) = true
	}
	return nil
}

// ComputeSparsity discovers the pattern of the blocks of category f without an analytic pattern.
// The functions are evaluated at the lower bounds, at the upper bounds and at independent
// uniform random points within the bounds. At each of those points, every variable is moved in
// turn to a fresh random value and any function which changes is marked as depending on it.
//
// This is a Monte Carlo heuristic: entries are only ever set, so the result accumulates evidence
// of structure, but a dependency which produces no observable change at every sampled point
// (e.g. a derivative which vanishes wherever it was probed) is not detected.
func (m *PathFunctionManager) ComputeSparsity(f FuncType, in *FunctionInputData, out *PathFunctionContainer, bounds *BoundData) error {
	if !f.Valid() {
		return wrapUnknownFunc(f)
	}
	if !m.hasFunction || !*m.hasFunctions.at(f) {
		return nil
	}
	probing := false
	for _, v := range VarTypes {
		if *m.numVars.at(v) > 0 && !*m.userPattern.at(Block{f, v}) {
			probing = true
			break
		}
	}
	if !probing {
		return nil
	}
	if in == nil || out == nil || bounds == nil {
		return errors.Wrap(ErrNilCollaborator, "ComputeSparsity requires the input data, the function container and the bounds")
	}
	if err := bounds.check(in); err != nil {
		return err
	}

	lower, upper := make(map[VarType][]float64), make(map[VarType][]float64)
	for _, v := range VarTypes {
		if *m.numVars.at(v) > 0 {
			lower[v] = bounds.Lower(v)
			upper[v] = bounds.Upper(v)
		}
	}
	scratch := out.scratch()

	point, err := pointAt(in, lower)
	if err != nil {
		return err
	}
	if err := m.UpdateSparsityPattern(f, point, scratch, lower, upper); err != nil {
		return err
	}
	if point, err = pointAt(in, upper); err != nil {
		return err
	}
	if err := m.UpdateSparsityPattern(f, point, scratch, lower, upper); err != nil {
		return err
	}

	for ii := 0; ii < m.samples; ii++ {
		sample := make(map[VarType][]float64, len(lower))
		for _, v := range VarTypes {
			n := *m.numVars.at(v)
			if n == 0 {
				continue
			}
			vals := make([]float64, n)
			for ss := range vals {
				vals[ss] = uniform(m.rng, lower[v][ss], upper[v][ss])
			}
			sample[v] = vals
		}
		if point, err = pointAt(in, sample); err != nil {
			return err
		}
		if err := m.UpdateSparsityPattern(f, point, scratch, lower, upper); err != nil {
			return err
		}
	}
	m.logger.Log("level", "info", "subsys", "sparsity", "phase", m.phase, "category", f, "samples", m.samples+2)
	return nil
}

// pointAt returns a copy of in with the provided variables.
func pointAt(in *FunctionInputData, vals map[VarType][]float64) (*FunctionInputData, error) {
	point := in.Clone()
	for v, vec := range vals {
		if err := point.SetVector(v, vec); err != nil {
			return nil, errors.Wrap(err, "ComputeSparsity")
		}
	}
	return point, nil
}

// UpdateSparsityPattern evaluates the functions of category f at point, then moves each
// variable in turn to a random value within its bounds and marks every function which changed.
func (m *PathFunctionManager) UpdateSparsityPattern(f FuncType, point *FunctionInputData, scratch *PathFunctionContainer, lower, upper map[VarType][]float64) error {
	nf := *m.numFunctions.at(f)
	nomValues := make([]float64, nf)
	if err := m.evaluateInto("ComputeSparsityPatterns", point, scratch, f, nomValues); err != nil {
		return err
	}
	pertValues := make([]float64, nf)
	for _, v := range VarTypes {
		n := *m.numVars.at(v)
		b := Block{f, v}
		if n == 0 || *m.userPattern.at(b) {
			continue
		}
		pattern := *m.pattern.at(b)
		for ss := 0; ss < n; ss++ {
			probe := point.withComponent(v, ss, uniform(m.rng, lower[v][ss], upper[v][ss]))
			if err := m.evaluateInto("ComputeSparsityPatterns", probe, scratch, f, pertValues); err != nil {
				return err
			}
			markChanges(pattern, ss, nomValues, pertValues)
		}
	}
	return nil
}

// markChanges sets column col of the pattern wherever the values differ. A NaN never compares
// equal, so it marks the entry.
func markChanges(pattern *mat.Dense, col int, nom, pert []float64) {
	for ff := range nom {
		if nom[ff] != pert[ff] {
			pattern.Set(ff, col, 1)
		}
	}
}
