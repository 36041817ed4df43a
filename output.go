package optctl

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// FunctionOutputData stores the values, bounds and Jacobians of one function category at
// one collocation point. The data on this struct is used to form the NLP function values.
type FunctionOutputData struct {
	funcType        FuncType
	hasUserFunction bool
	initializing    bool
	numFunctions    int
	values          []float64
	names           []string
	lower, upper    []float64
	jacobian        varSet[*mat.Dense]
	hasJacobian     varSet[bool]

	// NLP indexing, set by the transcription.
	meshIdx, stageIdx                 int
	stateIdxs, controlIdxs, staticIdx []int
}

// NewFunctionOutputData returns an empty output record for the provided category.
// It starts in the initializing state, where setting values or Jacobians records
// that the user function provides them.
func NewFunctionOutputData(f FuncType) *FunctionOutputData {
	d := &FunctionOutputData{funcType: f, initializing: true, values: []float64{}}
	for _, v := range VarTypes {
		*d.jacobian.at(v) = &mat.Dense{}
	}
	return d
}

// Type returns the function category of this record.
func (d *FunctionOutputData) Type() FuncType { return d.funcType }

// SetFunctions sets the function values. While initializing, a non empty vector
// declares the number of functions and that the user provides this category.
func (d *FunctionOutputData) SetFunctions(vals []float64) error {
	if d.funcType == Cost && len(vals) > 1 {
		return errors.Wrapf(ErrDimension, "cost must be a single function, got %d values", len(vals))
	}
	if !d.initializing && d.hasUserFunction && len(vals) != d.numFunctions {
		return errors.Wrapf(ErrDimension, "%s: got %d values, expected %d", d.funcType, len(vals), d.numFunctions)
	}
	d.values = copyVec(vals)
	if len(vals) != 0 && d.initializing {
		d.numFunctions = len(vals)
		d.hasUserFunction = true
	}
	return nil
}

// SetFunctionValues sets the function values after checking they match the declared count.
func (d *FunctionOutputData) SetFunctionValues(numFuncs int, vals []float64) error {
	if len(vals) != numFuncs {
		return errors.Wrapf(ErrDimension, "%s: function array of size %d, declared %d", d.funcType, len(vals), numFuncs)
	}
	d.numFunctions = numFuncs
	d.values = copyVec(vals)
	if d.initializing {
		d.hasUserFunction = true
	}
	return nil
}

// SetNumFunctions sets the number of functions.
func (d *FunctionOutputData) SetNumFunctions(n int) { d.numFunctions = n }

// SetFunctionNames sets the function names.
func (d *FunctionOutputData) SetFunctionNames(names []string) {
	d.names = append([]string(nil), names...)
}

// FunctionNames returns the function names.
func (d *FunctionOutputData) FunctionNames() []string { return d.names }

// SetUpperBounds sets the upper bounds; they must match the function values.
func (d *FunctionOutputData) SetUpperBounds(upper []float64) error {
	if len(upper) != len(d.values) {
		return errors.Wrapf(ErrDimension, "%s: upper bounds of size %d for %d functions", d.funcType, len(upper), len(d.values))
	}
	d.upper = copyVec(upper)
	return nil
}

// SetLowerBounds sets the lower bounds; they must match the function values.
func (d *FunctionOutputData) SetLowerBounds(lower []float64) error {
	if len(lower) != len(d.values) {
		return errors.Wrapf(ErrDimension, "%s: lower bounds of size %d for %d functions", d.funcType, len(lower), len(d.values))
	}
	d.lower = copyVec(lower)
	return nil
}

// SetBounds sets both bounds.
func (d *FunctionOutputData) SetBounds(lower, upper []float64) error {
	for i := 0; i < len(lower) && i < len(upper); i++ {
		if lower[i] > upper[i] {
			return errors.Wrapf(ErrBounds, "%s function %d: lower %g > upper %g", d.funcType, i, lower[i], upper[i])
		}
	}
	if err := d.SetLowerBounds(lower); err != nil {
		return err
	}
	return d.SetUpperBounds(upper)
}

// BoundsSet returns whether both bounds were set.
func (d *FunctionOutputData) BoundsSet() bool {
	return d.lower != nil && d.upper != nil
}

// UpperBounds returns a copy of the upper bounds.
func (d *FunctionOutputData) UpperBounds() []float64 { return copyVec(d.upper) }

// LowerBounds returns a copy of the lower bounds.
func (d *FunctionOutputData) LowerBounds() []float64 { return copyVec(d.lower) }

// HasUserFunction returns whether the user function provides this category.
func (d *FunctionOutputData) HasUserFunction() bool { return d.hasUserFunction }

// NumFunctions returns the number of functions.
func (d *FunctionOutputData) NumFunctions() int { return d.numFunctions }

// FunctionValues returns a copy of the current function values.
func (d *FunctionOutputData) FunctionValues() []float64 { return copyVec(d.values) }

// IsInitializing returns whether the record is in its initializing state.
func (d *FunctionOutputData) IsInitializing() bool { return d.initializing }

func (d *FunctionOutputData) setInitializing(b bool) { d.initializing = b }

// SetJacobian sets the analytic Jacobian of this category with respect to v.
// While initializing, this records that the user provides this block.
func (d *FunctionOutputData) SetJacobian(v VarType, m mat.Matrix) error {
	if !v.Valid() {
		return wrapUnknownVar(v)
	}
	if d.hasUserFunction {
		if r, _ := dims(m); r != d.numFunctions {
			return errors.Wrapf(ErrDimension, "%s/%s Jacobian has %d rows for %d functions", d.funcType, v, r, d.numFunctions)
		}
	}
	*d.jacobian.at(v) = denseCopy(m)
	if d.initializing {
		*d.hasJacobian.at(v) = true
	}
	return nil
}

// SetStateJacobian sets the analytic state Jacobian.
func (d *FunctionOutputData) SetStateJacobian(m mat.Matrix) error { return d.SetJacobian(State, m) }

// SetControlJacobian sets the analytic control Jacobian.
func (d *FunctionOutputData) SetControlJacobian(m mat.Matrix) error { return d.SetJacobian(Control, m) }

// SetTimeJacobian sets the analytic time Jacobian.
func (d *FunctionOutputData) SetTimeJacobian(m mat.Matrix) error { return d.SetJacobian(Time, m) }

// SetStaticJacobian sets the analytic static Jacobian.
func (d *FunctionOutputData) SetStaticJacobian(m mat.Matrix) error { return d.SetJacobian(Static, m) }

// setFiniteDiffJacobian stores a finite differenced block without touching the user flags.
func (d *FunctionOutputData) setFiniteDiffJacobian(v VarType, m *mat.Dense) {
	*d.jacobian.at(v) = denseCopy(m)
}

// Jacobian returns the Jacobian with respect to v. The returned matrix is owned by the record.
func (d *FunctionOutputData) Jacobian(v VarType) *mat.Dense {
	if !v.Valid() {
		return &mat.Dense{}
	}
	return *d.jacobian.at(v)
}

// HasUserJacobian returns whether the user function provides the Jacobian with respect to v.
func (d *FunctionOutputData) HasUserJacobian(v VarType) bool {
	if !v.Valid() {
		return false
	}
	return *d.hasJacobian.at(v)
}

// SetNLPData sets the indexing of this point in the NLP decision vector.
func (d *FunctionOutputData) SetNLPData(meshIdx, stageIdx int, stateIdxs, controlIdxs, staticIdxs []int) {
	d.meshIdx = meshIdx
	d.stageIdx = stageIdx
	d.stateIdxs = append([]int(nil), stateIdxs...)
	d.controlIdxs = append([]int(nil), controlIdxs...)
	d.staticIdx = append([]int(nil), staticIdxs...)
}

// MeshIdx returns the mesh index.
func (d *FunctionOutputData) MeshIdx() int { return d.meshIdx }

// StageIdx returns the stage index.
func (d *FunctionOutputData) StageIdx() int { return d.stageIdx }

// StateIdxs returns the state indexes in the decision vector.
func (d *FunctionOutputData) StateIdxs() []int { return d.stateIdxs }

// ControlIdxs returns the control indexes in the decision vector.
func (d *FunctionOutputData) ControlIdxs() []int { return d.controlIdxs }

// StaticIdxs returns the static indexes in the decision vector.
func (d *FunctionOutputData) StaticIdxs() []int { return d.staticIdx }

// scratch returns a record with the same declaration but no data, used to evaluate
// perturbed points without overwriting the nominal values.
func (d *FunctionOutputData) scratch() *FunctionOutputData {
	s := NewFunctionOutputData(d.funcType)
	s.initializing = false
	s.hasUserFunction = d.hasUserFunction
	s.numFunctions = d.numFunctions
	return s
}
