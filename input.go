package optctl

import (
	"github.com/pkg/errors"
)

// FunctionInputData holds the values of the decision variables at one collocation point.
// It is owned by the caller; the manager never mutates the vectors of the instance it is given
// and builds perturbed copies instead.
type FunctionInputData struct {
	state, control, static []float64
	time                   float64
	phase                  int
	perturbing, sparsity   bool
}

// NewFunctionInputData returns input data sized for the provided dimensions, all zeros.
func NewFunctionInputData(numState, numControl, numStatic int) *FunctionInputData {
	return &FunctionInputData{
		state:   make([]float64, numState),
		control: make([]float64, numControl),
		static:  make([]float64, numStatic),
	}
}

// NumVars returns the number of variables of the provided type. Time is always one.
func (d *FunctionInputData) NumVars(v VarType) int {
	switch v {
	case State:
		return len(d.state)
	case Control:
		return len(d.control)
	case Time:
		return 1
	case Static:
		return len(d.static)
	}
	return 0
}

// State returns the state vector. Do not modify it.
func (d *FunctionInputData) State() []float64 { return d.state }

// Control returns the control vector. Do not modify it.
func (d *FunctionInputData) Control() []float64 { return d.control }

// Static returns the static parameter vector. Do not modify it.
func (d *FunctionInputData) Static() []float64 { return d.static }

// Time returns the time.
func (d *FunctionInputData) Time() float64 { return d.time }

// Phase returns the phase number.
func (d *FunctionInputData) Phase() int { return d.phase }

// IsPerturbing returns whether this point is a finite difference perturbation.
func (d *FunctionInputData) IsPerturbing() bool { return d.perturbing }

// IsSparsity returns whether this point is a sparsity discovery probe.
func (d *FunctionInputData) IsSparsity() bool { return d.sparsity }

// SetPhase sets the phase number.
func (d *FunctionInputData) SetPhase(n int) { d.phase = n }

// SetTime sets the time.
func (d *FunctionInputData) SetTime(t float64) { d.time = t }

// SetIsPerturbing sets the perturbation flag.
func (d *FunctionInputData) SetIsPerturbing(b bool) { d.perturbing = b }

// SetIsSparsity sets the sparsity discovery flag.
func (d *FunctionInputData) SetIsSparsity(b bool) { d.sparsity = b }

// SetStateVector sets the state, which must keep its dimension.
func (d *FunctionInputData) SetStateVector(s []float64) error {
	return d.SetVector(State, s)
}

// SetControlVector sets the control, which must keep its dimension.
func (d *FunctionInputData) SetControlVector(u []float64) error {
	return d.SetVector(Control, u)
}

// SetStaticVector sets the static parameters, which must keep their dimension.
func (d *FunctionInputData) SetStaticVector(p []float64) error {
	return d.SetVector(Static, p)
}

// Vector returns a copy of the variables of the provided type.
func (d *FunctionInputData) Vector(v VarType) []float64 {
	switch v {
	case State:
		return copyVec(d.state)
	case Control:
		return copyVec(d.control)
	case Time:
		return []float64{d.time}
	case Static:
		return copyVec(d.static)
	}
	return []float64{}
}

// SetVector copies the provided values into the variables of this type.
func (d *FunctionInputData) SetVector(v VarType, vals []float64) error {
	if !v.Valid() {
		return wrapUnknownVar(v)
	}
	if n := d.NumVars(v); len(vals) != n {
		return errors.Wrapf(ErrDimension, "%s vector of size %d, expected %d", v, len(vals), n)
	}
	switch v {
	case State:
		copy(d.state, vals)
	case Control:
		copy(d.control, vals)
	case Time:
		d.time = vals[0]
	case Static:
		copy(d.static, vals)
	}
	return nil
}

// Clone returns a deep copy.
func (d *FunctionInputData) Clone() *FunctionInputData {
	c := *d
	c.state = copyVec(d.state)
	c.control = copyVec(d.control)
	c.static = copyVec(d.static)
	return &c
}

// Equals returns whether both points hold the same variables.
func (d *FunctionInputData) Equals(o *FunctionInputData) bool {
	return d.time == o.time && vecEqual(d.state, o.state) && vecEqual(d.control, o.control) && vecEqual(d.static, o.static)
}

// withComponent returns a copy of this point where component idx of type v is set to val.
func (d *FunctionInputData) withComponent(v VarType, idx int, val float64) *FunctionInputData {
	c := d.Clone()
	switch v {
	case State:
		c.state[idx] = val
	case Control:
		c.control[idx] = val
	case Time:
		c.time = val
	case Static:
		c.static[idx] = val
	}
	return c
}

// component returns component idx of the variables of type v.
func (d *FunctionInputData) component(v VarType, idx int) float64 {
	switch v {
	case State:
		return d.state[idx]
	case Control:
		return d.control[idx]
	case Time:
		return d.time
	case Static:
		return d.static[idx]
	}
	return 0
}
