package optctl

import (
	"math"

	"github.com/pkg/errors"
)

// BoundData holds the lower and upper bounds of every variable type of a phase.
// An unused variable type has empty bounds.
type BoundData struct {
	lower, upper varSet[[]float64]
}

// NewBoundData returns empty bound data.
func NewBoundData() *BoundData {
	return &BoundData{}
}

// SetBounds sets the lower and upper bounds of the provided variable type.
func (b *BoundData) SetBounds(v VarType, lower, upper []float64) error {
	if !v.Valid() {
		return wrapUnknownVar(v)
	}
	if len(lower) != len(upper) {
		return errors.Wrapf(ErrDimension, "%s bounds: %d lower vs %d upper", v, len(lower), len(upper))
	}
	if v == Time && len(lower) > 1 {
		return errors.Wrapf(ErrDimension, "time bounds must be of size 1, got %d", len(lower))
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return errors.Wrapf(ErrBounds, "%s bound %d: lower %g > upper %g", v, i, lower[i], upper[i])
		}
	}
	*b.lower.at(v) = copyVec(lower)
	*b.upper.at(v) = copyVec(upper)
	return nil
}

// SetStateBounds sets the state bounds.
func (b *BoundData) SetStateBounds(lower, upper []float64) error {
	return b.SetBounds(State, lower, upper)
}

// SetControlBounds sets the control bounds.
func (b *BoundData) SetControlBounds(lower, upper []float64) error {
	return b.SetBounds(Control, lower, upper)
}

// SetTimeBounds sets the time bounds.
func (b *BoundData) SetTimeBounds(lower, upper float64) error {
	return b.SetBounds(Time, []float64{lower}, []float64{upper})
}

// SetStaticBounds sets the static parameter bounds.
func (b *BoundData) SetStaticBounds(lower, upper []float64) error {
	return b.SetBounds(Static, lower, upper)
}

// Lower returns a copy of the lower bounds of this variable type, empty if unused.
func (b *BoundData) Lower(v VarType) []float64 {
	if !v.Valid() {
		return []float64{}
	}
	return copyVec(*b.lower.at(v))
}

// Upper returns a copy of the upper bounds of this variable type, empty if unused.
func (b *BoundData) Upper(v VarType) []float64 {
	if !v.Valid() {
		return []float64{}
	}
	return copyVec(*b.upper.at(v))
}

// check ensures that the bounds cover the dimensions of the provided variables and are finite,
// since the sparsity discovery samples within them.
func (b *BoundData) check(in *FunctionInputData) error {
	for _, v := range VarTypes {
		n := in.NumVars(v)
		if n == 0 {
			continue
		}
		lower, upper := *b.lower.at(v), *b.upper.at(v)
		if got := len(lower); got != n {
			return errors.Wrapf(ErrDimension, "%s bounds are of size %d but the phase has %d %s variables", v, got, n, v)
		}
		for i := range lower {
			if !isFinite(lower[i]) || !isFinite(upper[i]) {
				return errors.Wrapf(ErrBounds, "%s bound %d: [%g, %g] cannot be sampled", v, i, lower[i], upper[i])
			}
		}
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
