package optctl

import (
	"gonum.org/v1/gonum/mat"
)

// UserFunctionProperties is a snapshot of the sparsity of one function category, handed to
// the transcription once at setup time.
type UserFunctionProperties struct {
	numFunctions int
	patterns     varSet[*mat.Dense]
	hasVars      varSet[bool]
}

// NewUserFunctionProperties returns empty properties.
func NewUserFunctionProperties() UserFunctionProperties {
	var p UserFunctionProperties
	for _, v := range VarTypes {
		*p.patterns.at(v) = &mat.Dense{}
	}
	return p
}

// SetJacobianPattern stores a copy of the sparsity pattern with respect to v.
func (p *UserFunctionProperties) SetJacobianPattern(v VarType, m mat.Matrix) error {
	if !v.Valid() {
		return wrapUnknownVar(v)
	}
	*p.patterns.at(v) = denseCopy(m)
	_, c := dims(m)
	*p.hasVars.at(v) = c > 0
	return nil
}

func (p *UserFunctionProperties) setHasVars(v VarType, b bool) {
	*p.hasVars.at(v) = b
}

// SetNumberOfFunctions sets the number of functions.
func (p *UserFunctionProperties) SetNumberOfFunctions(n int) { p.numFunctions = n }

// NumberOfFunctions returns the number of functions.
func (p UserFunctionProperties) NumberOfFunctions() int { return p.numFunctions }

// JacobianPattern returns a copy of the sparsity pattern with respect to v.
func (p UserFunctionProperties) JacobianPattern(v VarType) *mat.Dense {
	if !v.Valid() || *p.patterns.at(v) == nil {
		return &mat.Dense{}
	}
	return denseCopy(*p.patterns.at(v))
}

// HasVars returns whether the phase has variables of this type.
func (p UserFunctionProperties) HasVars(v VarType) bool {
	if !v.Valid() {
		return false
	}
	return *p.hasVars.at(v)
}

// NonZeros returns the number of structurally non zero entries of the pattern with respect to v.
func (p UserFunctionProperties) NonZeros(v VarType) int {
	return countNonZeros(p.JacobianPattern(v))
}
