package optctl

import (
	"fmt"
	"strings"
)

// VarType defines the kind of decision variable a Jacobian block is taken with respect to.
type VarType uint8

// FuncType defines the category of a path function.
type FuncType uint8

const (
	// State variables of the phase.
	State VarType = iota + 1
	// Control variables of the phase.
	Control
	// Time is always a single variable.
	Time
	// Static parameters of the phase.
	Static
)

const (
	// Dynamics is the right hand side of the ODE.
	Dynamics FuncType = iota + 1
	// Algebraic are the path constraints.
	Algebraic
	// Cost is the integrand of the objective and is always a single function.
	Cost
)

// VarTypes lists every variable type in sweep order.
var VarTypes = [...]VarType{State, Control, Time, Static}

// FuncTypes lists every function category in evaluation order.
var FuncTypes = [...]FuncType{Dynamics, Algebraic, Cost}

func (v VarType) String() string {
	switch v {
	case State:
		return "state"
	case Control:
		return "control"
	case Time:
		return "time"
	case Static:
		return "static"
	}
	return fmt.Sprintf("VarType(%d)", uint8(v))
}

// Valid returns whether this is a known variable type.
func (v VarType) Valid() bool {
	return v >= State && v <= Static
}

func (f FuncType) String() string {
	switch f {
	case Dynamics:
		return "dynamics"
	case Algebraic:
		return "algebraic"
	case Cost:
		return "cost"
	}
	return fmt.Sprintf("FuncType(%d)", uint8(f))
}

// Valid returns whether this is a known function category.
func (f FuncType) Valid() bool {
	return f >= Dynamics && f <= Cost
}

// VarTypeFromString returns the variable type from its name.
func VarTypeFromString(s string) (VarType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "state":
		return State, nil
	case "control":
		return Control, nil
	case "time":
		return Time, nil
	case "static":
		return Static, nil
	}
	return 0, wrapUnknownVar(s)
}

// FuncTypeFromString returns the function category from its name.
func FuncTypeFromString(s string) (FuncType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dynamics", "dyn":
		return Dynamics, nil
	case "algebraic", "alg":
		return Algebraic, nil
	case "cost":
		return Cost, nil
	}
	return 0, wrapUnknownFunc(s)
}

// Block identifies one Jacobian block: a function category with respect to a variable type.
type Block struct {
	Func FuncType
	Var  VarType
}

func (b Block) String() string {
	return b.Func.String() + "/" + b.Var.String()
}

// blockSet stores one value per (category, variable type) pair. The tags are only used as
// keys after validation, never as raw offsets by callers.
type blockSet[T any] struct {
	v [len(FuncTypes)][len(VarTypes)]T
}

func (s *blockSet[T]) at(b Block) *T {
	return &s.v[b.Func-Dynamics][b.Var-State]
}

// varSet stores one value per variable type.
type varSet[T any] [len(VarTypes)]T

func (s *varSet[T]) at(v VarType) *T {
	return &s[v-State]
}

// funcSet stores one value per function category.
type funcSet[T any] [len(FuncTypes)]T

func (s *funcSet[T]) at(f FuncType) *T {
	return &s[f-Dynamics]
}
