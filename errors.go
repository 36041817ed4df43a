package optctl

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrPatternShape is returned when a user supplied sparsity pattern does not match the block shape.
	ErrPatternShape = errors.New("sparsity pattern shape does not match the number of functions and variables")
	// ErrUnknownFuncType is returned for a function category outside of dynamics, algebraic and cost.
	ErrUnknownFuncType = errors.New("unknown function type (valid: dynamics, algebraic, cost)")
	// ErrUnknownVarType is returned for a variable type outside of state, control, time and static.
	ErrUnknownVarType = errors.New("unknown variable type (valid: state, control, time, static)")
	// ErrNilCollaborator is returned when a required container is nil.
	ErrNilCollaborator = errors.New("required collaborator is nil")
	// ErrDimension is returned when a vector or matrix has an unexpected size.
	ErrDimension = errors.New("dimension mismatch")
	// ErrBounds is returned for inconsistent lower and upper bounds.
	ErrBounds = errors.New("invalid bounds")
	// ErrNonFinite is returned when a function value or a finite difference is NaN or Inf.
	ErrNonFinite = errors.New("non finite value")
	// ErrNotInitialized is returned when the manager is used before Initialize.
	ErrNotInitialized = errors.New("manager is not initialized")
)

// UserFunctionError wraps a failure raised by the user path function.
type UserFunctionError struct {
	Op    string // manager call in progress
	Phase int
	Err   error
}

func (e *UserFunctionError) Error() string {
	return fmt.Sprintf("user path function failed during %s (phase %d): %s", e.Op, e.Phase, e.Err)
}

// Unwrap returns the error raised by the user function.
func (e *UserFunctionError) Unwrap() error {
	return e.Err
}

// Cause implements the pkg/errors causer.
func (e *UserFunctionError) Cause() error {
	return e.Err
}

func wrapUser(op string, phase int, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*UserFunctionError); ok {
		return err
	}
	return &UserFunctionError{Op: op, Phase: phase, Err: err}
}

func wrapUnknownFunc(v interface{}) error {
	return errors.Wrapf(ErrUnknownFuncType, "%v", v)
}

func wrapUnknownVar(v interface{}) error {
	return errors.Wrapf(ErrUnknownVarType, "%v", v)
}
