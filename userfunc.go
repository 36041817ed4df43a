package optctl

import (
	"gonum.org/v1/gonum/mat"
)

// DefaultPerturbation is the finite difference step used when neither the user function nor
// the settings provide one.
const DefaultPerturbation = 1e-7

// PathFunction is the user supplied set of path functions of a phase.
// EvaluateFunctions reads the variables from in and sets the values of whichever of the
// dynamics, algebraic and cost records it implements in out, along with the algebraic bounds.
type PathFunction interface {
	EvaluateFunctions(in *FunctionInputData, out *PathFunctionContainer) error
}

// JacobianEvaluator is implemented by path functions which provide some Jacobian blocks
// analytically. Any block it does not set is finite differenced by the manager.
type JacobianEvaluator interface {
	EvaluateJacobians(in *FunctionInputData, out *PathFunctionContainer) error
}

// PatternEvaluator is implemented by path functions which know the sparsity of some blocks.
// A nil or empty entry means that the manager shall discover that block.
type PatternEvaluator interface {
	EvaluateJacobianPattern() (JacobianPatterns, error)
}

// Initializer is implemented by path functions with their own setup, called once before
// the first evaluation.
type Initializer interface {
	Initialize(in *FunctionInputData, out *PathFunctionContainer) error
}

// Perturber is implemented by path functions which choose their own finite difference steps.
type Perturber interface {
	Perturbation(v VarType) float64
}

// JacobianPatterns maps a Jacobian block to its analytic sparsity pattern.
type JacobianPatterns map[Block]mat.Matrix

// Set stores the pattern of a block.
func (p JacobianPatterns) Set(f FuncType, v VarType, m mat.Matrix) {
	p[Block{f, v}] = m
}

// capabilities records which optional behaviors a path function implements. The engine's
// skip logic is driven by these booleans and by the per block user Jacobian flags.
type capabilities struct {
	jacobians, patterns, initializer, perturber bool
}

func capabilitiesOf(pf PathFunction) (c capabilities) {
	_, c.jacobians = pf.(JacobianEvaluator)
	_, c.patterns = pf.(PatternEvaluator)
	_, c.initializer = pf.(Initializer)
	_, c.perturber = pf.(Perturber)
	return
}
