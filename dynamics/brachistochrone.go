package dynamics

import (
	"math"

	optctl "github.com/ChristopherRabotin/GMAT-sub024"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Brachistochrone is the minimum time descent of a bead under constant gravity.
// The state is [x y v] and the control is the path angle θ from the vertical.
// It provides every Jacobian and its sparsity analytically, so the manager never
// perturbs it after initialization.
type Brachistochrone struct {
	Gravity float64
}

// NewBrachistochrone returns a new brachistochrone path function.
func NewBrachistochrone(gravity float64) *Brachistochrone {
	return &Brachistochrone{gravity}
}

// EvaluateFunctions implements the optctl.PathFunction interface.
func (b *Brachistochrone) EvaluateFunctions(in *optctl.FunctionInputData, out *optctl.PathFunctionContainer) error {
	s, u := in.State(), in.Control()
	if len(s) != 3 || len(u) != 1 {
		return errors.Errorf("brachistochrone: %d states and %d controls, expected 3 and 1", len(s), len(u))
	}
	sinθ, cosθ := math.Sincos(u[0])
	if err := out.Dyn().SetFunctions([]float64{s[2] * sinθ, s[2] * cosθ, b.Gravity * cosθ}); err != nil {
		return err
	}
	return out.Cost().SetFunctions([]float64{1})
}

// EvaluateJacobians implements the optctl.JacobianEvaluator interface.
func (b *Brachistochrone) EvaluateJacobians(in *optctl.FunctionInputData, out *optctl.PathFunctionContainer) error {
	v := in.State()[2]
	sinθ, cosθ := math.Sincos(in.Control()[0])
	dyn, cost := out.Dyn(), out.Cost()
	if err := dyn.SetStateJacobian(mat.NewDense(3, 3, []float64{
		0, 0, sinθ,
		0, 0, cosθ,
		0, 0, 0,
	})); err != nil {
		return err
	}
	if err := dyn.SetControlJacobian(mat.NewDense(3, 1, []float64{v * cosθ, -v * sinθ, -b.Gravity * sinθ})); err != nil {
		return err
	}
	if err := dyn.SetTimeJacobian(mat.NewDense(3, 1, nil)); err != nil {
		return err
	}
	if err := cost.SetStateJacobian(mat.NewDense(1, 3, nil)); err != nil {
		return err
	}
	if err := cost.SetControlJacobian(mat.NewDense(1, 1, nil)); err != nil {
		return err
	}
	return cost.SetTimeJacobian(mat.NewDense(1, 1, nil))
}

// EvaluateJacobianPattern implements the optctl.PatternEvaluator interface.
func (b *Brachistochrone) EvaluateJacobianPattern() (optctl.JacobianPatterns, error) {
	p := optctl.JacobianPatterns{}
	p.Set(optctl.Dynamics, optctl.State, mat.NewDense(3, 3, []float64{
		0, 0, 1,
		0, 0, 1,
		0, 0, 0,
	}))
	p.Set(optctl.Dynamics, optctl.Control, mat.NewDense(3, 1, []float64{1, 1, 1}))
	p.Set(optctl.Dynamics, optctl.Time, mat.NewDense(3, 1, nil))
	p.Set(optctl.Cost, optctl.State, mat.NewDense(1, 3, nil))
	p.Set(optctl.Cost, optctl.Control, mat.NewDense(1, 1, nil))
	p.Set(optctl.Cost, optctl.Time, mat.NewDense(1, 1, nil))
	return p, nil
}
