package dynamics

import (
	"math"

	optctl "github.com/ChristopherRabotin/GMAT-sub024"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// g0 is the standard gravity in m/s^2, used to convert the Isp to an exhaust velocity.
	g0 = 9.80665
	// LowThrustStates is the size of the state [x y z vx vy vz m] of LowThrust.
	LowThrustStates = 7
	// LowThrustControls is the size of the control [ux uy uz] of LowThrust.
	LowThrustControls = 3
)

// LowThrust is a spacecraft with an electric thruster orbiting a body whose gravity includes J2.
// The state is the Cartesian position (km) and velocity (km/s) followed by the mass (kg). The
// control is the thrust direction scaled by the throttle, constrained to the unit ball by the
// algebraic function ‖u‖². The cost integrand is ‖u‖².
//
// The state Jacobian of the dynamics is analytic, the others are left to finite differences.
type LowThrust struct {
	Body     CelestialObject
	Thruster Thruster
}

// NewLowThrust returns a new low thrust path function.
func NewLowThrust(body CelestialObject, thruster Thruster) *LowThrust {
	return &LowThrust{Body: body, Thruster: thruster}
}

// Initialize implements the optctl.Initializer interface.
func (lt *LowThrust) Initialize(in *optctl.FunctionInputData, out *optctl.PathFunctionContainer) error {
	if lt.Thruster == nil {
		return errors.New("low thrust: no thruster")
	}
	if thrust, isp := lt.Thruster.Thrust(); thrust <= 0 || isp <= 0 {
		return errors.Errorf("low thrust: invalid thruster (%g N, %g s)", thrust, isp)
	}
	if lt.Body.GM() <= 0 {
		return errors.Errorf("low thrust: %s has no gravity", lt.Body)
	}
	if n := in.NumVars(optctl.State); n != LowThrustStates {
		return errors.Errorf("low thrust: %d states, expected %d", n, LowThrustStates)
	}
	if n := in.NumVars(optctl.Control); n != LowThrustControls {
		return errors.Errorf("low thrust: %d controls, expected %d", n, LowThrustControls)
	}
	out.Dyn().SetFunctionNames([]string{"xDot", "yDot", "zDot", "vxDot", "vyDot", "vzDot", "mDot"})
	out.Alg().SetFunctionNames([]string{"throttle"})
	out.Cost().SetFunctionNames([]string{"thrustEffort"})
	return nil
}

// EvaluateFunctions implements the optctl.PathFunction interface.
func (lt *LowThrust) EvaluateFunctions(in *optctl.FunctionInputData, out *optctl.PathFunctionContainer) error {
	s, u := in.State(), in.Control()
	thrust, isp := lt.Thruster.Thrust()
	mass := s[6]
	acc := lt.gravity(s[0:3])
	floats.AddScaled(acc, thrust/(1000*mass), u)
	u2 := floats.Dot(u, u)

	dyn := make([]float64, LowThrustStates)
	copy(dyn[0:3], s[3:6])
	copy(dyn[3:6], acc)
	dyn[6] = -thrust * math.Sqrt(u2) / (isp * g0)
	if err := out.Dyn().SetFunctions(dyn); err != nil {
		return err
	}
	if err := out.Alg().SetFunctions([]float64{u2}); err != nil {
		return err
	}
	if err := out.Alg().SetBounds([]float64{0}, []float64{1}); err != nil {
		return err
	}
	return out.Cost().SetFunctions([]float64{u2})
}

// EvaluateJacobians implements the optctl.JacobianEvaluator interface.
func (lt *LowThrust) EvaluateJacobians(in *optctl.FunctionInputData, out *optctl.PathFunctionContainer) error {
	s, u := in.State(), in.Control()
	thrust, _ := lt.Thruster.Thrust()
	mass := s[6]
	A := mat.NewDense(LowThrustStates, LowThrustStates, nil)
	// Velocity
	A.Set(0, 3, 1)
	A.Set(1, 4, 1)
	A.Set(2, 5, 1)
	// Gravity
	A.Slice(3, 6, 0, 3).(*mat.Dense).Copy(lt.gravityPartials(s[0:3]))
	// Thrust acceleration with respect to the mass
	for i := 0; i < 3; i++ {
		A.Set(3+i, 6, -thrust*u[i]/(1000*mass*mass))
	}
	return out.Dyn().SetStateJacobian(A)
}

// gravity returns the two body and J2 acceleration at R.
func (lt *LowThrust) gravity(R []float64) []float64 {
	μ := lt.Body.GM()
	r := floats.Norm(R, 2)
	acc := make([]float64, 3)
	floats.ScaleTo(acc, -μ/math.Pow(r, 3), R)
	if lt.Body.J2 == 0 {
		return acc
	}
	k := 1.5 * lt.Body.J2 * μ * lt.Body.Radius * lt.Body.Radius / math.Pow(r, 5)
	z2 := 5 * R[2] * R[2] / (r * r)
	acc[0] -= k * R[0] * (1 - z2)
	acc[1] -= k * R[1] * (1 - z2)
	acc[2] -= k * R[2] * (3 - z2)
	return acc
}

// gravityPartials returns the partials of the gravity acceleration with respect to the position.
func (lt *LowThrust) gravityPartials(R []float64) *mat.Dense {
	μ := lt.Body.GM()
	x, y, z := R[0], R[1], R[2]
	r := floats.Norm(R, 2)
	r3 := math.Pow(r, 3)
	r5 := math.Pow(r, 5)
	G := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := 3 * μ * R[i] * R[j] / r5
			if i == j {
				v -= μ / r3
			}
			G.Set(i, j, v)
		}
	}
	if lt.Body.J2 == 0 {
		return G
	}
	r7 := math.Pow(r, 7)
	r9 := math.Pow(r, 9)
	x2, y2, z2 := x*x, y*y, z*z
	k := 1.5 * lt.Body.J2 * μ * lt.Body.Radius * lt.Body.Radius
	dAxDx := -k * (1/r5 - 5*x2/r7 - 5*z2/r7 + 35*x2*z2/r9)
	dAxDy := -k * (-5*x*y/r7 + 35*x*y*z2/r9)
	dAxDz := -k * (-15*x*z/r7 + 35*x*z*z2/r9)
	dAyDy := -k * (1/r5 - 5*y2/r7 - 5*z2/r7 + 35*y2*z2/r9)
	dAyDz := -k * (-15*y*z/r7 + 35*y*z*z2/r9)
	dAzDz := -k * (3/r5 - 30*z2/r7 + 35*z2*z2/r9)
	J := mat.NewDense(3, 3, []float64{
		dAxDx, dAxDy, dAxDz,
		dAxDy, dAyDy, dAyDz,
		dAxDz, dAyDz, dAzDz,
	})
	G.Add(G, J)
	return G
}
