package dynamics

import (
	"fmt"
	"strings"
)

// Thruster defines a thruster interface.
type Thruster interface {
	// Returns the thrust in Newtons and the specific impulse in seconds at full throttle.
	Thrust() (thrust, isp float64)
}

/* Available thrusters */

// PPS1350 is the Snecma thruster used on SMART-1.
type PPS1350 struct{}

// Thrust implements the Thruster interface.
func (t *PPS1350) Thrust() (thrust, isp float64) {
	return 89e-3, 1650
}

// HERMeS is based on the NASA & Rocketdyne 12.5kW demo
type HERMeS struct{}

// Thrust implements the Thruster interface.
func (t *HERMeS) Thrust() (thrust, isp float64) {
	return 0.680, 2960
}

// GenericEP is a generic EP thruster.
type GenericEP struct {
	thrust float64
	isp    float64
}

// Thrust implements the Thruster interface.
func (t *GenericEP) Thrust() (thrust, isp float64) {
	return t.thrust, t.isp
}

// NewGenericEP returns a generic electric prop thruster.
func NewGenericEP(thrust, isp float64) *GenericEP {
	return &GenericEP{thrust, isp}
}

// ThrusterFromString returns a named thruster. The generic thruster uses the provided thrust
// (N) and isp (s).
func ThrusterFromString(name string, thrust, isp float64) (Thruster, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pps1350":
		return new(PPS1350), nil
	case "hermes":
		return new(HERMeS), nil
	case "generic", "":
		if thrust <= 0 || isp <= 0 {
			return nil, fmt.Errorf("generic thruster requires a positive thrust and isp, got %g N and %g s", thrust, isp)
		}
		return NewGenericEP(thrust, isp), nil
	default:
		return nil, fmt.Errorf("undefined thruster '%s'", name)
	}
}
