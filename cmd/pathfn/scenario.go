package main

import (
	"fmt"
	"strings"
	"time"

	optctl "github.com/ChristopherRabotin/GMAT-sub024"
	"github.com/ChristopherRabotin/GMAT-sub024/dynamics"
	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

// scenario is one phase read from a TOML file.
type scenario struct {
	name   string
	model  string
	pf     optctl.PathFunction
	in     *optctl.FunctionInputData
	bounds *optctl.BoundData
	start  time.Time
	end    time.Time
}

// loadScenario reads the scenario file (without its .toml extension) from the directory.
func loadScenario(dir, name string) (*scenario, error) {
	name = strings.Replace(name, ".toml", "", 1)
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(name)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s/%s.toml: Error %s", dir, name, err)
	}
	return readScenario(v, name)
}

func readScenario(v *viper.Viper, name string) (*scenario, error) {
	sc := &scenario{name: name, model: strings.ToLower(v.GetString("phase.model"))}
	var err error
	if sc.pf, err = readModel(v, sc.model); err != nil {
		return nil, err
	}

	// Time is in seconds from the start of the mission.
	if sc.start, err = confReadJDEorTime(v, "mission.start"); err != nil {
		return nil, err
	}
	if sc.end, err = confReadJDEorTime(v, "mission.end"); err != nil {
		return nil, err
	}
	if !sc.end.After(sc.start) {
		return nil, errors.Errorf("mission ends (%s) before it starts (%s)", sc.end, sc.start)
	}

	state, control, static, err := readVectors(v, "nominal")
	if err != nil {
		return nil, err
	}
	sc.in = optctl.NewFunctionInputData(len(state), len(control), len(static))
	sc.in.SetPhase(v.GetInt("phase.number"))
	sc.in.SetStateVector(state)
	sc.in.SetControlVector(control)
	sc.in.SetStaticVector(static)
	sc.in.SetTime(v.GetFloat64("nominal.time"))

	sc.bounds = optctl.NewBoundData()
	for _, vt := range []optctl.VarType{optctl.State, optctl.Control, optctl.Static} {
		if sc.in.NumVars(vt) == 0 {
			continue
		}
		var lower, upper []float64
		if err := v.UnmarshalKey(fmt.Sprintf("bounds.%s.lower", vt), &lower); err != nil {
			return nil, errors.Wrapf(err, "bounds.%s.lower", vt)
		}
		if err := v.UnmarshalKey(fmt.Sprintf("bounds.%s.upper", vt), &upper); err != nil {
			return nil, errors.Wrapf(err, "bounds.%s.upper", vt)
		}
		if len(lower) != sc.in.NumVars(vt) {
			return nil, errors.Errorf("bounds.%s has %d values for %d variables", vt, len(lower), sc.in.NumVars(vt))
		}
		if err := sc.bounds.SetBounds(vt, lower, upper); err != nil {
			return nil, err
		}
	}
	if err := sc.bounds.SetTimeBounds(0, sc.end.Sub(sc.start).Seconds()); err != nil {
		return nil, err
	}
	return sc, nil
}

func readModel(v *viper.Viper, model string) (optctl.PathFunction, error) {
	switch model {
	case "lowthrust":
		body, err := dynamics.CelestialObjectFromString(v.GetString("phase.body"))
		if err != nil {
			return nil, err
		}
		thruster, err := dynamics.ThrusterFromString(v.GetString("phase.thruster"), v.GetFloat64("phase.thrust"), v.GetFloat64("phase.isp"))
		if err != nil {
			return nil, err
		}
		return dynamics.NewLowThrust(body, thruster), nil
	case "brachistochrone":
		v.SetDefault("phase.gravity", 9.80665)
		return dynamics.NewBrachistochrone(v.GetFloat64("phase.gravity")), nil
	}
	return nil, errors.Errorf("unknown model `%s` (valid: lowthrust, brachistochrone)", model)
}

func readVectors(v *viper.Viper, prefix string) (state, control, static []float64, err error) {
	for _, item := range []struct {
		key string
		dst *[]float64
	}{{"state", &state}, {"control", &control}, {"static", &static}} {
		key := prefix + "." + item.key
		if !v.IsSet(key) {
			continue
		}
		if err = v.UnmarshalKey(key, item.dst); err != nil {
			return nil, nil, nil, errors.Wrap(err, key)
		}
	}
	return
}

// confReadJDEorTime reads a date either as a JDE or as a time.
func confReadJDEorTime(v *viper.Viper, key string) (dt time.Time, err error) {
	if !v.IsSet(key) {
		return dt, errors.Errorf("%s is not set", key)
	}
	jde := v.GetFloat64(key)
	if jde == 0 {
		dt = v.GetTime(key)
		if dt.IsZero() {
			return dt, errors.Errorf("%s is neither a JDE nor a date", key)
		}
	} else {
		dt = julian.JDToTime(jde)
	}
	return dt, nil
}
