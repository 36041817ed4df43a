package main

import (
	"flag"
	"fmt"
	"os"

	optctl "github.com/ChristopherRabotin/GMAT-sub024"
	"github.com/ChristopherRabotin/GMAT-sub024/tools"
	kitlog "github.com/go-kit/kit/log"
)

// This code reads one phase from a scenario, initializes the path function manager on it and
// exports the sparsity patterns and Jacobians at the nominal point.

const defaultScenario = "~~unset~~"

var (
	scenarioName string
	verbose      bool
	seed         uint64
)

func init() {
	// Read flags
	flag.StringVar(&scenarioName, "scenario", defaultScenario, "path function scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
	flag.Uint64Var(&seed, "seed", 0, "seed of the sparsity discovery (0 uses the configuration)")
}

func main() {
	flag.Parse()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	if scenarioName == defaultScenario {
		logger.Log("level", "critical", "subsys", "conf", "message", "no scenario provided")
		os.Exit(1)
	}
	if err := run(logger, ".", scenarioName); err != nil {
		logger.Log("level", "critical", "subsys", "pathfn", "err", err)
		os.Exit(1)
	}
}

func run(logger kitlog.Logger, dir, name string) error {
	sc, err := loadScenario(dir, name)
	if err != nil {
		return err
	}
	if verbose {
		logger.Log("level", "info", "subsys", "conf", "model", sc.model, "start", sc.start, "end", sc.end,
			"states", sc.in.NumVars(optctl.State), "controls", sc.in.NumVars(optctl.Control), "statics", sc.in.NumVars(optctl.Static))
	}
	opts := []optctl.Option{optctl.WithLogger(logger)}
	if seed != 0 {
		opts = append(opts, optctl.WithSeed(seed))
	}
	m := optctl.NewPathFunctionManager(opts...)
	out := optctl.NewPathFunctionContainer()
	if err := m.Initialize(sc.pf, sc.in, out, sc.bounds); err != nil {
		return err
	}
	if _, err := m.EvaluateUserJacobian(sc.in, out, optctl.Dynamics, false); err != nil {
		return err
	}
	for _, f := range optctl.FuncTypes {
		props, _ := m.FunctionProperties(f)
		logger.Log("level", "info", "subsys", "pathfn", "category", f, "functions", m.NumFunctions(f),
			"nnzState", props.NonZeros(optctl.State), "nnzControl", props.NonZeros(optctl.Control), "nnzTime", props.NonZeros(optctl.Time))
	}

	files, err := m.Export(optctl.ExportConfig{Filename: sc.name, AsCSV: true, AsJSON: true})
	if err != nil {
		return err
	}
	for _, f := range optctl.FuncTypes {
		if m.NumFunctions(f) == 0 {
			continue
		}
		props, _ := m.FunctionProperties(f)
		filename := fmt.Sprintf("%s/spy-%s-%s.png", optctl.OutputDir(), f, sc.name)
		if err := tools.SaveSpyPlot(props, fmt.Sprintf("%s %s", sc.name, f), filename); err != nil {
			return err
		}
		files = append(files, filename)
	}
	if verbose {
		for _, f := range files {
			logger.Log("level", "info", "subsys", "export", "file", f)
		}
	}
	return nil
}
