package optctl

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

const (
	// ConfigEnv is the environment variable holding the directory of conf.toml.
	ConfigEnv = "OPTCTL_CONFIG"
	// DefaultRandomSamples is the number of random interior points used for sparsity discovery.
	DefaultRandomSamples = 100
)

var (
	cfgMu     sync.Mutex
	cfgLoaded = false
	config    = _optctlconfig{}
)

// _optctlconfig is a "hidden" struct, just use `settings()`
type _optctlconfig struct {
	perturbation  varSet[float64]
	randomSamples int
	seed          uint64
	checkFinite   bool
	outputDir     string
}

// Perturbation returns the configured finite difference step for the variable type.
func (c _optctlconfig) Perturbation(v VarType) float64 {
	if !v.Valid() {
		return DefaultPerturbation
	}
	return *c.perturbation.at(v)
}

// OutputDir returns the configured output directory.
func (c _optctlconfig) OutputDir() string {
	return c.outputDir
}

func defaultConfig() _optctlconfig {
	c := _optctlconfig{randomSamples: DefaultRandomSamples, checkFinite: true, outputDir: "./"}
	for _, v := range VarTypes {
		*c.perturbation.at(v) = DefaultPerturbation
	}
	return c
}

// settings returns the configuration, safe for concurrent use. Without the OPTCTL_CONFIG
// environment variable, the defaults are used.
func settings() _optctlconfig {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	if cfgLoaded {
		return config
	}
	confPath := os.Getenv(ConfigEnv)
	if confPath == "" {
		return defaultConfig()
	}
	conf, err := loadConfig(confPath)
	if err != nil {
		panic(err)
	}
	config = conf
	cfgLoaded = true
	return config
}

// loadConfig reads conf.toml from the provided directory.
func loadConfig(confPath string) (_optctlconfig, error) {
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(confPath)
	v.SetDefault("perturbation.state", DefaultPerturbation)
	v.SetDefault("perturbation.control", DefaultPerturbation)
	v.SetDefault("perturbation.time", DefaultPerturbation)
	v.SetDefault("perturbation.static", DefaultPerturbation)
	v.SetDefault("sparsity.samples", DefaultRandomSamples)
	v.SetDefault("sparsity.seed", 0)
	v.SetDefault("guards.finite", true)
	v.SetDefault("general.output_path", "./")
	if err := v.ReadInConfig(); err != nil {
		return _optctlconfig{}, fmt.Errorf("%s/conf.toml: %s", confPath, err)
	}
	c := _optctlconfig{
		randomSamples: v.GetInt("sparsity.samples"),
		seed:          v.GetUint64("sparsity.seed"),
		checkFinite:   v.GetBool("guards.finite"),
		outputDir:     v.GetString("general.output_path"),
	}
	for _, vt := range VarTypes {
		step := v.GetFloat64("perturbation." + vt.String())
		if step <= 0 {
			return _optctlconfig{}, fmt.Errorf("perturbation.%s must be positive, got %g", vt, step)
		}
		*c.perturbation.at(vt) = step
	}
	if c.randomSamples < 0 {
		return _optctlconfig{}, fmt.Errorf("sparsity.samples must not be negative, got %d", c.randomSamples)
	}
	return c, nil
}

// OutputDir returns the directory where the exports are written.
func OutputDir() string {
	return settings().OutputDir()
}
