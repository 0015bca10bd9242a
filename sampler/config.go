package sampler

import (
	"github.com/pkg/errors"

	"github.com/cran/sgmcmc"
)

// Config holds the tuning constants shared by the samplers. StepSize is
// the scalar shorthand broadcast to every parameter; StepSizes, when
// set, gives per-parameter stepsizes and must cover the parameter key
// set exactly.
type Config struct {
	StepSize  float32
	StepSizes map[string]float32

	Alpha float32 // SGHMC momentum decay
	A     float32 // SGNHT thermostat diffusion

	Seed int64
}

// DefaultConf uses the given scalar stepsize and the variant constants
// the vignettes use.
func DefaultConf(stepsize float32) Config {
	return Config{
		StepSize: stepsize,
		Alpha:    0.01,
		A:        0.01,
		Seed:     1337,
	}
}

func (conf Config) IsValid() bool {
	return (conf.StepSize > 0 || len(conf.StepSizes) > 0) &&
		conf.Alpha >= 0 && conf.Alpha <= 1 &&
		conf.A >= 0
}

// stepsizes resolves the per-parameter stepsize map for theta, raising a
// configuration error on any key mismatch before a single step is taken.
func (conf Config) stepsizes(theta sgmcmc.ParameterSet) (map[string]float32, error) {
	if len(conf.StepSizes) > 0 {
		if err := sgmcmc.ValidateStepsizes(theta, conf.StepSizes); err != nil {
			return nil, err
		}
		retVal := make(map[string]float32, len(conf.StepSizes))
		for name, eps := range conf.StepSizes {
			retVal[name] = eps
		}
		return retVal, nil
	}
	if conf.StepSize <= 0 {
		return nil, errors.Errorf("stepsize must be positive, got %v", conf.StepSize)
	}
	return sgmcmc.BroadcastStepsizes(theta, conf.StepSize), nil
}
