package sgmcmc

import "github.com/pkg/errors"

// BroadcastStepsizes expands the scalar stepsize shorthand to a full
// per-parameter map covering every key of params.
func BroadcastStepsizes(params ParameterSet, stepsize float32) map[string]float32 {
	retVal := make(map[string]float32, len(params))
	for name := range params {
		retVal[name] = stepsize
	}
	return retVal
}

// ValidateStepsizes checks that the tuning map and the parameter set
// share exactly the same key set and that no stepsize is negative.
// It is a configuration error, raised before any step is taken, for a
// parameter to lack a stepsize or for a stepsize to name an unknown
// parameter.
func ValidateStepsizes(params ParameterSet, stepsizes map[string]float32) error {
	for name := range params {
		eps, ok := stepsizes[name]
		if !ok {
			return errors.Errorf("no stepsize for parameter %q", name)
		}
		if eps < 0 {
			return errors.Errorf("stepsize for parameter %q is negative: %v", name, eps)
		}
	}
	for name := range stepsizes {
		if _, ok := params[name]; !ok {
			return errors.Errorf("stepsize names unknown parameter %q", name)
		}
	}
	return nil
}
