package sampler

import (
	"github.com/pkg/errors"
	"gorgonia.org/vecf32"

	"github.com/cran/sgmcmc"
	"github.com/cran/sgmcmc/data"
)

// ControlVariate reduces the variance of a base gradient estimator. With
// thetahat a posterior mode estimate and gfull the full-data gradient
// there, the corrected estimate is
//
//	ghat_cv(theta) = gfull(thetahat) + ghat(theta) - ghat(thetahat)
//
// evaluated on the same minibatch at theta and thetahat, so the
// minibatch noise common to both terms cancels. Near the mode the
// variance is much smaller than the base estimator's.
type ControlVariate struct {
	base GradEstimator
	mode sgmcmc.ParameterSet
	full sgmcmc.ParameterSet
}

// NewControlVariate wraps base. mode is the fixed reference point and
// full the full-data log-posterior gradient at mode (see FullGrad).
func NewControlVariate(base GradEstimator, mode, full sgmcmc.ParameterSet) *ControlVariate {
	return &ControlVariate{
		base: base,
		mode: mode.Clone(),
		full: full.Clone(),
	}
}

// Grad implements GradEstimator.
func (cv *ControlVariate) Grad(theta sgmcmc.ParameterSet, batch data.Batch) (sgmcmc.ParameterSet, error) {
	gTheta, err := cv.base.Grad(theta, batch)
	if err != nil {
		return nil, err
	}
	gMode, err := cv.base.Grad(cv.mode, batch)
	if err != nil {
		return nil, err
	}

	retVal := cv.full.Clone()
	for name, t := range retVal {
		a, ok := gTheta[name]
		if !ok {
			return nil, errors.Errorf("base estimate is missing parameter %q", name)
		}
		b, ok := gMode[name]
		if !ok {
			return nil, errors.Errorf("base estimate at mode is missing parameter %q", name)
		}
		td := t.Data().([]float32)
		vecf32.Add(td, a.Data().([]float32))
		vecf32.Sub(td, b.Data().([]float32))
	}
	return retVal, nil
}

// FullGrad computes the full-data log-posterior gradient at theta by
// averaging the base estimator over a disjoint partition of the dataset
// (data.Minibatcher.Partition). Because each estimate is prior + scaled
// minibatch likelihood, the partition average telescopes to the exact
// full-data gradient.
func FullGrad(base GradEstimator, theta sgmcmc.ParameterSet, parts []data.Batch) (sgmcmc.ParameterSet, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty partition")
	}
	avg := sgmcmc.NewRunningAverage()
	for i, part := range parts {
		g, err := base.Grad(theta, part)
		if err != nil {
			return nil, errors.Wrapf(err, "partition batch %d", i)
		}
		if err = avg.Fold(g); err != nil {
			return nil, errors.Wrapf(err, "partition batch %d", i)
		}
	}
	return avg.Mean(), nil
}

// SetupCV runs the control-variate setup phase: an initial SGD ascent of
// optSteps from init to locate the posterior mode, then one pass over
// parts for the full-data gradient there. It returns the wrapped
// estimator and the mode, which is the recommended chain start.
func SetupCV(base GradEstimator, batcher Batcher, parts []data.Batch, init sgmcmc.ParameterSet, optSteps int, conf Config) (*ControlVariate, sgmcmc.ParameterSet, error) {
	opt, err := NewModeSGD(base, batcher, init, conf)
	if err != nil {
		return nil, nil, err
	}
	mode, err := opt.Run(optSteps)
	if err != nil {
		return nil, nil, errors.Wrap(err, "mode search")
	}
	full, err := FullGrad(base, mode, parts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "full-data gradient")
	}
	return NewControlVariate(base, mode, full), mode, nil
}

// NewSGLDCV is SGLD with control variates: SetupCV followed by an SGLD
// chain started at the mode.
func NewSGLDCV(base GradEstimator, batcher Batcher, parts []data.Batch, init sgmcmc.ParameterSet, optSteps int, conf Config) (*SGLD, error) {
	cv, mode, err := SetupCV(base, batcher, parts, init, optSteps, conf)
	if err != nil {
		return nil, err
	}
	return NewSGLD(cv, batcher, mode, conf)
}

// NewSGHMCCV is SGHMC with control variates.
func NewSGHMCCV(base GradEstimator, batcher Batcher, parts []data.Batch, init sgmcmc.ParameterSet, optSteps int, conf Config) (*SGHMC, error) {
	cv, mode, err := SetupCV(base, batcher, parts, init, optSteps, conf)
	if err != nil {
		return nil, err
	}
	return NewSGHMC(cv, batcher, mode, conf)
}

// NewSGNHTCV is SGNHT with control variates.
func NewSGNHTCV(base GradEstimator, batcher Batcher, parts []data.Batch, init sgmcmc.ParameterSet, optSteps int, conf Config) (*SGNHT, error) {
	cv, mode, err := SetupCV(base, batcher, parts, init, optSteps, conf)
	if err != nil {
		return nil, err
	}
	return NewSGNHT(cv, batcher, mode, conf)
}
