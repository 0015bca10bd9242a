// Package sampler implements stochastic-gradient MCMC step engines:
// SGLD, SGHMC, SGNHT and their control-variate variants. Every engine
// satisfies sgmcmc.StepEngine and is driven by a GradEstimator, which
// supplies unbiased minibatch estimates of the log-posterior gradient.
package sampler

import (
	"github.com/chewxy/math32"
	rng "github.com/leesper/go_rng"
	"github.com/pkg/errors"

	"github.com/cran/sgmcmc"
	"github.com/cran/sgmcmc/data"
)

// GradEstimator estimates the gradient of the log posterior. Grad must
// return an unbiased estimate scaled to full-dataset magnitude, keyed
// exactly like theta.
type GradEstimator interface {
	Grad(theta sgmcmc.ParameterSet, batch data.Batch) (sgmcmc.ParameterSet, error)
}

// Batcher supplies one minibatch per call.
type Batcher interface {
	Batch() (data.Batch, error)
}

// engine is the state shared by all variants: the owned parameter set,
// the resolved per-parameter stepsizes, the gradient source and the
// injection-noise RNG.
type engine struct {
	theta   sgmcmc.ParameterSet
	eps     map[string]float32
	grad    GradEstimator
	batcher Batcher
	gauss   *rng.GaussianGenerator
}

func newEngine(grad GradEstimator, batcher Batcher, init sgmcmc.ParameterSet, conf Config) (engine, error) {
	if grad == nil {
		return engine{}, errors.New("nil GradEstimator")
	}
	if batcher == nil {
		return engine{}, errors.New("nil Batcher")
	}
	if err := init.Check(); err != nil {
		return engine{}, err
	}
	eps, err := conf.stepsizes(init)
	if err != nil {
		return engine{}, err
	}
	return engine{
		theta:   init.Clone(),
		eps:     eps,
		grad:    grad,
		batcher: batcher,
		gauss:   rng.NewGaussianGenerator(conf.Seed),
	}, nil
}

// gradient draws a minibatch and estimates the log-posterior gradient at
// the current parameters.
func (e *engine) gradient() (sgmcmc.ParameterSet, error) {
	b, err := e.batcher.Batch()
	if err != nil {
		return nil, errors.Wrap(err, "minibatch")
	}
	g, err := e.grad.Grad(e.theta, b)
	if err != nil {
		return nil, errors.Wrap(err, "gradient estimate")
	}
	return g, nil
}

// each runs f once per parameter with the raw value and gradient slices.
func (e *engine) each(g sgmcmc.ParameterSet, f func(name string, eps float32, td, gd []float32)) error {
	for name, t := range e.theta {
		gt, ok := g[name]
		if !ok {
			return errors.Errorf("gradient estimate is missing parameter %q", name)
		}
		td := t.Data().([]float32)
		gd := gt.Data().([]float32)
		if len(gd) != len(td) {
			return errors.Errorf("gradient for %q has %d elements. Want %d", name, len(gd), len(td))
		}
		f(name, e.eps[name], td, gd)
	}
	return nil
}

// normal draws a standard Gaussian variate.
func (e *engine) normal() float32 {
	return float32(e.gauss.Gaussian(0, 1))
}

// snapshot copies the current parameters out of the engine.
func (e *engine) snapshot() sgmcmc.ParameterSet {
	return e.theta.Clone()
}

// checkFinite detects numerical divergence. A non-finite value anywhere
// in the state is fatal: the run aborts rather than continuing from a
// poisoned chain.
func (e *engine) checkFinite() error {
	for name, t := range e.theta {
		for _, v := range t.Data().([]float32) {
			if math32.IsNaN(v) || math32.IsInf(v, 0) {
				return errors.Errorf("sampler diverged: parameter %q is not finite", name)
			}
		}
	}
	return nil
}
