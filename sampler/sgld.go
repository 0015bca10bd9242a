package sampler

import (
	"github.com/chewxy/math32"

	"github.com/cran/sgmcmc"
)

// SGLD is stochastic gradient Langevin dynamics (Welling & Teh 2011).
// Each step is a noisy Euler discretization of the Langevin diffusion:
//
//	theta <- theta + (eps/2) ghat + N(0, eps)
type SGLD struct {
	engine
}

// NewSGLD builds an SGLD engine starting from init. init is copied; the
// caller's tensors are never mutated.
func NewSGLD(grad GradEstimator, batcher Batcher, init sgmcmc.ParameterSet, conf Config) (*SGLD, error) {
	e, err := newEngine(grad, batcher, init, conf)
	if err != nil {
		return nil, err
	}
	return &SGLD{engine: e}, nil
}

// Step advances the chain one transition.
func (s *SGLD) Step() (sgmcmc.ParameterSet, error) {
	g, err := s.gradient()
	if err != nil {
		return nil, err
	}
	err = s.each(g, func(name string, eps float32, td, gd []float32) {
		half := 0.5 * eps
		std := math32.Sqrt(eps)
		for i := range td {
			td[i] += half * gd[i]
			if std > 0 {
				td[i] += std * s.normal()
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if err = s.checkFinite(); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}
