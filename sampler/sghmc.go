package sampler

import (
	"github.com/chewxy/math32"

	"github.com/cran/sgmcmc"
)

// SGHMC is stochastic gradient Hamiltonian Monte Carlo (Chen et al.
// 2014), with a persistent momentum nu decayed by the friction constant
// Alpha:
//
//	nu    <- (1 - alpha) nu + eps ghat + N(0, 2 alpha eps)
//	theta <- theta + nu
type SGHMC struct {
	engine
	nu    sgmcmc.ParameterSet
	alpha float32
}

// NewSGHMC builds an SGHMC engine starting from init, with zero initial
// momentum.
func NewSGHMC(grad GradEstimator, batcher Batcher, init sgmcmc.ParameterSet, conf Config) (*SGHMC, error) {
	e, err := newEngine(grad, batcher, init, conf)
	if err != nil {
		return nil, err
	}
	return &SGHMC{
		engine: e,
		nu:     init.ZeroesLike(),
		alpha:  conf.Alpha,
	}, nil
}

// Step advances the chain one transition.
func (s *SGHMC) Step() (sgmcmc.ParameterSet, error) {
	g, err := s.gradient()
	if err != nil {
		return nil, err
	}
	err = s.each(g, func(name string, eps float32, td, gd []float32) {
		nd := s.nu[name].Data().([]float32)
		decay := 1 - s.alpha
		std := math32.Sqrt(2 * s.alpha * eps)
		for i := range td {
			nd[i] = decay*nd[i] + eps*gd[i]
			if std > 0 {
				nd[i] += std * s.normal()
			}
			td[i] += nd[i]
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
