package sampler

import (
	"github.com/chewxy/math32"

	"github.com/cran/sgmcmc"
)

// SGNHT is the stochastic gradient Nosé-Hoover thermostat (Ding et al.
// 2014). The scalar thermostat xi adapts the friction so the kinetic
// energy of the momentum stays at its target:
//
//	nu    <- nu + eps ghat - xi nu + N(0, 2 a eps)
//	theta <- theta + nu
//	xi    <- xi + |nu|^2 / d - epsbar
//
// where d is the total parameter element count and epsbar the
// element-weighted mean stepsize. xi starts at the diffusion constant A.
type SGNHT struct {
	engine
	nu sgmcmc.ParameterSet
	xi float32
	a  float32

	dim     int
	meanEps float32
}

// NewSGNHT builds an SGNHT engine starting from init, with zero initial
// momentum and the thermostat at A.
func NewSGNHT(grad GradEstimator, batcher Batcher, init sgmcmc.ParameterSet, conf Config) (*SGNHT, error) {
	e, err := newEngine(grad, batcher, init, conf)
	if err != nil {
		return nil, err
	}
	var sum float32
	for name, t := range e.theta {
		sum += e.eps[name] * float32(t.Shape().TotalSize())
	}
	dim := e.theta.NumElements()
	return &SGNHT{
		engine:  e,
		nu:      init.ZeroesLike(),
		xi:      conf.A,
		a:       conf.A,
		dim:     dim,
		meanEps: sum / float32(dim),
	}, nil
}

// Xi returns the current thermostat value.
func (s *SGNHT) Xi() float32 { return s.xi }

// Step advances the chain one transition.
func (s *SGNHT) Step() (sgmcmc.ParameterSet, error) {
	g, err := s.gradient()
	if err != nil {
		return nil, err
	}
	var sumsq float32
	err = s.each(g, func(name string, eps float32, td, gd []float32) {
		nd := s.nu[name].Data().([]float32)
		std := math32.Sqrt(2 * s.a * eps)
		for i := range td {
			nd[i] += eps*gd[i] - s.xi*nd[i]
			if std > 0 {
				nd[i] += std * s.normal()
			}
			td[i] += nd[i]
			sumsq += nd[i] * nd[i]
		}
	})
	if err != nil {
		return nil, err
	}
	s.xi += sumsq/float32(s.dim) - s.meanEps
	if err = s.checkFinite(); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}
