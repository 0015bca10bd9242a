package sampler

import (
	"gorgonia.org/vecf32"

	"github.com/cran/sgmcmc"
)

// ModeSGD ascends the estimated log posterior by plain stochastic
// gradient steps, theta <- theta + eps ghat. It is the optimisation
// phase of the control-variate setup, and is exported for standalone MAP
// estimation.
type ModeSGD struct {
	engine
	scratch map[string][]float32
}

// NewModeSGD builds the optimiser starting from init.
func NewModeSGD(grad GradEstimator, batcher Batcher, init sgmcmc.ParameterSet, conf Config) (*ModeSGD, error) {
	e, err := newEngine(grad, batcher, init, conf)
	if err != nil {
		return nil, err
	}
	scratch := make(map[string][]float32, len(e.theta))
	for name, t := range e.theta {
		scratch[name] = make([]float32, t.Shape().TotalSize())
	}
	return &ModeSGD{engine: e, scratch: scratch}, nil
}

// Run performs steps updates and returns a copy of the final parameters.
func (s *ModeSGD) Run(steps int) (sgmcmc.ParameterSet, error) {
	for i := 0; i < steps; i++ {
		g, err := s.gradient()
		if err != nil {
			return nil, err
		}
		err = s.each(g, func(name string, eps float32, td, gd []float32) {
			delta := s.scratch[name]
			copy(delta, gd)
			vecf32.Scale(delta, eps)
			vecf32.Add(td, delta)
		})
		if err != nil {
			return nil, err
		}
		if err = s.checkFinite(); err != nil {
			return nil, err
		}
	}
	return s.snapshot(), nil
}

// Step makes ModeSGD usable as a sgmcmc.StepEngine, one ascent step per
// call.
func (s *ModeSGD) Step() (sgmcmc.ParameterSet, error) {
	return s.Run(1)
}
