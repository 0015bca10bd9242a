package sampler

import (
	"math"

	"gorgonia.org/tensor"

	"github.com/cran/sgmcmc"
	"github.com/cran/sgmcmc/data"
)

// gradFn adapts a plain function to GradEstimator.
type gradFn func(theta sgmcmc.ParameterSet, batch data.Batch) (sgmcmc.ParameterSet, error)

func (f gradFn) Grad(theta sgmcmc.ParameterSet, batch data.Batch) (sgmcmc.ParameterSet, error) {
	return f(theta, batch)
}

// emptyBatcher yields empty batches for estimators that ignore data.
type emptyBatcher struct{}

func (emptyBatcher) Batch() (data.Batch, error) { return data.Batch{}, nil }

func scalar(v float32) *tensor.Dense {
	return tensor.New(tensor.WithShape(1), tensor.WithBacking([]float32{v}))
}

func scalarTheta(v float32) sgmcmc.ParameterSet {
	return sgmcmc.ParameterSet{"theta": scalar(v)}
}

func thetaVal(ps sgmcmc.ParameterSet) float32 {
	return ps["theta"].Data().([]float32)[0]
}

// constGrad always reports the same gradient.
func constGrad(g float32) gradFn {
	return func(theta sgmcmc.ParameterSet, _ data.Batch) (sgmcmc.ParameterSet, error) {
		return scalarTheta(g), nil
	}
}

// pullGrad points toward target: g = target - theta.
func pullGrad(target float32) gradFn {
	return func(theta sgmcmc.ParameterSet, _ data.Batch) (sgmcmc.ParameterSet, error) {
		return scalarTheta(target - thetaVal(theta)), nil
	}
}

func nanGrad() gradFn {
	return constGrad(float32(math.NaN()))
}
