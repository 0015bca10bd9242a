package sgmcmc

import (
	"sort"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Float is the element type used for all parameter tensors.
var Float = tensor.Float32

// ParameterSet maps parameter names to their current values. The key set
// and the shape of every tensor are fixed for the lifetime of a run.
type ParameterSet map[string]*tensor.Dense

// Clone returns a deep copy. The copy shares nothing with the original,
// so it is safe to retain as a snapshot while the engine keeps stepping.
func (ps ParameterSet) Clone() ParameterSet {
	retVal := make(ParameterSet, len(ps))
	for name, t := range ps {
		retVal[name] = t.Clone().(*tensor.Dense)
	}
	return retVal
}

// ZeroesLike returns a ParameterSet with the same keys and shapes, all zero.
func (ps ParameterSet) ZeroesLike() ParameterSet {
	retVal := make(ParameterSet, len(ps))
	for name, t := range ps {
		retVal[name] = tensor.New(tensor.Of(Float), tensor.WithShape(t.Shape().Clone()...))
	}
	return retVal
}

// Names returns the parameter names in sorted order.
func (ps ParameterSet) Names() []string {
	retVal := make([]string, 0, len(ps))
	for name := range ps {
		retVal = append(retVal, name)
	}
	sort.Strings(retVal)
	return retVal
}

// NumElements returns the total element count across all parameters.
func (ps ParameterSet) NumElements() int {
	var n int
	for _, t := range ps {
		n += t.Shape().TotalSize()
	}
	return n
}

// Check verifies that every tensor is non-nil and of the package element
// type. Engine constructors run it before any stepping happens.
func (ps ParameterSet) Check() error {
	if len(ps) == 0 {
		return errors.New("empty parameter set")
	}
	for name, t := range ps {
		if t == nil {
			return errors.Errorf("parameter %q is nil", name)
		}
		if t.Dtype() != Float {
			return errors.Errorf("parameter %q has dtype %v. Want %v", name, t.Dtype(), Float)
		}
	}
	return nil
}

// StepEngine is one MCMC transition. Implementations own the full sampler
// state (parameters plus any auxiliaries such as momenta or thermostats).
// Step advances the state once and returns a snapshot copy of the
// parameter values, which the caller may retain.
//
// Engines are single-owner, single-writer: the state at step i+1 depends
// on the state at step i, so calls are strictly sequential.
type StepEngine interface {
	Step() (ParameterSet, error)
}

// Diagnostic is a pure function of the current parameters, typically a
// log-loss against a fixed held-out set closed over by the caller.
// Evaluating it must not perturb the sampler.
type Diagnostic func(params ParameterSet) (float64, error)
