// Package model compiles user-defined log-likelihood and log-prior
// graph fragments into a gorgonia graph and serves minibatch estimates
// of the log-posterior gradient to the samplers.
package model

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/cran/sgmcmc"
	"github.com/cran/sgmcmc/data"
)

var Float = G.Float32

// LogProbFn builds a scalar log-probability node. theta holds one node
// per parameter and dataNodes one node per dataset key (first axis =
// minibatch); a log-likelihood builder must sum over the minibatch
// axis, a log-prior builder ignores dataNodes.
type LogProbFn func(g *G.ExprGraph, theta map[string]*G.Node, dataNodes map[string]*G.Node) (*G.Node, error)

// Config describes the shapes the graph is compiled for.
type Config struct {
	N         int // observations in the full dataset
	BatchSize int // observations per minibatch

	ParamShapes map[string]tensor.Shape // shape per parameter, dims >= 1
	DataShapes  map[string]tensor.Shape // per-observation shape per dataset key; nil for plain scalars
}

func (conf Config) IsValid() bool {
	if conf.N < 1 || conf.BatchSize < 1 || conf.BatchSize > conf.N {
		return false
	}
	if len(conf.ParamShapes) == 0 {
		return false
	}
	for _, shp := range conf.ParamShapes {
		if len(shp) < 1 || shp.TotalSize() < 1 {
			return false
		}
	}
	return true
}

// Posterior is a compiled log-posterior. The estimated density is
//
//	log p(theta) + (N / BatchSize) * loglik(theta; minibatch)
//
// an unbiased estimate of the full-data log posterior, and Grad returns
// its gradient with respect to every parameter. A Posterior is not safe
// for concurrent use: it owns one virtual machine.
type Posterior struct {
	Config

	g          *G.ExprGraph
	thetaNodes map[string]*G.Node
	dataNodes  map[string]*G.Node

	logpost    *G.Node
	logpostVal G.Value
	gradVals   map[string]*G.Value

	machine G.VM
}

// New compiles the posterior. logPrior may be nil for a flat prior.
func New(conf Config, logLik, logPrior LogProbFn) (*Posterior, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("Config %+v is not valid", conf)
	}
	if logLik == nil {
		return nil, errors.New("nil log-likelihood")
	}

	p := &Posterior{
		Config:     conf,
		g:          G.NewGraph(),
		thetaNodes: make(map[string]*G.Node, len(conf.ParamShapes)),
		dataNodes:  make(map[string]*G.Node, len(conf.DataShapes)),
		gradVals:   make(map[string]*G.Value, len(conf.ParamShapes)),
	}

	for name, shp := range conf.ParamShapes {
		p.thetaNodes[name] = G.NewTensor(p.g, Float, len(shp), G.WithShape(shp...), G.WithName("theta_"+name))
	}
	for name, row := range conf.DataShapes {
		shp := append(tensor.Shape{conf.BatchSize}, row...)
		p.dataNodes[name] = G.NewTensor(p.g, Float, len(shp), G.WithShape(shp...), G.WithName("data_"+name))
	}

	ll, err := logLik(p.g, p.thetaNodes, p.dataNodes)
	if err != nil {
		return nil, errors.Wrap(err, "log-likelihood")
	}

	var m maebe
	scale := G.NewConstant(float32(conf.N)/float32(conf.BatchSize), G.WithName("correction"))
	scaled := m.do(func() (*G.Node, error) { return G.Mul(ll, scale) })

	if logPrior != nil {
		var lp *G.Node
		if lp, err = logPrior(p.g, p.thetaNodes, nil); err != nil {
			return nil, errors.Wrap(err, "log-prior")
		}
		p.logpost = m.do(func() (*G.Node, error) { return G.Add(scaled, lp) })
	} else {
		p.logpost = scaled
	}
	if m.err != nil {
		return nil, m.err
	}
	G.Read(p.logpost, &p.logpostVal)

	names := make([]string, 0, len(p.thetaNodes))
	wrt := make(G.Nodes, 0, len(p.thetaNodes))
	for name, n := range p.thetaNodes {
		names = append(names, name)
		wrt = append(wrt, n)
	}
	grads, err := G.Grad(p.logpost, wrt...)
	if err != nil {
		return nil, errors.Wrap(err, "gradient graph")
	}
	for i, name := range names {
		v := new(G.Value)
		G.Read(grads[i], v)
		p.gradVals[name] = v
	}

	p.machine = G.NewTapeMachine(p.g)
	return p, nil
}

// Grad implements the samplers' GradEstimator.
func (p *Posterior) Grad(theta sgmcmc.ParameterSet, batch data.Batch) (sgmcmc.ParameterSet, error) {
	if err := p.run(theta, batch); err != nil {
		return nil, err
	}
	retVal := make(sgmcmc.ParameterSet, len(p.gradVals))
	for name, v := range p.gradVals {
		shp := p.ParamShapes[name]
		src, ok := (*v).Data().([]float32)
		if !ok {
			return nil, errors.Errorf("gradient of %q is not a float32 tensor", name)
		}
		backing := make([]float32, len(src))
		copy(backing, src)
		retVal[name] = tensor.New(tensor.WithShape(shp.Clone()...), tensor.WithBacking(backing))
	}
	return retVal, nil
}

// LogProb evaluates the estimated log posterior at theta on the given
// batch, which must hold exactly BatchSize observations.
func (p *Posterior) LogProb(theta sgmcmc.ParameterSet, batch data.Batch) (float64, error) {
	if err := p.run(theta, batch); err != nil {
		return 0, err
	}
	return scalarValue(p.logpostVal)
}

// Diagnostic closes over a fixed held-out batch and returns a
// sgmcmc.Diagnostic evaluating the log posterior estimate there.
func (p *Posterior) Diagnostic(heldOut data.Batch) sgmcmc.Diagnostic {
	return func(theta sgmcmc.ParameterSet) (float64, error) {
		return p.LogProb(theta, heldOut)
	}
}

func (p *Posterior) run(theta sgmcmc.ParameterSet, batch data.Batch) error {
	p.machine.Reset()
	for name, node := range p.thetaNodes {
		t, ok := theta[name]
		if !ok {
			return errors.Errorf("theta is missing parameter %q", name)
		}
		if !t.Shape().Eq(node.Shape()) {
			return errors.Errorf("parameter %q has shape %v. Want %v", name, t.Shape(), node.Shape())
		}
		if err := G.Let(node, t); err != nil {
			return errors.Wrapf(err, "bind parameter %q", name)
		}
	}
	for name, node := range p.dataNodes {
		b, ok := batch[name]
		if !ok {
			return errors.Errorf("batch is missing dataset key %q", name)
		}
		if !b.Shape().Eq(node.Shape()) {
			return errors.Errorf("batch %q has shape %v. Want %v", name, b.Shape(), node.Shape())
		}
		if err := G.Let(node, b); err != nil {
			return errors.Wrapf(err, "bind batch %q", name)
		}
	}
	if err := p.machine.RunAll(); err != nil {
		return errors.Wrap(err, "run graph")
	}
	return nil
}

// Close releases the virtual machine.
func (p *Posterior) Close() error { return p.machine.Close() }
