// Bayesian logistic regression on the covertype dataset, sampled with
// SGLD. Reproduces the standard vignette workflow: fetch the data, build
// the log-likelihood and log-prior, run the chain, keep the running
// posterior mean.
package main

import (
	"flag"
	"log"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/cran/sgmcmc"
	"github.com/cran/sgmcmc/data"
	"github.com/cran/sgmcmc/model"
	"github.com/cran/sgmcmc/sampler"
)

var (
	dataDir   = flag.String("datadir", "", "dataset cache directory (default: user cache)")
	nSteps    = flag.Int("n", 10000, "production steps")
	batchSize = flag.Int("batchsize", 500, "minibatch size")
	stepsize  = flag.Float64("stepsize", 5e-6, "SGLD stepsize")
	heldout   = flag.Int("heldout", 500, "held-out observations for the diagnostic")
	meanFile  = flag.String("out", "beta.gob", "posterior mean output file")
	statsFile = flag.String("stats", "diagnostics.csv", "diagnostic trace output file")
)

func main() {
	flag.Parse()

	path, err := data.Fetch("covertype", *dataDir)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	mat, err := data.LoadCSV(path, false)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	y, x := split(mat)
	n := y.Shape()[0]
	d := x.Shape()[1]
	if *heldout+*batchSize > n {
		log.Fatalf("dataset too small: %d observations", n)
	}
	nTrain := n - *heldout

	train := map[string]*tensor.Dense{"x": head(x, nTrain), "y": head(y, nTrain)}
	test := map[string]*tensor.Dense{"x": tail(x, nTrain), "y": tail(y, nTrain)}

	batcher, err := data.NewMinibatcher(train, *batchSize, 1337)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	heldOut, err := data.Take(test, 0, *batchSize)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	post, err := model.New(model.Config{
		N:           nTrain,
		BatchSize:   *batchSize,
		ParamShapes: map[string]tensor.Shape{"beta": {d}},
		DataShapes:  map[string]tensor.Shape{"x": {d}, "y": nil},
	}, logLik, logPrior)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	defer post.Close()

	init := sgmcmc.ParameterSet{
		"beta": tensor.New(tensor.Of(sgmcmc.Float), tensor.WithShape(d)),
	}
	engine, err := sampler.NewSGLD(post, batcher, init, sampler.DefaultConf(float32(*stepsize)))
	if err != nil {
		log.Fatalf("%+v", err)
	}

	chain := sgmcmc.New(engine, sgmcmc.DefaultConf(*nSteps), post.Diagnostic(heldOut))
	if err = chain.Run(); err != nil {
		log.Fatalf("%+v", err)
	}

	if err = chain.Save(*meanFile); err != nil {
		log.Fatalf("%+v", err)
	}
	if err = chain.Dump(*statsFile); err != nil {
		log.Fatalf("%+v", err)
	}
	mean, stddev := chain.Summary()
	log.Printf("held-out log posterior: mean %v stddev %v", mean, stddev)
	log.Printf("posterior mean written to %v", *meanFile)
}

// logLik is the Bernoulli log-likelihood with a logit link, summed over
// the minibatch: sum(y*z - log(1+exp(z))) with z = X beta.
func logLik(g *G.ExprGraph, theta, dataNodes map[string]*G.Node) (*G.Node, error) {
	z, err := G.Mul(dataNodes["x"], theta["beta"])
	if err != nil {
		return nil, err
	}
	yz, err := G.HadamardProd(dataNodes["y"], z)
	if err != nil {
		return nil, err
	}
	ez, err := G.Exp(z)
	if err != nil {
		return nil, err
	}
	softplus, err := G.Log1p(ez)
	if err != nil {
		return nil, err
	}
	ll, err := G.Sub(yz, softplus)
	if err != nil {
		return nil, err
	}
	return G.Sum(ll)
}

// logPrior is an independent N(0, 10^2) prior on every coefficient, up
// to an additive constant.
func logPrior(g *G.ExprGraph, theta, _ map[string]*G.Node) (*G.Node, error) {
	sq, err := G.Square(theta["beta"])
	if err != nil {
		return nil, err
	}
	ssq, err := G.Sum(sq)
	if err != nil {
		return nil, err
	}
	return G.Mul(ssq, G.NewConstant(float32(-1.0/200.0)))
}

// split separates the covertype matrix into the label vector (first
// column) and the feature matrix (the rest).
func split(mat *tensor.Dense) (y, x *tensor.Dense) {
	shp := mat.Shape()
	rows, cols := shp[0], shp[1]
	src := mat.Data().([]float32)

	yBacking := make([]float32, rows)
	xBacking := make([]float32, rows*(cols-1))
	for i := 0; i < rows; i++ {
		yBacking[i] = src[i*cols]
		copy(xBacking[i*(cols-1):(i+1)*(cols-1)], src[i*cols+1:(i+1)*cols])
	}
	y = tensor.New(tensor.WithShape(rows), tensor.WithBacking(yBacking))
	x = tensor.New(tensor.WithShape(rows, cols-1), tensor.WithBacking(xBacking))
	return y, x
}

func head(t *tensor.Dense, n int) *tensor.Dense {
	return slice(t, 0, n)
}

func tail(t *tensor.Dense, start int) *tensor.Dense {
	return slice(t, start, t.Shape()[0])
}

func slice(t *tensor.Dense, start, end int) *tensor.Dense {
	shp := t.Shape()
	row := shp.TotalSize() / shp[0]
	src := t.Data().([]float32)

	backing := make([]float32, (end-start)*row)
	copy(backing, src[start*row:end*row])
	newShp := shp.Clone()
	newShp[0] = end - start
	return tensor.New(tensor.WithShape(newShp...), tensor.WithBacking(backing))
}
