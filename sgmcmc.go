package sgmcmc

import (
	"encoding/gob"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
)

// Chain is the top level structure and the entry point of the API. It
// drives a StepEngine through a burn-in phase and a production phase,
// folds every production snapshot into a running average, and evaluates
// a diagnostic at a fixed cadence. The full trajectory is never
// materialized: memory use is constant in the number of steps.
type Chain struct {
	Statistics

	engine StepEngine
	conf   Config
	diag   Diagnostic

	avg *RunningAverage
}

// New builds a Chain. It takes a step engine (one of the sampler package
// engines, or anything implementing StepEngine) and a run configuration.
// diag may be nil, in which case no diagnostics are evaluated.
func New(engine StepEngine, conf Config, diag Diagnostic) *Chain {
	if engine == nil {
		panic("nil StepEngine. Unable to proceed")
	}
	if !conf.IsValid() {
		panic(fmt.Sprintf("Config %+v is not valid. Unable to proceed", conf))
	}
	return &Chain{
		engine:     engine,
		conf:       conf,
		diag:       diag,
		Statistics: makeStatistics(),
	}
}

// Run executes the two phases of the chain. Burn-in steps advance the
// engine without touching the average; the production phase folds every
// post-step snapshot into the running mean. A step or diagnostic failure
// aborts the run immediately - there is no retry and no checkpointing of
// partial chains. Callers needing restarts should wrap Run themselves.
func (c *Chain) Run() error {
	for i := 1; i <= c.conf.BurnIn; i++ {
		snapshot, err := c.engine.Step()
		if err != nil {
			return errors.Wrapf(err, "burn-in step %d", i)
		}
		if err = c.report(PhaseBurnIn, i, snapshot); err != nil {
			return err
		}
	}

	c.avg = NewRunningAverage()
	for i := 1; i <= c.conf.NSteps; i++ {
		snapshot, err := c.engine.Step()
		if err != nil {
			return errors.Wrapf(err, "production step %d", i)
		}
		if err = c.avg.Fold(snapshot); err != nil {
			return errors.Wrapf(err, "production step %d", i)
		}
		if err = c.report(PhaseProduction, i, snapshot); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) report(phase Phase, step int, params ParameterSet) error {
	if c.diag == nil || step%c.conf.ReportEvery != 0 {
		return nil
	}
	v, err := c.diag(params)
	if err != nil {
		return errors.Wrapf(err, "diagnostic at %v step %d", phase, step)
	}
	log.Printf("%v step %d\tdiagnostic %v", phase, step, v)
	c.Statistics.record(phase, step, v)
	return nil
}

// Mean returns the running posterior mean, or nil before any production
// step has completed.
func (c *Chain) Mean() ParameterSet {
	if c.avg == nil {
		return nil
	}
	return c.avg.Mean()
}

// Save writes the current posterior mean to filename.
func (c *Chain) Save(filename string) error {
	mean := c.Mean()
	if mean == nil {
		return errors.New("nothing to save: no production step has run")
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	return enc.Encode(mean)
}

// LoadMean reads back a posterior mean written by Save.
func LoadMean(filename string) (ParameterSet, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	var retVal ParameterSet
	dec := gob.NewDecoder(f)
	if err = dec.Decode(&retVal); err != nil {
		return nil, errors.WithStack(err)
	}
	return retVal, nil
}
