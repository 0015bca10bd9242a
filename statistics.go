package sgmcmc

import (
	"encoding/csv"
	"os"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Phase labels which part of the run a diagnostic value belongs to.
type Phase byte

const (
	PhaseBurnIn Phase = iota
	PhaseProduction
)

func (p Phase) String() string {
	switch p {
	case PhaseBurnIn:
		return "burnin"
	case PhaseProduction:
		return "production"
	}
	return "unknown"
}

// Statistics is the diagnostic trace of a run: one (phase, step, value)
// record per diagnostic evaluation, in order.
type Statistics struct {
	Phases []Phase
	Steps  []int
	Values []float64
}

func makeStatistics() Statistics {
	return Statistics{
		Phases: make([]Phase, 0, 64),
		Steps:  make([]int, 0, 64),
		Values: make([]float64, 0, 64),
	}
}

func (s *Statistics) record(phase Phase, step int, value float64) {
	s.Phases = append(s.Phases, phase)
	s.Steps = append(s.Steps, step)
	s.Values = append(s.Values, value)
}

// Len returns the number of recorded diagnostics.
func (s *Statistics) Len() int { return len(s.Values) }

// Production returns the diagnostic values recorded during the
// production phase.
func (s *Statistics) Production() []float64 {
	var retVal []float64
	for i, p := range s.Phases {
		if p == PhaseProduction {
			retVal = append(retVal, s.Values[i])
		}
	}
	return retVal
}

// Summary returns the mean and standard deviation of the
// production-phase diagnostic trace.
func (s *Statistics) Summary() (mean, stddev float64) {
	vals := s.Production()
	switch len(vals) {
	case 0:
		return 0, 0
	case 1:
		return vals[0], 0
	}
	mean = stat.Mean(vals, nil)
	stddev = stat.StdDev(vals, nil)
	return mean, stddev
}

// Dump writes the trace as CSV.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"phase", "step", "value"}); err != nil {
		return err
	}
	for i := range s.Values {
		record := []string{
			s.Phases[i].String(),
			strconv.Itoa(s.Steps[i]),
			strconv.FormatFloat(s.Values[i], 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
