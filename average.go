package sgmcmc

import (
	"github.com/pkg/errors"
	"gorgonia.org/vecf32"
)

// RunningAverage is a constant-memory streaming mean of a parameter
// trajectory. After folding snapshots s_1..s_n, Mean equals
// (s_1+...+s_n)/n elementwise, up to float32 rounding, regardless of n.
// History is never retained.
type RunningAverage struct {
	avg     ParameterSet
	scratch map[string][]float32
	n       int
}

// NewRunningAverage returns an empty accumulator. The first snapshot
// folded in becomes the accumulator verbatim (the mean of one sample is
// itself).
func NewRunningAverage() *RunningAverage {
	return &RunningAverage{}
}

// Fold incorporates one snapshot using the incremental recurrence
//	avg += (x - avg) / n
// which neither double-counts nor skips the first sample.
func (ra *RunningAverage) Fold(snapshot ParameterSet) error {
	if ra.avg == nil {
		ra.avg = snapshot.Clone()
		ra.scratch = make(map[string][]float32, len(snapshot))
		for name, t := range ra.avg {
			ra.scratch[name] = make([]float32, t.Shape().TotalSize())
		}
		ra.n = 1
		return nil
	}

	ra.n++
	for name, acc := range ra.avg {
		s, ok := snapshot[name]
		if !ok {
			return errors.Errorf("snapshot is missing parameter %q", name)
		}
		accData := acc.Data().([]float32)
		sData := s.Data().([]float32)
		if len(sData) != len(accData) {
			return errors.Errorf("parameter %q changed size: %d elements. Want %d", name, len(sData), len(accData))
		}

		delta := ra.scratch[name]
		copy(delta, sData)
		vecf32.Sub(delta, accData)
		vecf32.Scale(delta, 1/float32(ra.n))
		vecf32.Add(accData, delta)
	}
	return nil
}

// Mean returns a copy of the current running mean, or nil if nothing has
// been folded yet.
func (ra *RunningAverage) Mean() ParameterSet {
	if ra.avg == nil {
		return nil
	}
	return ra.avg.Clone()
}

// Count returns the number of snapshots folded so far.
func (ra *RunningAverage) Count() int { return ra.n }
