package sgmcmc

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func scalarSet(v float32) ParameterSet {
	return ParameterSet{
		"theta": tensor.New(tensor.WithShape(1), tensor.WithBacking([]float32{v})),
	}
}

func TestRunningAverageSequence(t *testing.T) {
	// folding 1, 2, 3 must yield means 1, 1.5, 2 in sequence
	ra := NewRunningAverage()
	wants := []float32{1, 1.5, 2}
	for i, v := range []float32{1, 2, 3} {
		require.NoError(t, ra.Fold(scalarSet(v)))
		got := ra.Mean()["theta"].Data().([]float32)[0]
		assert.InDelta(t, wants[i], got, 1e-6, "after %d folds", i+1)
	}
	assert.Equal(t, 3, ra.Count())
}

func TestRunningAverageFirstFoldVerbatim(t *testing.T) {
	ra := NewRunningAverage()
	assert.Nil(t, ra.Mean())
	assert.Equal(t, 0, ra.Count())

	snap := ParameterSet{
		"w": tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float32{1, -2, 3.5, 0})),
	}
	require.NoError(t, ra.Fold(snap))
	require.Equal(t, 1, ra.Count())

	if diff := cmp.Diff(snap["w"].Data(), ra.Mean()["w"].Data()); diff != "" {
		t.Errorf("first fold is not verbatim:\n%s", diff)
	}
}

func TestRunningAverageMatchesArithmeticMean(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	const steps = 200
	const size = 16

	ra := NewRunningAverage()
	sums := make([]float64, size)
	for i := 0; i < steps; i++ {
		backing := make([]float32, size)
		for j := range backing {
			backing[j] = r.Float32()
			sums[j] += float64(backing[j])
		}
		snap := ParameterSet{
			"w": tensor.New(tensor.WithShape(4, 4), tensor.WithBacking(backing)),
		}
		require.NoError(t, ra.Fold(snap))
	}

	got := ra.Mean()["w"].Data().([]float32)
	for j := range sums {
		want := sums[j] / steps
		assert.InDelta(t, want, float64(got[j]), 1e-5)
	}
}

func TestRunningAverageMeanIsACopy(t *testing.T) {
	ra := NewRunningAverage()
	require.NoError(t, ra.Fold(scalarSet(2)))

	m := ra.Mean()
	m["theta"].Data().([]float32)[0] = 99

	require.NoError(t, ra.Fold(scalarSet(4)))
	got := ra.Mean()["theta"].Data().([]float32)[0]
	assert.InDelta(t, 3, got, 1e-6)
}

func TestRunningAverageKeyMismatch(t *testing.T) {
	ra := NewRunningAverage()
	require.NoError(t, ra.Fold(scalarSet(1)))

	bad := ParameterSet{
		"other": tensor.New(tensor.WithShape(1), tensor.WithBacking([]float32{1})),
	}
	assert.Error(t, ra.Fold(bad))
}
