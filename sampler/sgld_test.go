package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cran/sgmcmc"
	"github.com/cran/sgmcmc/data"
)

func TestConfigIsValid(t *testing.T) {
	assert.True(t, DefaultConf(1e-4).IsValid())
	assert.False(t, Config{}.IsValid())
	assert.False(t, Config{StepSize: 1e-4, Alpha: 2}.IsValid())
	assert.False(t, Config{StepSize: 1e-4, A: -1}.IsValid())
	assert.True(t, Config{StepSizes: map[string]float32{"theta": 1e-4}}.IsValid())
}

func TestSGLDMissingStepsizeKey(t *testing.T) {
	// a tuning map that does not cover the parameter set is a
	// configuration error, raised before any step is taken
	var calls int
	grad := gradFn(func(theta sgmcmc.ParameterSet, _ data.Batch) (sgmcmc.ParameterSet, error) {
		calls++
		return theta.Clone(), nil
	})
	init := sgmcmc.ParameterSet{"theta": scalar(0), "other": scalar(0)}
	conf := Config{StepSizes: map[string]float32{"theta": 1e-4}}

	_, err := NewSGLD(grad, emptyBatcher{}, init, conf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other")
	assert.Zero(t, calls)
}

func TestSGLDZeroStepsizeIsIdentity(t *testing.T) {
	conf := Config{StepSizes: map[string]float32{"theta": 0}}
	s, err := NewSGLD(constGrad(3), emptyBatcher{}, scalarTheta(1.5), conf)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		snap, err := s.Step()
		require.NoError(t, err)
		assert.Equal(t, float32(1.5), thetaVal(snap))
	}
}

func TestSGLDDoesNotMutateInit(t *testing.T) {
	init := scalarTheta(1)
	s, err := NewSGLD(constGrad(1), emptyBatcher{}, init, DefaultConf(0.1))
	require.NoError(t, err)

	_, err = s.Step()
	require.NoError(t, err)
	assert.Equal(t, float32(1), thetaVal(init))
}

func TestSGLDDeterministicUnderSeed(t *testing.T) {
	conf := DefaultConf(0.01)
	a, err := NewSGLD(pullGrad(2), emptyBatcher{}, scalarTheta(0), conf)
	require.NoError(t, err)
	b, err := NewSGLD(pullGrad(2), emptyBatcher{}, scalarTheta(0), conf)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		sa, err := a.Step()
		require.NoError(t, err)
		sb, err := b.Step()
		require.NoError(t, err)
		assert.Equal(t, thetaVal(sa), thetaVal(sb), "step %d", i)
	}
}

func TestSGLDSnapshotIsACopy(t *testing.T) {
	s, err := NewSGLD(constGrad(1), emptyBatcher{}, scalarTheta(0), DefaultConf(0.01))
	require.NoError(t, err)

	snap1, err := s.Step()
	require.NoError(t, err)
	before := thetaVal(snap1)
	_, err = s.Step()
	require.NoError(t, err)
	assert.Equal(t, before, thetaVal(snap1))
}

func TestSGLDDivergenceIsFatal(t *testing.T) {
	s, err := NewSGLD(nanGrad(), emptyBatcher{}, scalarTheta(0), DefaultConf(0.1))
	require.NoError(t, err)

	_, err = s.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diverged")
}

func TestSGLDIsAStepEngine(t *testing.T) {
	var _ sgmcmc.StepEngine = &SGLD{}
	var _ sgmcmc.StepEngine = &SGHMC{}
	var _ sgmcmc.StepEngine = &SGNHT{}
	var _ sgmcmc.StepEngine = &ModeSGD{}
}
