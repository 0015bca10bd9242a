package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSGHMCMomentumRecursion(t *testing.T) {
	// with alpha = 0 the injected noise has zero variance and the
	// dynamics are deterministic:
	//	nu    <- nu + eps g
	//	theta <- theta + nu
	conf := Config{StepSize: 0.1, Alpha: 0}
	s, err := NewSGHMC(constGrad(2), emptyBatcher{}, scalarTheta(0), conf)
	require.NoError(t, err)

	snap, err := s.Step()
	require.NoError(t, err)
	assert.InDelta(t, 0.2, thetaVal(snap), 1e-6) // nu = 0.2

	snap, err = s.Step()
	require.NoError(t, err)
	assert.InDelta(t, 0.6, thetaVal(snap), 1e-6) // nu = 0.4, theta = 0.2+0.4
}

func TestSGHMCFullFriction(t *testing.T) {
	// alpha = 1 discards all previous momentum; with the noise term
	// zeroed by a zero stepsize nothing moves
	conf := Config{StepSizes: map[string]float32{"theta": 0}, Alpha: 1}
	s, err := NewSGHMC(constGrad(5), emptyBatcher{}, scalarTheta(3), conf)
	require.NoError(t, err)

	snap, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, float32(3), thetaVal(snap))
}

func TestSGHMCDeterministicUnderSeed(t *testing.T) {
	conf := DefaultConf(0.01)
	a, err := NewSGHMC(pullGrad(1), emptyBatcher{}, scalarTheta(0), conf)
	require.NoError(t, err)
	b, err := NewSGHMC(pullGrad(1), emptyBatcher{}, scalarTheta(0), conf)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		sa, err := a.Step()
		require.NoError(t, err)
		sb, err := b.Step()
		require.NoError(t, err)
		assert.Equal(t, thetaVal(sa), thetaVal(sb), "step %d", i)
	}
}

func TestSGHMCDivergenceIsFatal(t *testing.T) {
	s, err := NewSGHMC(nanGrad(), emptyBatcher{}, scalarTheta(0), Config{StepSize: 0.1, Alpha: 0})
	require.NoError(t, err)
	_, err = s.Step()
	assert.Error(t, err)
}
