package sgmcmc

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsDump(t *testing.T) {
	s := makeStatistics()
	s.record(PhaseBurnIn, 100, -12.5)
	s.record(PhaseProduction, 100, -10.25)
	s.record(PhaseProduction, 200, -9.75)

	filename := filepath.Join(t.TempDir(), "trace.csv")
	require.NoError(t, s.Dump(filename))

	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"phase", "step", "value"}, records[0])
	assert.Equal(t, []string{"burnin", "100", "-12.5"}, records[1])
	assert.Equal(t, []string{"production", "100", "-10.25"}, records[2])
	assert.Equal(t, []string{"production", "200", "-9.75"}, records[3])
}

func TestStatisticsSummary(t *testing.T) {
	s := makeStatistics()
	s.record(PhaseBurnIn, 10, 1000) // burn-in values are excluded
	s.record(PhaseProduction, 10, 2)
	s.record(PhaseProduction, 20, 4)

	mean, stddev := s.Summary()
	assert.InDelta(t, 3, mean, 1e-9)
	assert.InDelta(t, 1.4142135, stddev, 1e-6)

	empty := makeStatistics()
	mean, stddev = empty.Summary()
	assert.Zero(t, mean)
	assert.Zero(t, stddev)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "burnin", PhaseBurnIn.String())
	assert.Equal(t, "production", PhaseProduction.String())
}
