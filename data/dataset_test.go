package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchUnknownDataset(t *testing.T) {
	_, err := Fetch("no-such-dataset", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dataset")
}

func TestFetchUsesCache(t *testing.T) {
	// a previously extracted file short-circuits the download entirely
	dir := t.TempDir()
	cached := filepath.Join(dir, "covertype.csv")
	require.NoError(t, os.WriteFile(cached, []byte("1,0\n"), 0644))

	path, err := Fetch("covertype", dir)
	require.NoError(t, err)
	assert.Equal(t, cached, path)
}

func TestDatasets(t *testing.T) {
	assert.Contains(t, Datasets(), "covertype")
}
