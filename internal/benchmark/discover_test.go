package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, n), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0644))
	return dir
}

func TestParseSelection(t *testing.T) {
	assert.Nil(t, ParseSelection("all"))
	assert.Nil(t, ParseSelection(""))
	assert.Nil(t, ParseSelection(" ALL "))
	assert.Equal(t, []string{"zlib", "mimalloc"}, ParseSelection("zlib, mimalloc,"))
}

func TestDiscover_SortedByName(t *testing.T) {
	dir := samples(t, "zlib", "chocolate-doom", "mimalloc", ".git")

	got, err := Discover(dir, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "chocolate-doom", got[0].Name)
	assert.Equal(t, "mimalloc", got[1].Name)
	assert.Equal(t, "zlib", got[2].Name)
	assert.Equal(t, filepath.Join(dir, "zlib"), got[2].Dir)
}

func TestDiscover_Selection(t *testing.T) {
	dir := samples(t, "zlib", "chocolate-doom", "mimalloc")

	got, err := Discover(dir, []string{"zlib", "chocolate-doom"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "chocolate-doom", got[0].Name)
	assert.Equal(t, "zlib", got[1].Name)
}

func TestDiscover_UnknownBenchmark(t *testing.T) {
	dir := samples(t, "zlib")

	_, err := Discover(dir, []string{"zlib", "nginx"})
	assert.ErrorIs(t, err, ErrUnknownBenchmark)
	assert.Contains(t, err.Error(), "nginx")
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
