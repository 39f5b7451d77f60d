// Package corpustest loads the shared test corpus for other packages' tests.
package corpustest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Ayash-Bera/vbm-explorer/internal/corpus"
	"github.com/stretchr/testify/require"
)

// Path returns the absolute path of the fixture corpus file.
func Path() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "testdata", "results.json")
}

// Load parses the fixture corpus or fails the test.
func Load(t testing.TB) *corpus.Corpus {
	t.Helper()
	data, err := os.ReadFile(Path())
	require.NoError(t, err)
	c, err := corpus.Parse(data)
	require.NoError(t, err)
	return c
}
