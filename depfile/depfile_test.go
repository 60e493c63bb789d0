package depfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDepfile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.d")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseSimpleRule(t *testing.T) {
	path := writeDepfile(t, "build/main.o: src/main.cpp src/a.hpp src/b.hpp\n")
	headers, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.hpp", "src/b.hpp"}, headers)
}

func TestParseHandlesLineContinuations(t *testing.T) {
	path := writeDepfile(t, "build/main.o: src/main.cpp \\\n  src/a.hpp \\\n  src/b.hpp\n")
	headers, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.hpp", "src/b.hpp"}, headers)
}

func TestParseNoHeaders(t *testing.T) {
	path := writeDepfile(t, "build/main.o: src/main.cpp\n")
	headers, err := Parse(path)
	require.NoError(t, err)
	assert.Empty(t, headers)
}

func TestParseMissingFileErrors(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.d"))
	assert.Error(t, err)
}
