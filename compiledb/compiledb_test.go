package compiledb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nobgo/nob/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteToEmitsOnlyCompileNodes(t *testing.T) {
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })

	require.NoError(t, os.WriteFile("main.cpp", []byte(""), 0644))

	p := plan.New()
	p.AddCmd(plan.Command{Command: "c++", Args: []string{"-Wall", "-c", "-o", "main.o", "main.cpp"}, IsCompile: true, Enabled: true})
	p.AddCmd(plan.Command{Command: "c++", Args: []string{"-o", "out", "main.o"}, IsCompile: false, Enabled: true})

	outPath := filepath.Join(dir, "compile_commands.json")
	require.NoError(t, WriteTo(p, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var entries []entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, ".", entries[0].Directory)
	assert.Equal(t, "c++ -Wall -c -o main.o main.cpp", entries[0].Command)

	abs, _ := filepath.Abs("main.cpp")
	assert.Equal(t, abs, entries[0].File)
}

func TestWriteToEscapesQuotesAndBackslashes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, `weird"name.cpp`), []byte(""), 0644))

	p := plan.New()
	p.AddCmd(plan.Command{
		Command:   "c++",
		Args:      []string{`-DMSG="hi"`, "-c", "-o", "out.o", filepath.Join(dir, `weird"name.cpp`)},
		IsCompile: true,
		Enabled:   true,
	})

	outPath := filepath.Join(t.TempDir(), "compile_commands.json")
	require.NoError(t, WriteTo(p, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var entries []entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Command, `-DMSG="hi"`)
}

func TestWriteToOverwritesExistingFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "compile_commands.json")
	require.NoError(t, os.WriteFile(outPath, []byte("stale"), 0644))

	p := plan.New()
	require.NoError(t, WriteTo(p, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
