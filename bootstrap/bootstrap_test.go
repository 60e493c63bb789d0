package bootstrap

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, when time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, when, when))
}

func withStubExec(t *testing.T, exitCode int) *[]string {
	t.Helper()
	var gotArgs []string
	origCmd := execCommand
	execCommand = func(name string, args ...string) *exec.Cmd {
		gotArgs = append([]string{name}, args...)
		script := "exit 0"
		if exitCode != 0 {
			script = "exit " + string(rune('0'+exitCode))
		} else {
			// A successful stub compile creates its "-o" output, the way a
			// real compiler would, so Rebuild has a temp binary to rename.
			for i := 0; i+1 < len(args); i++ {
				if args[i] == "-o" {
					return exec.Command("sh", "-c", `touch "$0"`, args[i+1])
				}
			}
		}
		return exec.Command("sh", "-c", script)
	}
	t.Cleanup(func() { execCommand = origCmd })
	return &gotArgs
}

func withStubExecve(t *testing.T) *bool {
	t.Helper()
	called := false
	origExecve := execve
	execve = func(bin string, argv []string, env []string) error {
		called = true
		return nil
	}
	t.Cleanup(func() { execve = origExecve })
	return &called
}

func withStubExit(t *testing.T) *[]int {
	t.Helper()
	var codes []int
	origExit := exitFunc
	exitFunc = func(code int) { codes = append(codes, code) }
	t.Cleanup(func() { exitFunc = origExit })
	return &codes
}

func TestRebuildSkipsWhenBinaryIsNewer(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	bin := filepath.Join(dir, "tool")
	base := time.Now().Add(-time.Hour)
	touch(t, src, base)
	touch(t, bin, base.Add(time.Minute))

	execveCalled := withStubExecve(t)

	err := Rebuild(src, []string{bin}, nil)
	require.NoError(t, err)
	assert.False(t, *execveCalled)
}

func TestRebuildRecompilesWhenSourceIsNewer(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	bin := filepath.Join(dir, "tool")
	base := time.Now().Add(-time.Hour)
	touch(t, bin, base)
	touch(t, src, base.Add(time.Minute))

	gotArgs := withStubExec(t, 0)
	execveCalled := withStubExecve(t)

	err := Rebuild(src, []string{bin}, nil)
	require.NoError(t, err)
	assert.True(t, *execveCalled)
	assert.Contains(t, *gotArgs, "c++")

	// The compiled-to temp file should have been renamed onto bin.
	_, statErr := os.Stat(bin + ".new")
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(bin)
	assert.NoError(t, statErr)
}

func TestRebuildExitsWithCompilerCodeOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	bin := filepath.Join(dir, "tool")
	touch(t, src, time.Now())

	withStubExec(t, 9)
	execveCalled := withStubExecve(t)
	codes := withStubExit(t)

	err := Rebuild(src, []string{bin}, nil)
	require.NoError(t, err)
	assert.False(t, *execveCalled)
	require.Len(t, *codes, 1)
	assert.Equal(t, 9, (*codes)[0])
}

func TestRebuildChecksExtraDeps(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	hdr := filepath.Join(dir, "main.hpp")
	bin := filepath.Join(dir, "tool")
	base := time.Now().Add(-time.Hour)
	touch(t, src, base)
	touch(t, bin, base.Add(time.Minute))
	touch(t, hdr, base.Add(2*time.Minute))

	withStubExec(t, 0)
	execveCalled := withStubExecve(t)

	err := Rebuild(src, []string{bin}, []string{hdr, hdr})
	require.NoError(t, err)
	assert.True(t, *execveCalled)
}

func TestRebuildInsertsMarkerBeforeOriginalArgs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cpp")
	bin := filepath.Join(dir, "tool")
	base := time.Now().Add(-time.Hour)
	touch(t, bin, base)
	touch(t, src, base.Add(time.Minute))

	withStubExec(t, 0)

	var gotArgv []string
	origExecve := execve
	execve = func(b string, argv []string, env []string) error {
		gotArgv = argv
		return nil
	}
	t.Cleanup(func() { execve = origExecve })

	err := Rebuild(src, []string{bin, "build"}, nil)
	require.NoError(t, err)
	require.Len(t, gotArgv, 3)
	assert.Equal(t, Marker, gotArgv[1])
	assert.Equal(t, "build", gotArgv[2])
}
