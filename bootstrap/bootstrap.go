// Package bootstrap implements the self-rebuild protocol: a driver binary
// detects that its own source is newer than itself, recompiles itself, and
// re-execs with a marker argument so the new image knows it was a
// self-triggered restart.
package bootstrap

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	mapset "github.com/deckarep/golang-set"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("nob")

// Marker is the literal argument inserted into argv when the bootstrap
// re-execs the freshly rebuilt binary, so the new process can tell a
// self-triggered restart apart from a user-initiated run.
const Marker = "nob_rebuild"

// CompilerInvocation is the fixed self-rebuild compile command, normative
// per the spec but exposed so a driver can override it for cross-compiling
// or an alternate toolchain.
var CompilerInvocation = []string{"c++", "-std=c++20", "-Wall", "-Wextra", "-Wpedantic", "-O3"}

// execCommand and exitFunc are overridden in tests so Rebuild's side
// effects (recompiling and replacing the process image) can be observed
// without actually exec-ing over the test binary. execve is platform
// specific (see bootstrap_unix.go / bootstrap_windows.go).
var (
	execCommand = exec.Command
	exitFunc    = os.Exit
)

// Rebuild is the first action a driver's main should take. sourceFile is
// the canonical path to the driver's own source (e.g. via a build-time
// constant, since Go has no __FILE__); argv is the process's original
// os.Args; extraDeps lists additional files (typically headers) whose
// mtime should also be checked. If no rebuild is needed, Rebuild logs an
// informational line and returns normally. Otherwise it recompiles,
// replaces the process image, and never returns (on success) or calls
// exitFunc (when the compiler or the exec fails). A failure to rename the
// freshly compiled binary into place is returned as an error.
func Rebuild(sourceFile string, argv []string, extraDeps []string) error {
	src, err := filepath.Abs(sourceFile)
	if err != nil {
		return fmt.Errorf("bootstrap: resolve source path: %w", err)
	}

	bin, err := filepath.Abs(argv[0])
	if err != nil {
		return fmt.Errorf("bootstrap: resolve binary path: %w", err)
	}
	if resolved, err := exec.LookPath(bin); err == nil {
		bin = resolved
	}

	deps := dedupe(extraDeps)

	needsRecompile := !exists(bin) || newer(src, bin)
	for _, dep := range deps {
		needsRecompile = needsRecompile || !exists(dep) || newer(dep, bin)
	}

	if !needsRecompile {
		log.Infof("nothing todo!")
		return nil
	}

	log.Infof("Rebuilding: %s...", bin)

	tempBin := bin + ".new"
	args := append(append([]string{}, CompilerInvocation[1:]...), "-o", tempBin, src)
	cmd := execCommand(CompilerInvocation[0], args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if runErr := cmd.Run(); runErr != nil {
		code := 1
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		log.Errorf("compilation failed (exit = %d)", code)
		exitFunc(code)
		return nil
	}

	if err := os.Rename(tempBin, bin); err != nil {
		return fmt.Errorf("bootstrap: rename %s to %s: %w", tempBin, bin, err)
	}

	newArgv := make([]string, 0, len(argv)+1)
	newArgv = append(newArgv, argv[0], Marker)
	newArgv = append(newArgv, argv[1:]...)

	if err := execve(bin, newArgv, os.Environ()); err != nil {
		log.Errorf("exec failed: %s", err)
		exitFunc(1)
		return nil
	}

	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newer(path, than string) bool {
	srcInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	otherInfo, err := os.Stat(than)
	if err != nil {
		return true
	}
	return srcInfo.ModTime().After(otherInfo.ModTime())
}

// dedupe removes duplicate dependency paths using a set, since a careless
// driver may list the same header twice.
func dedupe(paths []string) []string {
	set := mapset.NewThreadUnsafeSet()
	ordered := make([]string, 0, len(paths))
	for _, p := range paths {
		if !set.Contains(p) {
			set.Add(p)
			ordered = append(ordered, p)
		}
	}
	return ordered
}
