// Package runner launches a single external command and captures its
// output, per the Process Runner contract: inherit PATH only, force
// coloured diagnostics for known compiler drivers, and report -1 on any
// failure to even start or reap the child.
package runner

import (
	"bytes"
	"io"
	"os"
	"os/exec"
)

// colorDiagnosticsFlag is appended to the argv of any of the compiler
// drivers below so that captured (non-tty) output still carries ANSI
// colour codes for the user's terminal.
const colorDiagnosticsFlag = "-fdiagnostics-color=always"

var colorAwareCompilers = map[string]bool{
	"gcc":     true,
	"g++":     true,
	"c++":     true,
	"clang":   true,
	"clang++": true,
}

// Result is what a child process produced: its captured stdout/stderr and
// its exit code. ExitCode is -1 if the child could not be started or exited
// abnormally (signal, exec failure, ...).
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run launches command with args as its argument list, waits for it to
// finish, and returns its captured output and exit code. Only the PATH
// environment variable is passed through to the child.
func Run(command string, args []string) Result {
	if colorAwareCompilers[command] {
		args = append(append([]string{}, args...), colorDiagnosticsFlag)
	}

	cmd := exec.Command(command, args...)
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: 0}
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		code := exitErr.ExitCode()
		if code < 0 {
			code = -1
		}
		return Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
	}

	// Could not even start the process (not found, permission, etc).
	return Result{Stdout: stdout.String(), Stderr: stderr.String() + err.Error(), ExitCode: -1}
}

// RunStreaming behaves like Run but also tees the child's output to the
// given writers as it arrives, for interactive use (e.g. "nob run").
func RunStreaming(command string, args []string, outW, errW io.Writer) Result {
	if colorAwareCompilers[command] {
		args = append(append([]string{}, args...), colorDiagnosticsFlag)
	}

	cmd := exec.Command(command, args...)
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}
	cmd.Stdin = os.Stdin

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(outW, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(errW, &stderrBuf)

	err := cmd.Run()
	if err == nil {
		return Result{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String(), ExitCode: 0}
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		code := exitErr.ExitCode()
		if code < 0 {
			code = -1
		}
		return Result{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String(), ExitCode: code}
	}

	return Result{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String() + err.Error(), ExitCode: -1}
}
