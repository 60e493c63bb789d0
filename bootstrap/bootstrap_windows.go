//go:build windows

package bootstrap

import (
	"os"
	"os/exec"
)

// execve has no true process-image-replacement equivalent on Windows, so
// it spawns the new binary, waits for it, and forwards its exit code via
// exitFunc -- the closest approximation of execv available on this
// platform. It is a var, not a plain func, so tests can override it the
// same way as the unix build.
var execve = func(bin string, argv []string, env []string) error {
	cmd := exec.Command(bin, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitFunc(exitErr.ExitCode())
			return nil
		}
		return err
	}
	exitFunc(0)
	return nil
}
