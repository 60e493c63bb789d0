//go:build !windows

package bootstrap

import "syscall"

// execve replaces the current process image in place, matching the
// distilled tool's execv(bin, new_argv) call.
var execve = syscall.Exec
