// Package args is where every command-line flag is defined, following the
// teacher's convention of a single package-level init() registering
// flag.*Var bindings into one struct, with a Load step that resolves
// relative/derived values against the current working directory.
package args

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Args holds every resolved command-line flag plus the values derived from
// them during Load.
type Args struct {
	// Concurrency.
	Threads int

	// Paths.
	BuildRoot         string
	WorkspaceDir      string
	WorkspaceFilename string
	ProfilesFile      string

	// Toolchain.
	CCCompiler string

	// Display/diagnostics.
	DryRun       bool
	ShowLog      bool
	ShowCommands bool

	// Not an actual flag, but derived during Load.
	CurrentDir string
}

var flags Args

func init() {
	flag.IntVar(&flags.Threads, "threads", runtime.NumCPU(),
		"Number of worker goroutines to use when executing a plan.")
	flag.IntVar(&flags.Threads, "j", runtime.NumCPU(), "Alias for -threads.")

	flag.StringVar(&flags.BuildRoot, "build_root", "build",
		"Directory intermediate objects and final targets are written under.")

	flag.StringVar(&flags.WorkspaceDir, "workspace_dir", "",
		"Root directory of the workspace. If blank, the directory tree is "+
			"walked upward looking for workspace_filename.")

	flag.StringVar(&flags.WorkspaceFilename, "workspace_filename", "NOB_WORKSPACE",
		"Name of the marker file identifying the workspace root.")

	flag.StringVar(&flags.ProfilesFile, "profiles_file", "nob_profiles.hjson",
		"Path (relative to the workspace root) of the profile/dimension config.")

	flag.StringVar(&flags.CCCompiler, "cc_compiler", "",
		"Override the compiler used for discovered compile units. Defaults "+
			"to the Unit tree's own default.")

	flag.BoolVar(&flags.DryRun, "dry_run", false,
		"Plan the build but do not execute any command.")

	flag.BoolVar(&flags.ShowLog, "show_log", false, "Raise the log level to DEBUG.")

	flag.BoolVar(&flags.ShowCommands, "show_commands", false,
		"Print each command before it runs.")
}

// Load copies the registered flag values and resolves WorkspaceDir if it
// was left blank, by walking cwd's ancestors for WorkspaceFilename.
// BuildRoot is left relative -- the driver chdirs into WorkspaceDir before
// using it, matching the Unit package's own cwd-relative conventions.
func Load(cwd string) (Args, error) {
	result := flags
	result.CurrentDir = cwd

	if result.WorkspaceDir == "" {
		dir, err := findWorkspaceRoot(cwd, result.WorkspaceFilename)
		if err != nil {
			return Args{}, err
		}
		result.WorkspaceDir = dir
	}

	if !filepath.IsAbs(result.ProfilesFile) {
		result.ProfilesFile = filepath.Join(result.WorkspaceDir, result.ProfilesFile)
	}

	return result, nil
}

// findWorkspaceRoot walks upward from start looking for a file named
// marker, returning the first directory that contains one.
func findWorkspaceRoot(start, marker string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("could not find %q above %s", marker, start)
}

// String renders a human-readable summary, handy for -show_log output.
func (a Args) String() string {
	return fmt.Sprintf("workspace=%s build_root=%s threads=%d",
		a.WorkspaceDir, a.BuildRoot, a.Threads)
}
