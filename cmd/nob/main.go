// Command nob is the build driver: it self-rebuilds if stale, discovers
// (or is handed) a Unit tree, dispatches the requested sub-command, and
// executes the resulting Plan.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nobgo/nob/args"
	"github.com/nobgo/nob/bootstrap"
	"github.com/nobgo/nob/cli"
	"github.com/nobgo/nob/compiledb"
	"github.com/nobgo/nob/plan"
	"github.com/nobgo/nob/profiles"
	"github.com/nobgo/nob/progress"
	"github.com/nobgo/nob/runner"
	"github.com/nobgo/nob/scheduler"
	"github.com/nobgo/nob/unit"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("nob")

// selfSource is this driver's own source path, relative to the workspace
// root, handed to bootstrap.Rebuild in place of the __FILE__ this tool's
// C++ ancestor relies on.
const selfSource = "cmd/nob/main.go"

var format = logging.MustStringFormatter(
	`%{color}%{level:.4s}%{color:reset} %{message}`)

func main() {
	flag.Parse()
	logging.SetFormatter(format)

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("%s", err)
	}

	progArgs, err := args.Load(cwd)
	if err != nil {
		log.Fatalf("%s", err)
	}

	if progArgs.ShowLog {
		logging.SetLevel(logging.DEBUG, "nob")
	} else {
		logging.SetLevel(logging.WARNING, "nob")
	}

	if err := bootstrap.Rebuild(filepath.Join(progArgs.WorkspaceDir, selfSource), os.Args, nil); err != nil {
		log.Fatalf("%s", err)
	}

	if err := run(progArgs, flag.Args()); err != nil {
		log.Fatalf("%s", err)
	}
}

func run(progArgs args.Args, cmdArgs []string) error {
	// The Unit package's staleness checks, compile-db "directory" field,
	// and cleanall root are all cwd-relative, matching the distilled
	// tool's own assumption that it runs from the workspace root.
	if err := os.Chdir(progArgs.WorkspaceDir); err != nil {
		return fmt.Errorf("chdir to workspace root %s: %w", progArgs.WorkspaceDir, err)
	}

	unit.BuildRoot = progArgs.BuildRoot

	profileSet, err := profiles.Load(progArgs.ProfilesFile)
	if err != nil {
		return err
	}

	target := filepath.Join(unit.BuildRoot, filepath.Base(progArgs.WorkspaceDir))
	top, err := unit.Discover(unit.SrcRoot, target)
	if err != nil {
		return err
	}

	if progArgs.CCCompiler != "" {
		top.SetCompiler(progArgs.CCCompiler)
	}

	outcomes, _, err := cli.Dispatch(top, cmdArgs, profileSet)
	if err != nil {
		return err
	}

	scheduler.ShowCommands = progArgs.ShowCommands

	// Outcomes run in the order they were dispatched (e.g. a self-rebuild
	// marker's "rebuild" ahead of the user's original "run"); the first
	// one that fails stops the rest, the same fail-fast policy the
	// scheduler applies within a single Plan.
	for _, outcome := range outcomes {
		if err := runOutcome(progArgs, top, outcome); err != nil {
			return err
		}
	}
	return nil
}

func runOutcome(progArgs args.Args, top *unit.Unit, outcome cli.Outcome) error {
	if outcome.Command == cli.Run {
		res := runner.RunStreaming(top.GetTarget(), nil, os.Stdout, os.Stderr)
		if res.ExitCode != 0 {
			os.Exit(res.ExitCode)
		}
		return nil
	}

	if progArgs.DryRun {
		printPlan(outcome.Plan)
		return nil
	}

	// A live status line only makes sense when per-command log lines
	// aren't already being printed, mirroring the teacher's useProgress
	// vs. ShowLog split.
	if !progArgs.ShowLog {
		tracker := progress.NewTracker(countEnabled(outcome.Plan))
		scheduler.OnProgress = tracker.Increment
		defer func() { scheduler.OnProgress = nil }()
	}

	result := scheduler.Execute(outcome.Plan, progArgs.Threads)

	if outcome.Command == cli.Build || outcome.Command == cli.Rebuild {
		if err := compiledb.Write(outcome.Plan); err != nil {
			return err
		}
	}

	if result.Failed {
		os.Exit(1)
	}
	return nil
}

func countEnabled(p *plan.Plan) int {
	count := 0
	for i := 0; i < p.Len(); i++ {
		if p.Command(i).Enabled {
			count++
		}
	}
	return count
}

func printPlan(p *plan.Plan) {
	for i := 0; i < p.Len(); i++ {
		cmd := p.Command(i)
		if !cmd.Enabled {
			continue
		}
		fmt.Println(cmd.String())
	}
}
