// Package cli implements the sub-command dispatch table described in the
// External Interfaces section: build/rebuild/clean/cleanall/run, profile
// and dimension token resolution, and the nob_rebuild marker convention.
package cli

import (
	"fmt"

	"github.com/nobgo/nob/bootstrap"
	"github.com/nobgo/nob/plan"
	"github.com/nobgo/nob/profiles"
	"github.com/nobgo/nob/unit"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("nob")

// SubCommand names every core sub-command. "run" has no associated Plan;
// the driver invokes the top Unit's target directly.
type SubCommand string

const (
	Build    SubCommand = "build"
	Rebuild  SubCommand = "rebuild"
	Clean    SubCommand = "clean"
	CleanAll SubCommand = "cleanall"
	Run      SubCommand = "run"
)

// planFuncs maps every sub-command that produces a Plan to the Unit method
// that builds it. "run" is deliberately absent.
var planFuncs = map[SubCommand]func(*unit.Unit) *plan.Plan{
	Build:    func(u *unit.Unit) *plan.Plan { return u.Compile(false) },
	Rebuild:  func(u *unit.Unit) *plan.Plan { return u.Compile(true) },
	Clean:    func(u *unit.Unit) *plan.Plan { return u.Clean(false) },
	CleanAll: func(u *unit.Unit) *plan.Plan { return u.Clean(true) },
}

// subCommands is the set of tokens recognized as sub-commands rather than
// profile/dimension selectors.
var subCommands = map[SubCommand]bool{
	Build:    true,
	Rebuild:  true,
	Clean:    true,
	CleanAll: true,
	Run:      true,
}

// Outcome is one dispatched sub-command: the resolved SubCommand and its
// Plan (nil for Run, since a run has nothing to plan).
type Outcome struct {
	Command SubCommand
	Plan    *plan.Plan
}

// Dispatch interprets argv (the process's original arguments, excluding
// argv[0]) against top, the way Unit::parse walks every cmd_flag in turn:
// a token naming a sub-command dispatches it immediately (using top's
// flags/profiles as applied by every earlier token), a token that
// resolves as a profile name or dimension selector applies its flags to
// top, and anything else is reported as unknown. A single invocation may
// therefore dispatch more than one sub-command, in order -- this is how
// the self-rebuild marker turns "nob_rebuild run" into rebuild-then-run
// without losing the original command line.
func Dispatch(top *unit.Unit, argv []string, set *profiles.Set) ([]Outcome, []string, error) {
	tokens := resolveMarker(argv)
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("cli: missing sub-command (expected one of build, rebuild, clean, cleanall, run)")
	}

	var outcomes []Outcome
	var unknown []string

	for _, token := range tokens {
		cmd := SubCommand(token)
		if subCommands[cmd] {
			out := Outcome{Command: cmd}
			if builder, ok := planFuncs[cmd]; ok {
				out.Plan = builder(top)
			}
			outcomes = append(outcomes, out)
			continue
		}

		resolved := false
		if set != nil {
			resolved = set.Resolve(token, top.ApplyProfile)
		}
		if !resolved {
			log.Warningf("unknown token, ignored: %s", token)
			unknown = append(unknown, token)
		}
	}

	if len(outcomes) == 0 {
		return nil, unknown, fmt.Errorf("cli: no sub-command among %v (expected one of build, rebuild, clean, cleanall, run)", tokens)
	}

	return outcomes, unknown, nil
}

// resolveMarker strips bootstrap.Marker out of argv and, if it was
// present and "rebuild" is not already among the remaining tokens,
// prepends "rebuild" so a self-triggered restart always rebuilds.
func resolveMarker(argv []string) []string {
	hasMarker := false
	rest := make([]string, 0, len(argv))
	for _, tok := range argv {
		if tok == bootstrap.Marker {
			hasMarker = true
			continue
		}
		rest = append(rest, tok)
	}

	if !hasMarker {
		return rest
	}

	for _, tok := range rest {
		if tok == string(Rebuild) {
			return rest
		}
	}
	return append([]string{string(Rebuild)}, rest...)
}
