package unit

import (
	"path/filepath"
	"strings"

	"github.com/nobgo/nob/plan"
)

// BuildRoot is the directory a "cleanall" removes wholesale. It matches
// the "build" root the sample discovery helper (Discover) writes objects
// under. A driver may override it (e.g. from a -build_root flag) before
// calling Discover/Compile/Clean.
var BuildRoot = "build"

// Clean produces a Plan whose commands delete every intermediate/final
// target (and the matching ".d" file for OBJECT targets) in post-order, or
// a single "rm -r build" if removeDir is true.
func (u *Unit) Clean(removeDir bool) *plan.Plan {
	p := plan.New()
	if removeDir {
		p.AddCmd(plan.Command{
			Command: "rm",
			Args:    []string{"-r", BuildRoot},
			Enabled: exists(BuildRoot),
		})
		return p
	}

	u.cleanImpl(p)
	return p
}

func (u *Unit) cleanImpl(p *plan.Plan) {
	for _, dep := range u.Deps {
		dep.cleanImpl(p)
	}

	if !u.hasTarget {
		return
	}

	p.AddCmd(plan.Command{
		Command: "rm",
		Args:    []string{u.Target},
		Enabled: exists(u.Target),
	})

	if u.Kind == Object {
		dFile := filepath.Join(filepath.Dir(u.Target), strings.TrimSuffix(filepath.Base(u.Target), filepath.Ext(u.Target))+".d")
		p.AddCmd(plan.Command{
			Command: "rm",
			Args:    []string{dFile},
			Enabled: exists(dFile),
		})
	}
}
