// Package unit implements the user-facing build-tree model (Unit) and the
// planner that walks it into a plan.Plan of external commands.
package unit

import (
	mapset "github.com/deckarep/golang-set"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("nob")

// defaultCompiler is the compiler used by a freshly constructed Unit until
// SetCompiler overrides it, matching the distilled tool's C++ default.
const defaultCompiler = "c++"

// Unit is a node in the user-described build tree. Exactly one of the
// following shapes applies:
//   - neither Source nor Target set: a pure aggregator, emits no command.
//   - Source only: a header dependency, contributes only its mtime.
//   - Source and Target: a compile unit (source -> object/artifact).
//   - Target only: a link/archive unit; its children supply inputs.
//
// Units form a strict ownership tree: Deps are exclusively owned by their
// parent and are never shared between two Units.
type Unit struct {
	Deps []*Unit

	Source string
	Target string

	hasSource bool
	hasTarget bool

	CompileFlags []string
	LinkFlags    []string

	Compiler string
	Kind     TargetKind

	activeProfiles mapset.Set
}

// New constructs a Unit. Pass "" for source or target to leave it unset;
// use NewHeaderDep/NewLinkUnit/NewCompileUnit for the common cases so callers
// don't need to reason about the empty-string convention directly.
func New(source, target string) *Unit {
	u := &Unit{
		Compiler:       defaultCompiler,
		activeProfiles: mapset.NewThreadUnsafeSet(),
	}

	if source != "" {
		u.Source = source
		u.hasSource = true
	}

	if target != "" {
		u.Target = target
		u.hasTarget = true
		u.Kind = targetKindOf(target)
	} else {
		u.Kind = NoTarget
	}

	return u
}

// NewHeaderDep returns a header-dependency Unit: source only, never
// compiled, contributing only its mtime to the parent's staleness check.
func NewHeaderDep(source string) *Unit {
	return New(source, "")
}

// NewCompileUnit returns a compile Unit: source file compiled to an
// object/artifact target.
func NewCompileUnit(source, target string) *Unit {
	return New(source, target)
}

// NewLinkUnit returns a link/archive Unit: target only, fed by its
// children's outputs.
func NewLinkUnit(target string) *Unit {
	return New("", target)
}

// HasSource reports whether this Unit has a source path.
func (u *Unit) HasSource() bool { return u.hasSource }

// HasTarget reports whether this Unit has a target path.
func (u *Unit) HasTarget() bool { return u.hasTarget }

// AddDep appends child as a dependency of u; ownership transfers to u.
func (u *Unit) AddDep(child *Unit) {
	u.Deps = append(u.Deps, child)
}

// AddCompileFlag appends a single compile flag. No deduplication.
func (u *Unit) AddCompileFlag(flag string) {
	u.CompileFlags = append(u.CompileFlags, flag)
}

// AddCompileFlags appends zero or more compile flags, preserving order.
func (u *Unit) AddCompileFlags(flags []string) {
	u.CompileFlags = append(u.CompileFlags, flags...)
}

// AddLinkFlag appends a single link flag. No deduplication.
func (u *Unit) AddLinkFlag(flag string) {
	u.LinkFlags = append(u.LinkFlags, flag)
}

// AddLinkFlags appends zero or more link flags, preserving order.
func (u *Unit) AddLinkFlags(flags []string) {
	u.LinkFlags = append(u.LinkFlags, flags...)
}

// SetCompiler sets the compiler on u and recursively on every descendant,
// overriding any previously set per-node compiler.
func (u *Unit) SetCompiler(compiler string) {
	u.Compiler = compiler
	for _, dep := range u.Deps {
		dep.SetCompiler(compiler)
	}
}

// ActiveProfiles returns the set of profile/dimension-choice names applied
// to this Unit so far, for diagnostics.
func (u *Unit) ActiveProfiles() mapset.Set {
	return u.activeProfiles
}

// ApplyProfile records name as active and appends its flags to this Unit.
func (u *Unit) ApplyProfile(name string, compileFlags, linkFlags []string) {
	u.activeProfiles.Add(name)
	u.AddCompileFlags(compileFlags)
	u.AddLinkFlags(linkFlags)
}

// GetTarget returns the target path, as used by the "run" sub-command. It
// returns "" if this Unit has no target.
func (u *Unit) GetTarget() string {
	return u.Target
}
