package unit

import "path/filepath"

// TargetKind classifies a Unit's target path by extension.
type TargetKind int

const (
	// NoTarget is used for Units with no target path at all (header deps
	// and pure aggregators).
	NoTarget TargetKind = iota
	Executable
	StaticLib
	DynamicLib
	Object
	None
)

// targetKindOf derives a TargetKind from a target path's extension, per
// the data model: ".o" -> Object, ".a" -> StaticLib, ".so" -> DynamicLib,
// ".exe" or no extension -> Executable, anything else -> None.
func targetKindOf(target string) TargetKind {
	switch filepath.Ext(target) {
	case ".a":
		return StaticLib
	case ".so":
		return DynamicLib
	case ".o":
		return Object
	case ".exe", "":
		return Executable
	default:
		return None
	}
}

// propagates reports whether kind is one of the "ancestor" kinds that get
// threaded down to descendants during planning (EXECUTABLE/STATIC_LIB/
// DYNAMIC_LIB) as opposed to OBJECT/NONE, which don't.
func (k TargetKind) propagates() bool {
	return k == Executable || k == StaticLib || k == DynamicLib
}
