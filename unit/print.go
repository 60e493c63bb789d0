package unit

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// PrintDepth writes a post-order textual dump of the tree rooted at u to
// stdout, indenting each line by two spaces per depth level and
// classifying every node as a compilation unit, a header dep, or a target
// (a pure aggregator with neither source nor target gets no label).
func (u *Unit) PrintDepth() {
	u.printDepth(os.Stdout, 0)
}

// FprintDepth is PrintDepth with an explicit writer, for testing.
func (u *Unit) FprintDepth(w io.Writer) {
	u.printDepth(w, 0)
}

func (u *Unit) printDepth(w io.Writer, depth int) {
	for _, dep := range u.Deps {
		dep.printDepth(w, depth+1)
	}

	indent := strings.Repeat("  ", depth)

	var label string
	switch {
	case u.hasSource && u.hasTarget:
		label = "Compilation unit: "
	case u.hasSource && !u.hasTarget:
		label = "Header dep: "
	case !u.hasSource && u.hasTarget:
		label = "Target: "
	}

	fmt.Fprint(w, indent, label)
	if u.hasSource {
		fmt.Fprint(w, u.Source)
	}
	if u.hasTarget {
		fmt.Fprintf(w, " -> %s", u.Target)
	}
	fmt.Fprintln(w)
}
