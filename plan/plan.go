// Package plan holds the immutable record of a single external build
// invocation and the append-only DAG of such records that the scheduler
// consumes.
package plan

import (
	"strings"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("nob")

// Command is an immutable record of one external invocation: a compile, a
// link, an archive, or a cleanup "rm". Once added to a Plan it is never
// mutated.
type Command struct {
	Command   string   // executable name, resolved via PATH at launch time
	Args      []string // full argv tail
	Enabled   bool     // false means "already up to date"; skip execution
	IsCompile bool     // true for source -> object compiles (written to the compile DB)
}

// String renders the command the way it would be typed on a shell line,
// e.g. for the "Running: ..." log line.
func (c Command) String() string {
	return c.Command + " " + strings.Join(c.Args, " ")
}

// Plan is an append-only DAG of Commands. Nodes are added first, then
// edges; edges only ever run from a compile node to the single link/archive
// node that consumes it.
type Plan struct {
	cmds     []Command
	outEdges [][]int
	inDegree []int
}

// New returns an empty Plan.
func New() *Plan {
	return &Plan{}
}

// AddCmd appends a node and returns its zero-based node id.
func (p *Plan) AddCmd(cmd Command) int {
	id := len(p.cmds)
	p.cmds = append(p.cmds, cmd)
	p.outEdges = append(p.outEdges, nil)
	p.inDegree = append(p.inDegree, 0)
	return id
}

// AddEdge appends an out-edge from src to dst and bumps dst's in-degree.
// It returns false, without changing the Plan, if either id is out of
// range. Duplicate edges are tolerated and simply inflate in-degree
// symmetrically.
func (p *Plan) AddEdge(src, dst int) bool {
	if src < 0 || dst < 0 || src >= len(p.cmds) || dst >= len(p.cmds) {
		log.Warningf("AddEdge called with out-of-range id (src=%d, dst=%d, len=%d)", src, dst, len(p.cmds))
		return false
	}

	p.outEdges[src] = append(p.outEdges[src], dst)
	p.inDegree[dst]++
	return true
}

// Len returns the number of nodes in the Plan.
func (p *Plan) Len() int {
	return len(p.cmds)
}

// Command returns the node at id. It panics on an out-of-range id, the same
// way a slice index would.
func (p *Plan) Command(id int) Command {
	return p.cmds[id]
}

// OutEdges returns the out-edges of node id. Callers must not mutate the
// returned slice.
func (p *Plan) OutEdges(id int) []int {
	return p.outEdges[id]
}

// InDegree returns the stored in-degree of node id (computed during
// planning, before execution begins).
func (p *Plan) InDegree(id int) int {
	return p.inDegree[id]
}

// CompileCommands returns every node with IsCompile set, in node-id order.
// Used by the compilation-database emitter.
func (p *Plan) CompileCommands() []Command {
	out := make([]Command, 0, len(p.cmds))
	for _, c := range p.cmds {
		if c.IsCompile {
			out = append(out, c)
		}
	}
	return out
}
