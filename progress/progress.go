// Package progress renders a single in-place-updated status line showing
// how many of a plan's commands have finished, the way the teacher's
// StartComplex display overwrites its bars in place rather than scrolling
// the terminal.
package progress

import (
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/sethgrid/curse"
)

// Tracker reports command-completion progress against a known total. It
// is safe for concurrent use by multiple scheduler workers.
type Tracker struct {
	mu    sync.Mutex
	total int
	done  int
	term  *curse.Cursor
}

// NewTracker returns a Tracker for a plan with the given number of
// enabled commands.
func NewTracker(total int) *Tracker {
	return &Tracker{total: total}
}

// Increment records one more completed command and redraws the status
// line. If the process has no controllable terminal (piped output, a
// dumb terminal), it falls back to printing one line per update instead
// of overwriting.
func (t *Tracker) Increment() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.done++

	if t.term == nil {
		term, err := curse.New()
		if err != nil {
			t.printLine()
			return
		}
		t.term = term
	} else {
		t.term.MoveUp(1)
	}

	t.printLine()
}

func (t *Tracker) printLine() {
	pct := 0.0
	if t.total > 0 {
		pct = float64(t.done) / float64(t.total) * 100
	}

	label := color.New(color.FgYellow, color.Bold).Sprintf("[%d/%d]", t.done, t.total)
	fmt.Printf("%s %3.0f%% commands complete\n", label, pct)
}
