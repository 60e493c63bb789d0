// Package scheduler executes a plan.Plan as a topologically-ordered DAG
// under a bounded worker pool, honouring disabled (already up-to-date)
// nodes, fail-fast on the first non-zero exit, and a clean drain of
// in-flight work.
package scheduler

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/nobgo/nob/plan"
	"github.com/nobgo/nob/runner"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("nob")

// Result summarizes a completed Execute call.
type Result struct {
	Failed   bool
	Duration time.Duration
}

// OnProgress, if non-nil, is invoked once per command actually run, after
// it completes, for a caller (e.g. the progress package) to render live
// status. It is never called for disabled (already up to date) nodes.
// Execute leaves it at whatever the caller set before running, and does
// not reset it, so it is the caller's responsibility to clear it between
// unrelated runs sharing the package (e.g. consecutive tests).
var OnProgress func()

// ShowCommands controls whether each node's "Running: ..." line is
// printed before it executes, matching the teacher's -show_commands
// flag. Defaults to true so tests and ad hoc use see command lines
// without needing to opt in.
var ShowCommands = true

// readyQueue is a thread-safe FIFO of node ids with the exact wake
// predicate described in the spec: "ready non-empty OR remaining==0 OR
// stop".
type readyQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []int
}

func newReadyQueue() *readyQueue {
	q := &readyQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *readyQueue) push(id int) {
	q.mu.Lock()
	q.items = append(q.items, id)
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *readyQueue) tryPop() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return 0, false
	}
	id := q.items[0]
	q.items = q.items[1:]
	return id, true
}

func (q *readyQueue) waitPop(remaining *atomic.Int64, stop *atomic.Bool) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && remaining.Load() != 0 && !stop.Load() {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return 0, false
	}
	id := q.items[0]
	q.items = q.items[1:]
	return id, true
}

func (q *readyQueue) broadcast() {
	q.mu.Lock()
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *readyQueue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Execute runs p to completion using at most maxParallel concurrent
// workers (a value <= 0 means "use runtime.NumCPU(), minimum 1"). It
// returns once every enabled node has either run or been skipped due to a
// fail-fast stop, and reports whether any command failed.
func Execute(p *plan.Plan, maxParallel int) Result {
	start := time.Now()

	n := p.Len()
	if n == 0 {
		return Result{Failed: false, Duration: time.Since(start)}
	}

	parallelism := maxParallel
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism < 1 {
		parallelism = 1
	}

	inDegree := make([]atomic.Int64, n)
	for i := 0; i < n; i++ {
		if p.Command(i).Enabled {
			inDegree[i].Store(int64(p.InDegree(i)))
		}
	}

	ready := newReadyQueue()
	var remaining atomic.Int64
	var stop atomic.Bool
	var failures atomic.Int64

	// Seed: enabled nodes with no in-edges at all are immediately ready;
	// disabled nodes propagate completion to their successors right away,
	// and propagate itself pushes any successor that reaches zero, so each
	// enabled node is pushed exactly once.
	for i := 0; i < n; i++ {
		if p.Command(i).Enabled {
			remaining.Add(1)
			if p.InDegree(i) == 0 {
				ready.push(i)
			}
		} else {
			propagate(p, i, inDegree, ready)
		}
	}

	var wg sync.WaitGroup
	wg.Add(parallelism)
	for w := 0; w < parallelism; w++ {
		go func() {
			defer wg.Done()
			worker(p, ready, inDegree, &remaining, &stop, &failures)
		}()
	}
	wg.Wait()

	duration := time.Since(start)
	if failures.Load() != 0 {
		log.Errorf("one or more commands failed")
		return Result{Failed: true, Duration: duration}
	}

	fmt.Printf("Compilation finished in: %s\n", duration)
	return Result{Failed: false, Duration: duration}
}

func worker(
	p *plan.Plan,
	ready *readyQueue,
	inDegree []atomic.Int64,
	remaining *atomic.Int64,
	stop *atomic.Bool,
	failures *atomic.Int64,
) {
	for {
		if stop.Load() {
			return
		}
		if remaining.Load() == 0 && ready.empty() {
			return
		}

		id, ok := ready.tryPop()
		if !ok {
			if stop.Load() {
				return
			}
			if remaining.Load() == 0 && ready.empty() {
				return
			}
			id, ok = ready.waitPop(remaining, stop)
			if !ok {
				if remaining.Load() == 0 || stop.Load() {
					return
				}
				continue
			}
		}

		runNode(p, id, stop, failures, ready)

		for _, succ := range p.OutEdges(id) {
			if inDegree[succ].Add(-1) == 0 && p.Command(succ).Enabled {
				ready.push(succ)
			}
		}

		if remaining.Add(-1) == 0 {
			ready.broadcast()
		}
	}
}

func runNode(p *plan.Plan, id int, stop *atomic.Bool, failures *atomic.Int64, ready *readyQueue) {
	cmd := p.Command(id)

	if ShowCommands {
		color.New(color.FgCyan).Printf("Running: %s\n", cmd)
	}
	res := runner.Run(cmd.Command, cmd.Args)

	if res.ExitCode != 0 {
		color.New(color.FgRed, color.Bold).Printf("Exit code: %d\n", res.ExitCode)
	}
	if res.Stdout != "" {
		fmt.Printf("stdout:\n%s\n", res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Printf("stderr:\n%s\n", res.Stderr)
	}

	if res.ExitCode != 0 {
		failures.Add(1)
		stop.Store(true)
		// Wake every waiting worker immediately so fail-fast bounds the
		// number of additional commands started, not just the ones
		// already in the ready queue.
		ready.broadcast()
	}

	if OnProgress != nil {
		OnProgress()
	}
}

// propagate advances the in-degree of id's successors as if id had
// already completed, for disabled nodes that the scheduler never
// actually runs.
func propagate(p *plan.Plan, id int, inDegree []atomic.Int64, ready *readyQueue) {
	for _, succ := range p.OutEdges(id) {
		if inDegree[succ].Add(-1) == 0 && p.Command(succ).Enabled {
			ready.push(succ)
		}
	}
}
