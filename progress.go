package upgma

import (
	"fmt"
	"io"
	"sync"
)

// ProgressReporter receives coarse progress of a clustering run. The total
// workload is measured in matrix-row units: the main loop contributes
// n·(n+1)/2 units (one per active row per merge) and the duplicate phase 2n
// units. Implementations must tolerate Add being called from the single
// controlling goroutine only; no concurrency guarantees are required.
type ProgressReporter interface {
	// Begin announces a task and its total workload in arbitrary units.
	Begin(task string, totalWork float64)
	// Add records completed work.
	Add(work float64)
	// Done marks the current task finished.
	Done()
}

// nopProgress discards all progress events.
type nopProgress struct{}

func (nopProgress) Begin(string, float64) {}
func (nopProgress) Add(float64)           {}
func (nopProgress) Done()                 {}

// WriterProgress reports progress as percentage lines on an io.Writer,
// printing at most one line per whole-percent step.
type WriterProgress struct {
	W io.Writer

	mu        sync.Mutex
	task      string
	total     float64
	done      float64
	lastShown int
}

// Begin implements ProgressReporter.
func (p *WriterProgress) Begin(task string, totalWork float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.task = task
	p.total = totalWork
	p.done = 0
	p.lastShown = -1
}

// Add implements ProgressReporter.
func (p *WriterProgress) Add(work float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += work
	if p.total <= 0 {
		return
	}
	pct := int(p.done / p.total * 100)
	if pct > 100 {
		pct = 100
	}
	if pct > p.lastShown {
		p.lastShown = pct
		fmt.Fprintf(p.W, "%s: %d%%\n", p.task, pct)
	}
}

// Done implements ProgressReporter.
func (p *WriterProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastShown < 100 && p.task != "" {
		fmt.Fprintf(p.W, "%s: done\n", p.task)
	}
	p.task = ""
}
