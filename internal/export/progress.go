package export

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Progress prints a periodic count of items still pending to the given
// writer. Reports are throttled to at most one per second so a fast run
// does not flood the terminal. Safe for concurrent use.
type Progress struct {
	mu         sync.Mutex
	w          io.Writer
	pending    int
	lastReport time.Time

	// now is swapped in tests.
	now func() time.Time
}

// NewProgress creates a reporter writing to w, typically stderr.
func NewProgress(w io.Writer) *Progress {
	return &Progress{
		w:          w,
		lastReport: time.Now(),
		now:        time.Now,
	}
}

// Add registers n items as pending.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending += n
}

// Done marks one item complete and reports the remaining count if at least
// a second has passed since the last report.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending--
	if p.pending <= 0 {
		return
	}

	now := p.now()
	if now.Sub(p.lastReport) > time.Second {
		p.lastReport = now
		fmt.Fprintf(p.w, "%d items still to go\n", p.pending)
	}
}
