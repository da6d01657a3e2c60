package container

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period of search input.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer calls fn with the last pushed term once no new term arrived for delay.
type Debouncer struct {
	delay time.Duration
	fn    func(term string)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending bool
	term    string
}

func NewDebouncer(delay time.Duration, fn func(term string)) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Push records term and restarts the quiet period.
func (d *Debouncer) Push(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	d.term, d.pending = term, true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	term := d.term
	d.pending = false
	d.mu.Unlock()
	d.fn(term)
}

// Flush runs a pending call immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.seq++
	d.timer.Stop()
	term := d.term
	d.pending = false
	d.mu.Unlock()
	d.fn(term)
}

// Stop drops a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
