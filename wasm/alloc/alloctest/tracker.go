// Package alloctest provides an allocation-tracking Allocator for tests.
package alloctest

import (
	"fmt"
	"sync"

	"github.com/pgavlin/wafer/wasm/alloc"
)

// Tracker wraps an Allocator, counting requests, failing a chosen request and
// recording every block that has not been returned.
type Tracker struct {
	// Inner serves successful requests. The zero value uses alloc.Heap.
	Inner alloc.Allocator
	// FailAt is the 1-based index of the request to fail. Zero never fails.
	FailAt int
	// FailAfter fails every request after the first FailAfter when positive.
	FailAfter int

	mu       sync.Mutex
	requests int
	live     map[*byte]int
	peak     int
	largest  int
	faults   []string
}

// NewTracker returns a tracker failing the failAt'th request.
func NewTracker(failAt int) *Tracker {
	return &Tracker{FailAt: failAt}
}

func (t *Tracker) inner() alloc.Allocator {
	if t.Inner == nil {
		return alloc.Heap{}
	}
	return t.Inner
}

func (t *Tracker) Allocate(size, align int) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests++
	t.largest = max(t.largest, size)
	if t.requests == t.FailAt || t.FailAfter > 0 && t.requests > t.FailAfter {
		return nil, alloc.Failure(size, align)
	}

	b, err := t.inner().Allocate(size, align)
	if err != nil {
		return nil, err
	}
	if t.live == nil {
		t.live = map[*byte]int{}
	}
	t.live[&b[0]] = size
	if len(t.live) > t.peak {
		t.peak = len(t.live)
	}
	return b, nil
}

func (t *Tracker) Deallocate(b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cap(b) == 0 {
		t.faults = append(t.faults, "deallocate of empty block")
		return
	}
	key := &b[:1][0]
	if _, ok := t.live[key]; !ok {
		t.faults = append(t.faults, fmt.Sprintf("deallocate of unknown block %p", key))
		return
	}
	delete(t.live, key)
	t.inner().Deallocate(b)
}

// Requests returns the number of Allocate calls so far, failed ones included.
func (t *Tracker) Requests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requests
}

// Outstanding returns the number of blocks allocated and not yet returned.
func (t *Tracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// OutstandingBytes returns the total size of the outstanding blocks.
func (t *Tracker) OutstandingBytes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, size := range t.live {
		n += size
	}
	return n
}

// Peak returns the largest number of simultaneously outstanding blocks.
func (t *Tracker) Peak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}

// Largest returns the size of the largest request so far, failed ones
// included.
func (t *Tracker) Largest() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.largest
}

// Faults returns descriptions of invalid Deallocate calls.
func (t *Tracker) Faults() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.faults...)
}
