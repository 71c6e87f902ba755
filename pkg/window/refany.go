package window

import (
	"sync"

	"reflow/pkg/report"
)

// RefAny is a shared handle for callback user data. Borrow tracking
// enforces at runtime that a mutable borrow never coexists with any other
// borrow; a violating borrow fails with a ConcurrentBorrow error instead
// of handing out an aliased reference.
type RefAny struct {
	mu      sync.Mutex
	value   any
	readers int
	writer  bool
}

func NewRefAny(value any) *RefAny {
	return &RefAny{value: value}
}

// Borrow takes a shared reference. The release function must be called
// when the caller is done; holding it across frames is a bug.
func (r *RefAny) Borrow() (any, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writer {
		return nil, nil, report.Errorf(report.ConcurrentBorrow, "shared borrow while a mutable borrow is live")
	}
	r.readers++
	return r.value, r.releaseShared, nil
}

// BorrowMut takes the exclusive reference. It fails while any borrow is
// live. The setter stores a replacement value; release ends the borrow.
func (r *RefAny) BorrowMut() (value any, set func(any), release func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writer || r.readers > 0 {
		return nil, nil, nil, report.Errorf(report.ConcurrentBorrow, "mutable borrow while %d borrows are live", r.readers)
	}
	r.writer = true
	return r.value, r.setLocked, r.releaseMut, nil
}

func (r *RefAny) setLocked(v any) {
	r.mu.Lock()
	r.value = v
	r.mu.Unlock()
}

func (r *RefAny) releaseShared() {
	r.mu.Lock()
	if r.readers > 0 {
		r.readers--
	}
	r.mu.Unlock()
}

func (r *RefAny) releaseMut() {
	r.mu.Lock()
	r.writer = false
	r.mu.Unlock()
}
