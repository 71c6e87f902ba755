package window

import "sync"

// WriteBack is a message a background thread posts to the UI thread. The
// callback runs on the UI thread at the next frame boundary and may
// therefore mutate application state without extra locking.
type WriteBack struct {
	Data     any
	Callback func(data any)
}

// Mailbox is the one channel between background threads and the frame
// loop. Posts are FIFO per sender; the coordinator drains it once per
// frame. After Terminate, posts are dropped and pending writebacks are
// discarded.
type Mailbox struct {
	mu         sync.Mutex
	pending    []WriteBack
	terminated bool
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Post queues a writeback. Safe from any goroutine. Returns false when
// the mailbox has been terminated and the message was dropped.
func (m *Mailbox) Post(wb WriteBack) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.terminated {
		return false
	}
	m.pending = append(m.pending, wb)
	return true
}

// Drain removes and returns all pending writebacks in posting order. The
// coordinator calls this at the frame boundary and runs the callbacks on
// the UI thread.
func (m *Mailbox) Drain() []WriteBack {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.pending
	m.pending = nil
	return out
}

// Terminate discards pending writebacks and rejects future posts.
func (m *Mailbox) Terminate() {
	m.mu.Lock()
	m.pending = nil
	m.terminated = true
	m.mu.Unlock()
}

// Len reports the number of queued writebacks.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
