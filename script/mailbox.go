package script

import (
	"sync"

	"github.com/segmentio/ksuid"

	"github.com/angelini/generals/unit"
)

type Request struct {
	Trace ksuid.KSUID
	Event unit.Event
}

// mailbox is an unbounded FIFO of requests owned by one worker. Push never
// blocks the simulation.
type mailbox struct {
	mu      sync.Mutex
	ready   *sync.Cond
	pending []Request
	closed  bool
	stopped bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.ready = sync.NewCond(&m.mu)
	return m
}

// Push reports false when the owning worker is gone or the box is closed.
func (m *mailbox) Push(r Request) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.stopped {
		return false
	}
	m.pending = append(m.pending, r)
	m.ready.Signal()
	return true
}

// Pop blocks until a request is available. After Close it drains what is
// left, then reports false.
func (m *mailbox) Pop() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.pending) == 0 && !m.closed && !m.stopped {
		m.ready.Wait()
	}
	if m.stopped || len(m.pending) == 0 {
		return Request{}, false
	}
	r := m.pending[0]
	m.pending[0] = Request{}
	m.pending = m.pending[1:]
	return r, true
}

func (m *mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.ready.Broadcast()
}

// Stop discards pending requests and refuses new ones.
func (m *mailbox) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.pending = nil
	m.mu.Unlock()
	m.ready.Broadcast()
}

func (m *mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
