package shell

import "sync"

// mailbox is an unbounded queue of connection requests.  Put never
// blocks.
type mailbox struct {
	mu     sync.Mutex
	queue  []request
	ready  chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

// Put reports false if the mailbox is closed.
func (m *mailbox) Put(req request) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}

	m.queue = append(m.queue, req)

	select {
	case m.ready <- struct{}{}:
	default:
	}

	return true
}

// Ready fires when the mailbox may be non-empty.
func (m *mailbox) Ready() <-chan struct{} {
	return m.ready
}

func (m *mailbox) Take() []request {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.take()
}

// Close the mailbox and return any pending requests.
func (m *mailbox) Close() []request {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return m.take()
}

func (m *mailbox) take() []request {
	q := m.queue
	m.queue = nil
	return q
}
