// Package endpoint provides in-memory, bidirectional connection endpoints.
package endpoint

import (
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
)

const bufsize = 1 << 13

// ErrClosed is returned when writing to an endpoint after either side
// has been closed.
var ErrClosed = errors.New("endpoint closed")

// New returns a connected pair of endpoints.  Bytes written to one are
// read from the other.
func New() (local, remote *Endpoint) {
	left, right := newBuffer(), newBuffer()

	local = &Endpoint{
		id: uuid.New(),
		r:  left,
		w:  right,
	}

	remote = &Endpoint{
		id: uuid.New(),
		r:  right,
		w:  left,
	}

	return
}

// Endpoint is one half of an in-memory duplex pipe.  It is safe for
// concurrent use.
type Endpoint struct {
	id   uuid.UUID
	r, w *buffer
}

// ID uniquely identifies the endpoint.
func (e *Endpoint) ID() uuid.UUID { return e.id }

func (e *Endpoint) Loggable() map[string]interface{} {
	return map[string]interface{}{
		"endpoint": e.id,
	}
}

// Read blocks until data is available, or until the peer has closed
// its side of the pipe, in which case it returns io.EOF.
func (e *Endpoint) Read(p []byte) (int, error) { return e.r.Read(p) }

// Write blocks until all of p has been buffered.  It fails with
// ErrClosed if either side has been closed.
func (e *Endpoint) Write(p []byte) (int, error) { return e.w.Write(p) }

// Close both directions of the pipe.  Buffered data remains readable
// by the peer.  Close is idempotent.
func (e *Endpoint) Close() error {
	e.w.Close()
	e.r.Close()
	return nil
}

type buffer struct {
	mu     sync.Mutex
	cond   sync.Cond
	r, w   uint32
	buf    [bufsize]byte // must be power of 2
	closed bool
}

func newBuffer() *buffer {
	b := new(buffer)
	b.cond.L = &b.mu
	return b
}

func (b *buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

func (b *buffer) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for b.empty() {
		if b.closed {
			return 0, io.EOF
		}

		b.cond.Wait()
	}

	for n < len(p) && !b.empty() {
		b.r++
		p[n] = b.buf[b.mask(b.r)]
		n++
	}

	b.cond.Broadcast() // wake blocked writers
	return
}

func (b *buffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for n < len(p) {
		if b.closed {
			return n, ErrClosed
		}

		if b.full() {
			b.cond.Wait()
			continue
		}

		for n < len(p) && !b.full() {
			b.w++
			b.buf[b.mask(b.w)] = p[n]
			n++
		}

		b.cond.Broadcast() // wake blocked readers
	}

	if b.closed {
		err = ErrClosed
	}

	return
}

func (b *buffer) mask(val uint32) uint32 { return val & (bufsize - 1) }
func (b *buffer) empty() bool            { return b.r == b.w }
func (b *buffer) full() bool             { return b.w-b.r == bufsize }
