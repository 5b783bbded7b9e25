package relay

import (
	"errors"
	"sync"
)

var (
	errOutboxClosed = errors.New("outbox closed")
	errOutboxFull   = errors.New("outbox full")
)

// outbox is a peer's queue of pending frames. It is a ring buffer that
// doubles its capacity when 70% full, up to limit frames.
type outbox struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      [][]byte
	head     int // read position
	tail     int // write position
	count    int
	capacity int
	limit    int
	closed   bool

	// Stats
	enqueued int64
	written  int64
	resizes  int
}

type outboxStats struct {
	Pending  int
	Capacity int
	Enqueued int64
	Written  int64
	Resizes  int
}

func newOutbox(initial, limit int) *outbox {
	if initial < 1 {
		initial = 1
	}
	if limit < initial {
		limit = initial
	}
	b := &outbox{
		buf:      make([][]byte, initial),
		capacity: initial,
		limit:    limit,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// push queues a frame for the writer.
func (b *outbox) push(frame []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errOutboxClosed
	}
	if b.count >= b.limit {
		return errOutboxFull
	}

	threshold := (b.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if b.count+1 >= threshold && b.capacity < b.limit {
		b.grow()
	}

	b.buf[b.tail] = frame
	b.tail = (b.tail + 1) % b.capacity
	b.count++
	b.enqueued++

	b.cond.Signal()
	return nil
}

// pop blocks until a frame is queued or the outbox is closed and empty.
func (b *outbox) pop() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}
	if b.count == 0 {
		return nil, false
	}

	frame := b.buf[b.head]
	b.buf[b.head] = nil // Clear reference for GC
	b.head = (b.head + 1) % b.capacity
	b.count--
	b.written++

	return frame, true
}

// close stops accepting frames. Queued frames can still be popped.
func (b *outbox) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

func (b *outbox) stats() outboxStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return outboxStats{
		Pending:  b.count,
		Capacity: b.capacity,
		Enqueued: b.enqueued,
		Written:  b.written,
		Resizes:  b.resizes,
	}
}

// grow doubles the capacity, capped at limit. Must be called with lock held.
func (b *outbox) grow() {
	newCapacity := b.capacity * 2
	if newCapacity > b.limit {
		newCapacity = b.limit
	}
	newBuf := make([][]byte, newCapacity)

	if b.count > 0 {
		if b.head < b.tail {
			copy(newBuf, b.buf[b.head:b.tail])
		} else {
			n := copy(newBuf, b.buf[b.head:])
			copy(newBuf[n:], b.buf[:b.tail])
		}
	}

	b.buf = newBuf
	b.head = 0
	b.tail = b.count
	b.capacity = newCapacity
	b.resizes++
}
