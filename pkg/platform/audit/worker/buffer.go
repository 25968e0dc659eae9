package worker

import (
	"sync"

	audit "vouch/pkg/platform/audit"
)

// RingBuffer is a bounded, thread-safe queue of events.
// When full, the oldest events are dropped to make room for new ones.
type RingBuffer struct {
	mu       sync.Mutex
	events   []audit.Event
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int

	dropped int64
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 10000
	}
	return &RingBuffer{
		events:   make([]audit.Event, capacity),
		capacity: capacity,
	}
}

// Enqueue adds an event, dropping the oldest if necessary.
func (b *RingBuffer) Enqueue(event audit.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
	}

	b.events[b.head] = event
	b.head = (b.head + 1) % b.capacity
	b.count++
}

// DequeueBatch removes up to n events from the buffer.
func (b *RingBuffer) DequeueBatch(n int) []audit.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	result := make([]audit.Event, n)
	for i := 0; i < n; i++ {
		result[i] = b.events[b.tail]
		b.events[b.tail] = audit.Event{}
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return result
}

// Len returns the current number of events in the buffer.
func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Dropped returns the total number of dropped events.
func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
