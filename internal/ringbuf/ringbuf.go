// Package ringbuf provides a fixed-capacity, concurrency-safe circular buffer.
package ringbuf

import "sync"

// Buffer is a thread-safe circular buffer.
type Buffer[T any] struct {
	buffer []T
	head   int
	tail   int
	count  int
	size   int
	mu     sync.RWMutex
}

// New creates a buffer holding at most capacity items. A non-positive
// capacity is treated as 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer[T]{
		buffer: make([]T, capacity),
		size:   capacity,
	}
}

// Push adds an item, overwriting the oldest when full.
func (r *Buffer[T]) Push(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer[r.tail] = item
	r.tail = (r.tail + 1) % r.size

	if r.count < r.size {
		r.count++
	} else {
		r.head = (r.head + 1) % r.size
	}
}

// All returns every item from oldest to newest.
func (r *Buffer[T]) All() []T {
	return r.Last(-1)
}

// Last returns up to n of the newest items, oldest first. A negative n
// returns everything.
func (r *Buffer[T]) Last(n int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n < 0 || n > r.count {
		n = r.count
	}
	result := make([]T, n)
	start := r.count - n
	for i := 0; i < n; i++ {
		result[i] = r.buffer[(r.head+start+i)%r.size]
	}
	return result
}

// Len returns the current number of items.
func (r *Buffer[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Clear removes all items.
func (r *Buffer[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.tail = 0
	r.count = 0
}
