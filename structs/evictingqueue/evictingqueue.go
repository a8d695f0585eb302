package evictingqueue

import "sync"

//
// EvictingQueue is a thread-safe queue structure that automatically maintains the desired maximum
// size by evicting its oldest element if a new element is being added when at capacity. It is
// modeled after the EvictingQueue class from the Google Guava library for Java.
//
type EvictingQueue[T any] struct {
	mu    sync.Mutex
	size  int
	queue []T
}

//
// New instantiates a new evicting queue with the specified maximum size. A maximum size below one
// is treated as one.
//
func New[T any](maxSize int) *EvictingQueue[T] {
	if maxSize < 1 {
		maxSize = 1
	}

	return &EvictingQueue[T]{
		size:  maxSize,
		queue: make([]T, 0, maxSize),
	}
}

//
// Add appends the provided element to the evicting queue and evicts the oldest element if necessary
// to maintain its maximum size. It returns whether or not an element was evicted.
//
func (o *EvictingQueue[T]) Add(e T) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	evicted := false

	//
	// Remove the oldest element from the tail of the queue if we are currently at capacity.
	//
	if len(o.queue) == o.size {
		o.queue = o.queue[1:]
		evicted = true
	}

	o.queue = append(o.queue, e)

	return evicted
}

//
// Get returns the element that exists at the specified index of the queue and a true sentinel, or
// the zero value and a false sentinel if the index is out-of-range.
//
func (o *EvictingQueue[T]) Get(index int) (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var zero T

	if index < 0 || index >= len(o.queue) {
		return zero, false
	}

	return o.queue[index], true
}

//
// Items returns a copy of the queued elements, oldest first.
//
func (o *EvictingQueue[T]) Items() []T {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]T, len(o.queue))
	copy(out, o.queue)

	return out
}

//
// Len returns the current length of the queue.
//
func (o *EvictingQueue[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.queue)
}

//
// Cap returns the maximum size of the queue.
//
func (o *EvictingQueue[T]) Cap() int {
	return o.size
}
