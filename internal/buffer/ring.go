package buffer

// Ring is a fixed size buffer keeping the last pushed elements.
type Ring[T any] struct {
	index  int
	count  int
	values []T
}

// NewRing creates a new ring with the given buffer size.
func NewRing[T any](size int) *Ring[T] {
	if size < 1 {
		size = 1
	}
	return &Ring[T]{
		values: make([]T, size),
	}
}

// Size returns the number of elements within the ring.
func (r *Ring[T]) Size() int {
	if r.count < len(r.values) {
		return r.count
	}
	return len(r.values)
}

// Cap returns the capacity of the ring.
func (r *Ring[T]) Cap() int {
	return len(r.values)
}

// Push adds an element to the ring, overwriting the oldest one when full.
func (r *Ring[T]) Push(v T) {
	r.values[r.index] = v
	r.index = (r.index + 1) % len(r.values)
	r.count++
}

// Reset drops all elements.
func (r *Ring[T]) Reset() {
	var zero T
	for i := range r.values {
		r.values[i] = zero
	}
	r.index = 0
	r.count = 0
}

// Get returns the ring elements from the oldest to the most recent.
func (r *Ring[T]) Get() []T {
	l := r.Size()
	v := make([]T, l)
	start := 0
	if r.count > len(r.values) {
		start = r.index
	}
	for i := 0; i < l; i++ {
		v[i] = r.values[(start+i)%len(r.values)]
	}
	return v
}
