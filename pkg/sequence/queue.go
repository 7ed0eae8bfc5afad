package sequence

import "slices"

// Queue is an unbounded FIFO queue. It is not safe for concurrent use.
type Queue[T any] struct {
	items []T
	head  int
}

func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{items: make([]T, 0, capacity)}
}

func (q *Queue[T]) Enqueue(value T) {
	q.items = append(q.items, value)
}

func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.IsEmpty() {
		return zero, false
	}
	value := q.items[q.head]
	q.items[q.head] = zero // avoid memory leak
	q.head++
	q.compact()
	return value, true
}

func (q *Queue[T]) Peek() (T, bool) {
	if q.IsEmpty() {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// compact drops the consumed prefix once it dominates the backing array.
func (q *Queue[T]) compact() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
}

// StableSortBy sorts data in place by the integer key, keeping the input
// order of equal keys.
func StableSortBy[T any](data []T, key func(T) int64) {
	slices.SortStableFunc(data, func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})
}
