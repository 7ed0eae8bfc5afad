package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int](0)
	require.True(t, q.IsEmpty())

	_, ok := q.Peek()
	assert.False(t, ok)
	_, ok = q.Dequeue()
	assert.False(t, ok)

	for i := 0; i < 3; i++ {
		q.Enqueue(i)
	}
	v, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, 3, q.Len())

	for i := 0; i < 3; i++ {
		v, ok = q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueueCompactionKeepsOrder(t *testing.T) {
	q := NewQueue[int](4)
	next := 0
	for round := 0; round < 10; round++ {
		for i := 0; i < 100; i++ {
			q.Enqueue(round*100 + i)
		}
		for i := 0; i < 70; i++ {
			v, ok := q.Dequeue()
			require.True(t, ok)
			require.Equal(t, next, v)
			next++
		}
	}
	assert.Equal(t, 300, q.Len())
}

func TestStableSortBy(t *testing.T) {
	type item struct {
		t   int64
		tag string
	}
	data := []item{{5, "a"}, {1, "b"}, {5, "c"}, {0, "d"}, {1, "e"}}
	StableSortBy(data, func(i item) int64 { return i.t })

	tags := make([]string, len(data))
	for i, d := range data {
		tags[i] = d.tag
	}
	assert.Equal(t, []string{"d", "b", "e", "a", "c"}, tags)
}
