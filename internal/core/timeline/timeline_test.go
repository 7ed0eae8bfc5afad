package timeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tankclient/internal/core/events"
)

func ev(t int64, typ string) events.Event {
	return events.Event{T: t, Kind: events.KindEntityUpdate, Type: typ}
}

func TestReplaySortsStably(t *testing.T) {
	r := NewReplay([]events.Event{ev(30, "a"), ev(10, "b"), ev(30, "c"), ev(0, "d"), ev(10, "e")})

	assert.Equal(t, int64(30), r.MaxTime())
	assert.Equal(t, 5, r.Total())
	assert.True(t, r.Gated())

	var order []string
	var last int64 = -1
	for !r.Empty() {
		e, ok := r.Pop()
		require.True(t, ok)
		assert.GreaterOrEqual(t, e.T, last)
		last = e.T
		order = append(order, e.Type)
	}
	assert.Equal(t, []string{"d", "b", "e", "a", "c"}, order)

	_, ok := r.Pop()
	assert.False(t, ok)
	assert.Equal(t, 5, r.Cursor())
}

func TestReplayPopKeepsSequence(t *testing.T) {
	input := []events.Event{ev(2, "x"), ev(1, "y")}
	r := NewReplay(input)
	_, _ = r.Pop()
	_, _ = r.Pop()

	first, ok := r.At(0)
	require.True(t, ok)
	assert.Equal(t, "y", first.Type)
	_, ok = r.At(2)
	assert.False(t, ok)
	assert.Equal(t, "x", input[0].Type, "caller slice must not be reordered")
}

func TestReplayEmpty(t *testing.T) {
	r := NewReplay(nil)
	assert.True(t, r.Empty())
	assert.Equal(t, int64(0), r.MaxTime())
	_, ok := r.Peek()
	assert.False(t, ok)
}

func TestLiveKeepsReceiptOrder(t *testing.T) {
	l := NewLive()
	assert.False(t, l.Gated())
	l.Push(ev(50, "late"))
	l.Push(ev(10, "early"))

	e, ok := l.Peek()
	require.True(t, ok)
	assert.Equal(t, "late", e.Type)
	assert.Equal(t, 2, l.Len())

	e, _ = l.Pop()
	assert.Equal(t, "late", e.Type)
	e, _ = l.Pop()
	assert.Equal(t, "early", e.Type)
	assert.True(t, l.Empty())
}

func TestLiveConcurrentPush(t *testing.T) {
	l := NewLive()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				l.Push(ev(int64(i), "e"))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, l.Len())
}
