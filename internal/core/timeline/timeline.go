// Package timeline holds pending events in the order the engine must apply
// them. Live timelines are fed by the network; replay timelines are fully
// known up front.
package timeline

import (
	"sync"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/pkg/sequence"
)

// Timeline yields events in non-decreasing timestamp order.
type Timeline interface {
	Peek() (events.Event, bool)
	Pop() (events.Event, bool)
	Empty() bool
	Len() int
	// Gated reports whether events wait for the local clock. Live events
	// are applied as soon as they arrive since the server clock rules.
	Gated() bool
}

var (
	_ Timeline = (*Live)(nil)
	_ Timeline = (*Replay)(nil)
)

// Live is an unbounded FIFO in receipt order. Push is called from the
// socket reader goroutine while the tick loop pops, so access is locked.
// The server is trusted to send non-decreasing timestamps.
type Live struct {
	mu    sync.Mutex
	queue *sequence.Queue[events.Event]
}

func NewLive() *Live {
	return &Live{queue: sequence.NewQueue[events.Event](256)}
}

func (l *Live) Push(ev events.Event) {
	l.mu.Lock()
	l.queue.Enqueue(ev)
	l.mu.Unlock()
}

func (l *Live) Peek() (events.Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Peek()
}

func (l *Live) Pop() (events.Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Dequeue()
}

func (l *Live) Empty() bool {
	return l.Len() == 0
}

func (l *Live) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len()
}

func (l *Live) Gated() bool { return false }

// Replay is a materialized event array sorted once at construction. Pop
// advances a cursor; the array itself is never modified.
type Replay struct {
	events  []events.Event
	cursor  int
	maxTime int64
}

// NewReplay copies evs and stable-sorts the copy by timestamp, so equal
// timestamps keep file order.
func NewReplay(evs []events.Event) *Replay {
	sorted := make([]events.Event, len(evs))
	copy(sorted, evs)
	sequence.StableSortBy(sorted, func(e events.Event) int64 { return e.T })

	r := &Replay{events: sorted}
	if n := len(sorted); n > 0 {
		r.maxTime = sorted[n-1].T
	}
	return r
}

func (r *Replay) Peek() (events.Event, bool) {
	if r.cursor >= len(r.events) {
		return events.Event{}, false
	}
	return r.events[r.cursor], true
}

func (r *Replay) Pop() (events.Event, bool) {
	ev, ok := r.Peek()
	if ok {
		r.cursor++
	}
	return ev, ok
}

func (r *Replay) Empty() bool {
	return r.cursor >= len(r.events)
}

// Len is the number of events not yet consumed.
func (r *Replay) Len() int {
	return len(r.events) - r.cursor
}

func (r *Replay) Gated() bool { return true }

// MaxTime is the largest timestamp in the replay, for progress displays.
func (r *Replay) MaxTime() int64 {
	return r.maxTime
}

// Cursor is the index of the next unconsumed event.
func (r *Replay) Cursor() int {
	return r.cursor
}

// Total is the number of events in the replay.
func (r *Replay) Total() int {
	return len(r.events)
}

// At returns the i-th event of the sorted sequence.
func (r *Replay) At(i int) (events.Event, bool) {
	if i < 0 || i >= len(r.events) {
		return events.Event{}, false
	}
	return r.events[i], true
}
