package loop

import (
	"sync"
	"time"
)

// FrameID identifies a scheduled callback. Zero is never issued.
type FrameID uint64

// FrameFunc runs once per scheduled frame with the frame timestamp.
type FrameFunc func(now time.Time)

// Host is the display's frame scheduler and resize notifier, the shape of
// requestAnimationFrame plus a resize event.
type Host interface {
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
	// OnResize registers fn and returns a function that unregisters it.
	OnResize(fn func()) (detach func())
}

type queued struct {
	id FrameID
	fn FrameFunc
}

// FrameQueue is a Host driven by explicit Tick calls. Callbacks requested
// while a tick is running are deferred to the next tick, so a callback that
// reschedules itself runs exactly once per Tick.
type FrameQueue struct {
	mu        sync.Mutex
	next      FrameID
	queue     []queued
	listeners map[uint64]func()
	nextL     uint64
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{listeners: make(map[uint64]func())}
}

func (q *FrameQueue) RequestFrame(fn FrameFunc) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	q.queue = append(q.queue, queued{id: q.next, fn: fn})
	return q.next
}

func (q *FrameQueue) CancelFrame(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, f := range q.queue {
		if f.id == id {
			q.queue = append(q.queue[:i], q.queue[i+1:]...)
			return
		}
	}
}

func (q *FrameQueue) OnResize(fn func()) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextL++
	key := q.nextL
	q.listeners[key] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.listeners, key)
	}
}

// Tick runs every callback queued before the call and returns how many ran.
func (q *FrameQueue) Tick(now time.Time) int {
	q.mu.Lock()
	batch := q.queue
	q.queue = nil
	q.mu.Unlock()

	for _, f := range batch {
		f.fn(now)
	}
	return len(batch)
}

// Pending reports the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Listeners reports the number of registered resize listeners.
func (q *FrameQueue) Listeners() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.listeners)
}

// TriggerResize calls every resize listener outside the lock.
func (q *FrameQueue) TriggerResize() {
	q.mu.Lock()
	fns := make([]func(), 0, len(q.listeners))
	for _, fn := range q.listeners {
		fns = append(fns, fn)
	}
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
