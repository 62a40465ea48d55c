// Package frame holds the payload that flows from a plugin's result
// delivery back to whichever continuation is waiting on it, plus two small
// channel primitives used to carry it: a single-shot sender/receiver pair
// for unary calls, and an unbounded multi-producer/single-consumer queue
// for streams.
package frame

import (
	"sync"

	"github.com/streamspace/ringhost/status"
)

// Frame is one delivered result: a status and its owned payload.
type Frame struct {
	Status  status.Status
	Payload []byte
}

// Oneshot is a single-use result channel. Exactly one Send call is honored;
// later ones are dropped. Closing without sending signals the receiver
// that the sender side was abandoned (the caller's future was dropped).
type Oneshot struct {
	ch chan Frame
}

// NewOneshot creates an unfired Oneshot.
func NewOneshot() *Oneshot {
	return &Oneshot{ch: make(chan Frame, 1)}
}

// Send delivers f. Safe to call at most once; later calls are no-ops
// because the channel is already full.
func (o *Oneshot) Send(f Frame) {
	select {
	case o.ch <- f:
	default:
	}
}

// Recv blocks for the single delivered frame, or returns ok=false if the
// sender closed without delivering.
func (o *Oneshot) Recv() (Frame, bool) {
	f, ok := <-o.ch
	return f, ok
}

// Close abandons the oneshot without delivering a frame.
func (o *Oneshot) Close() {
	close(o.ch)
}

// Queue is an unbounded multi-producer/single-consumer frame channel used
// to back a stream. Producers never block on Send; the single consumer
// blocks in Recv until a frame is available or the queue is closed.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []Frame
	closed bool
}

// NewQueue creates an empty, open Queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send appends f for the consumer. A Send after Close is silently dropped,
// matching "late send_result for an unknown/closed stream: payload
// dropped silently".
func (q *Queue) Send(f Frame) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.buf = append(q.buf, f)
	q.cond.Signal()
}

// Recv blocks until a frame is available or the queue is closed and
// drained, in which case ok is false.
func (q *Queue) Recv() (Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.buf) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.buf) == 0 {
		return Frame{}, false
	}
	f := q.buf[0]
	q.buf = q.buf[1:]
	return f, true
}

// Close marks the queue closed. Frames already buffered are still
// delivered to Recv; once drained, Recv returns ok=false. Further Sends
// are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
