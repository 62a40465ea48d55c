// Package stream holds the two sid-keyed maps a bidirectional stream needs
// once dispatch_stream has opened it: the receiver side (the frame queue
// the initiating caller reads from) and the target side (which loaded
// plugin owns the stream, so stream_write/stream_close know who to call).
package stream

import (
	"sync"

	"github.com/streamspace/ringhost/internal/frame"
	"github.com/streamspace/ringhost/internal/target"
)

// Registry holds the receiver and target maps for open streams. A single
// mutex guards both maps: stream volume is bounded by concurrent open
// streams, not by call rate, so sharding buys nothing here that a plain
// RWMutex doesn't already give.
type Registry struct {
	mu        sync.RWMutex
	receivers map[uint64]*frame.Queue
	targets   map[uint64]target.Plugin
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		receivers: make(map[uint64]*frame.Queue),
		targets:   make(map[uint64]target.Plugin),
	}
}

// PutReceiver registers the queue a caller reads stream frames from for sid.
func (r *Registry) PutReceiver(sid uint64, q *frame.Queue) {
	r.mu.Lock()
	r.receivers[sid] = q
	r.mu.Unlock()
}

// Receiver returns the frame queue registered for sid, if any.
func (r *Registry) Receiver(sid uint64) (*frame.Queue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.receivers[sid]
	return q, ok
}

// DropReceiver removes the receiver entry for sid.
func (r *Registry) DropReceiver(sid uint64) {
	r.mu.Lock()
	delete(r.receivers, sid)
	r.mu.Unlock()
}

// PutTarget records which plugin owns the stream identified by sid.
func (r *Registry) PutTarget(sid uint64, p target.Plugin) {
	r.mu.Lock()
	r.targets[sid] = p
	r.mu.Unlock()
}

// Target returns the plugin that owns the stream identified by sid, if any.
func (r *Registry) Target(sid uint64) (target.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.targets[sid]
	return p, ok
}

// DropTarget removes the target entry for sid.
func (r *Registry) DropTarget(sid uint64) {
	r.mu.Lock()
	delete(r.targets, sid)
	r.mu.Unlock()
}

// Close releases both entries for sid in one call, used when a stream is
// closed explicitly (stream_close) or when the Handle call that opened it
// fails. A terminal frame does not release them.
func (r *Registry) Close(sid uint64) {
	r.mu.Lock()
	delete(r.receivers, sid)
	delete(r.targets, sid)
	r.mu.Unlock()
}
