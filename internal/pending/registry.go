// Package pending implements the sharded mapping from session id to the
// waiting continuation for that call: a one-shot sender for a unary call,
// or a frame queue for a stream. Shards are independently locked; the
// shard for a sid is sid & (shardCount-1), so no cross-shard ordering is
// implied or needed.
package pending

import (
	"sync"

	"github.com/streamspace/ringhost/internal/frame"
)

const shardCount = 64 // power of two

// Kind tags which continuation an Entry carries.
type Kind int

const (
	// Unary entries are consumed exactly once.
	Unary Kind = iota
	// Stream entries are re-inserted after every non-terminal delivery.
	Stream
)

// Entry is the continuation recorded while a call is outstanding.
type Entry struct {
	Kind   Kind
	unary  *frame.Oneshot
	stream *frame.Queue
}

// NewUnary wraps a Oneshot as a pending Unary entry.
func NewUnary(o *frame.Oneshot) Entry { return Entry{Kind: Unary, unary: o} }

// NewStream wraps a Queue as a pending Stream entry.
func NewStream(q *frame.Queue) Entry { return Entry{Kind: Stream, stream: q} }

// Unary returns the underlying Oneshot sender. Only valid when Kind == Unary.
func (e Entry) Unary() *frame.Oneshot { return e.unary }

// Stream returns the underlying Queue. Only valid when Kind == Stream.
func (e Entry) Stream() *frame.Queue { return e.stream }

type shard struct {
	mu sync.Mutex
	m  map[uint64]Entry
}

// Registry is the sharded pending-call map.
type Registry struct {
	shards [shardCount]shard
}

// New creates an empty Registry.
func New() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].m = make(map[uint64]Entry)
	}
	return r
}

func (r *Registry) shardFor(sid uint64) *shard {
	return &r.shards[sid&(shardCount-1)]
}

// Register inserts entry for sid. The caller guarantees no existing entry
// for sid (callers register before crossing into the plugin).
func (r *Registry) Register(sid uint64, entry Entry) {
	sh := r.shardFor(sid)
	sh.mu.Lock()
	sh.m[sid] = entry
	sh.mu.Unlock()
}

// Take atomically removes and returns the entry for sid, if any.
func (r *Registry) Take(sid uint64) (Entry, bool) {
	sh := r.shardFor(sid)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.m[sid]
	if ok {
		delete(sh.m, sid)
	}
	return e, ok
}

// Reinsert puts entry back for sid, used after a non-terminal stream
// delivery so the next send_result call finds it again.
func (r *Registry) Reinsert(sid uint64, entry Entry) {
	r.Register(sid, entry)
}

// Len returns the total number of outstanding entries across all shards.
// Exposed for tests that assert no pending entry is left behind.
func (r *Registry) Len() int {
	total := 0
	for i := range r.shards {
		sh := &r.shards[i]
		sh.mu.Lock()
		total += len(sh.m)
		sh.mu.Unlock()
	}
	return total
}
